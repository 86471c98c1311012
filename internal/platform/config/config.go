package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cfg holds the configuration loaded by LoadConfig.
var Cfg *Config

// Config mirrors config.yaml.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Data     DataConfig     `mapstructure:"data"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig is the HTTP side.
type ServerConfig struct {
	Mode     string     `mapstructure:"mode"`
	Address  string     `mapstructure:"address"`
	Cors     CorsConfig `mapstructure:"cors"`
	PageSize int        `mapstructure:"pageSize"`
}

type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig selects the SQL driver and the optional Redis cache.
type DatabaseConfig struct {
	Driver         string         `mapstructure:"driver"`
	Sqlite         SqliteConfig   `mapstructure:"sqlite"`
	Postgres       PostgresConfig `mapstructure:"postgres"`
	SlowThreshold  time.Duration  `mapstructure:"slowThreshold"`
	Redis          RedisConfig    `mapstructure:"redis"`
	HealthInterval time.Duration  `mapstructure:"healthInterval"`
}

type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig configures the response cache. Disabled means no cache.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// DataConfig locates the JSON fixtures.
type DataConfig struct {
	FixturesDir   string `mapstructure:"fixturesDir"`
	RankingsDebug bool   `mapstructure:"rankingsDebug"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Supported database drivers.
const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("server.pageSize", 24)

	v.SetDefault("database.driver", DriverSqlite)
	v.SetDefault("database.sqlite.path", "pvp.db")
	v.SetDefault("database.postgres.dsn", "")
	v.SetDefault("database.slowThreshold", 200*time.Millisecond)
	v.SetDefault("database.healthInterval", 5*time.Second)
	v.SetDefault("database.redis.enabled", false)
	v.SetDefault("database.redis.address", "localhost:6379")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("database.redis.ttl", 10*time.Minute)

	v.SetDefault("data.fixturesDir", "pvp/fixtures")
	v.SetDefault("data.rankingsDebug", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// LoadConfig reads configFile, or config.yaml from ./config or the working
// directory when configFile is empty. A missing file is fine: defaults and
// environment variables (SERVER_ADDRESS, DATABASE_DRIVER, ...) still apply.
// A .env file, if present, is loaded into the environment first.
func LoadConfig(configFile string) (*Config, error) {
	// 1. .env feeds the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// 2. locate the config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 3. environment overrides, "." becomes "_"
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. read the file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// 5. decode and check
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	Cfg = &cfg
	return Cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode %q, want debug, release or test", c.Server.Mode)
	}
	switch c.Database.Driver {
	case DriverSqlite:
		if c.Database.Sqlite.Path == "" {
			return fmt.Errorf("database.sqlite.path is empty")
		}
	case DriverPostgres:
		if c.Database.Postgres.DSN == "" {
			return fmt.Errorf("database.postgres.dsn is empty")
		}
	default:
		return fmt.Errorf("database.driver %q, want %s or %s", c.Database.Driver, DriverSqlite, DriverPostgres)
	}
	if c.Server.PageSize <= 0 {
		return fmt.Errorf("server.pageSize %d, want > 0", c.Server.PageSize)
	}
	return nil
}
