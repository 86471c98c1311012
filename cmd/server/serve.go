package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/SlpAus/pvp-rankings-backend/api"
	"github.com/SlpAus/pvp-rankings-backend/internal/move"
	"github.com/SlpAus/pvp-rankings-backend/internal/platform/config"
	"github.com/SlpAus/pvp-rankings-backend/internal/platform/database"
	"github.com/SlpAus/pvp-rankings-backend/internal/platform/health"
	"github.com/SlpAus/pvp-rankings-backend/internal/platform/logging"
	"github.com/SlpAus/pvp-rankings-backend/internal/platform/metadata"
	"github.com/SlpAus/pvp-rankings-backend/internal/platform/shutdown"
	"github.com/SlpAus/pvp-rankings-backend/internal/platform/startup"
	"github.com/SlpAus/pvp-rankings-backend/internal/pokemon"
	"github.com/SlpAus/pvp-rankings-backend/internal/ranking"
	"github.com/SlpAus/pvp-rankings-backend/pkg/lifecycle"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd, config.Cfg)
		},
	}
}

func serve(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()

	// 1. storage
	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	rt, err := startup.InitializeApplication(ctx, db)
	if err != nil {
		database.Close(db)
		return err
	}

	// 2. optional response cache
	rdb, err := database.OpenRedis(ctx, cfg.Database.Redis)
	if err != nil {
		database.Close(db)
		return err
	}
	var cache ranking.ResponseCache
	if rdb != nil {
		runID, err := health.RedisRunID(ctx, rdb)
		if err != nil {
			log.Warn().Err(err).Msg("cannot read redis run_id")
		}
		health.SetInitialRunID(runID)
		cache = ranking.NewRedisCache(rdb, cfg.Database.Redis.TTL, metadata.ServedVersion, health.IsRedisHealthy)
	}

	// 3. background services
	gracefulMgr := lifecycle.NewManager()
	forcefulMgr := lifecycle.NewManager()
	checker := health.NewChecker(db, rdb, rt.Rebuild, cfg.Database.HealthInterval)
	checker.PerformCheck(ctx)
	handle, err := gracefulMgr.NewServiceHandle("health-checker")
	if err != nil {
		return err
	}
	go checker.Run(handle)

	// 4. HTTP
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), logging.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.Cors.AllowedOrigins,
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length", "X-Cache"},
		MaxAge:        12 * time.Hour,
	}))

	service := ranking.NewService(ranking.NewRepository(db), rt.Current)
	api.SetupRoutes(router, api.Handlers{
		Moves:    move.NewHandler(rt.Catalog),
		Pokemon:  pokemon.NewHandler(rt.Current),
		Rankings: ranking.NewHandler(service, cache, cfg.Server.PageSize),
	})

	server := &http.Server{Addr: cfg.Server.Address, Handler: router}
	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	// 5. block until a signal, then tear down
	coordinator := shutdown.NewCoordinator(gracefulMgr, forcefulMgr)
	if rdb != nil {
		coordinator.OnClose("redis", rdb.Close)
	}
	coordinator.OnClose("database", func() error { return database.Close(db) })
	coordinator.ListenForSignalsAndShutdown(server)
	return nil
}
