package main

import (
	"github.com/SlpAus/pvp-rankings-backend/internal/loader"
	"github.com/SlpAus/pvp-rankings-backend/internal/platform/config"
	"github.com/SlpAus/pvp-rankings-backend/internal/platform/database"
	"github.com/SlpAus/pvp-rankings-backend/internal/platform/startup"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// withLoader opens the database, migrates it and hands a loader to fn.
func withLoader(cfg *config.Config, fn func(*loader.Loader) error) error {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
	}()

	if err := startup.Migrate(db); err != nil {
		return err
	}
	return fn(loader.New(db, cfg.Data.FixturesDir, cfg.Data.RankingsDebug))
}

func fixturesFlag(cmd *cobra.Command) {
	cmd.Flags().String("fixtures", "", "fixtures directory (overrides data.fixturesDir)")
}

func applyFixturesFlag(cmd *cobra.Command, cfg *config.Config) {
	if dir, _ := cmd.Flags().GetString("fixtures"); dir != "" {
		cfg.Data.FixturesDir = dir
	}
}

func newLoadDataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load-data",
		Short: "Replace formats, moves and pokemon from the fixtures",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Cfg
			applyFixturesFlag(cmd, cfg)
			return withLoader(cfg, func(l *loader.Loader) error {
				_, err := l.LoadData(cmd.Context())
				return err
			})
		},
	}
	fixturesFlag(cmd)
	return cmd
}

func newLoadRankingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load-rankings",
		Short: "Replace ranking tables from the fixtures",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Cfg
			applyFixturesFlag(cmd, cfg)
			if cmd.Flags().Changed("debug") {
				cfg.Data.RankingsDebug, _ = cmd.Flags().GetBool("debug")
			}
			return withLoader(cfg, func(l *loader.Loader) error {
				_, err := l.LoadRankings(cmd.Context())
				return err
			})
		},
	}
	fixturesFlag(cmd)
	cmd.Flags().Bool("debug", false, "load only cup \"all\" rankings")
	return cmd
}

func newClearDataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-data",
		Short: "Delete every loaded row",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLoader(config.Cfg, func(l *loader.Loader) error {
				_, err := l.ClearData(cmd.Context())
				return err
			})
		},
	}
}
