package main

import (
	"os"

	"github.com/SlpAus/pvp-rankings-backend/internal/platform/config"
	"github.com/SlpAus/pvp-rankings-backend/internal/platform/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var configFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pvp-rankings",
		Short:         "PvP rankings backend: data loading and the HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return err
			}
			return logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./config/config.yaml)")

	root.AddCommand(newServeCmd(), newLoadDataCmd(), newLoadRankingsCmd(), newClearDataCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
