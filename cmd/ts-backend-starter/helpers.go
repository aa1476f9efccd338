package main

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"ts-backend-starter/pkg/config"
	"ts-backend-starter/pkg/history"
	"ts-backend-starter/pkg/logging"
	"ts-backend-starter/pkg/variant"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(afero.NewOsFs(), configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command) *logrus.Logger {
	return logging.New(cmd.ErrOrStderr(), verbose)
}

// openHistory returns nil when history is disabled or cannot be opened. A
// broken history database never blocks scaffolding.
func openHistory(cfg *config.Config, log logrus.FieldLogger) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		log.WithError(err).WithField("path", cfg.History.Path).Debug("history unavailable")
		return nil
	}
	return store
}

func joinNames() string {
	return strings.Join(variant.Names(), " | ")
}
