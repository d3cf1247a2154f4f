// Package cli holds the tenant-portal command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tenant-portal/internal/config"
)

// NewRootCmd builds the tenant-portal command with its subcommands.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tenant-portal",
		Short:         "Tenant and landlord issue reporting service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(ServeCmd(), MigrateCmd())
	return root
}

func newLogger(environment string) (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Sugar(), nil
}

func loadConfig() (config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := newLogger(cfg.Environment)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
