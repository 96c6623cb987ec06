// Package providers contains dependency injection providers for the CampusCore servers.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/Sanjay-nithin/campuscore-server/internal/config"
	"github.com/Sanjay-nithin/campuscore-server/internal/logger"
)

// ProvideBookhiveConfig provides the BookHive server configuration.
func ProvideBookhiveConfig(i do.Injector) (*config.Config, error) {
	return config.LoadBookhive()
}

// ProvideHostelflowConfig provides the HostelFlow server configuration.
func ProvideHostelflowConfig(i do.Injector) (*config.Config, error) {
	return config.LoadHostelflow()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Format:      cfg.Logger.Format,
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
		Service:     cfg.App.Service,
	})

	log.Info("Starting server",
		"service", cfg.App.Service,
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_dir", cfg.Data.BaseDir,
	)

	return log, nil
}
