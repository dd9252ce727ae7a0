// Package providers contains dependency injection providers for the wardrobe
// record service and its command-line client.
package providers

import (
	"log/slog"
	"os"

	"github.com/samber/do/v2"

	"github.com/smartwardrobe/wardrobe-server/internal/config"
	"github.com/smartwardrobe/wardrobe-server/internal/logger"
)

// Args are the command-line arguments handed to config.Load.
type Args []string

// LogOutput selects where the logger writes. Binaries that print results to
// stdout log to stderr instead.
type LogOutput struct {
	Writer  *os.File
	Service string
}

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	args, err := do.Invoke[Args](i)
	if err != nil {
		args = nil
	}
	return config.Load(args)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	out := LogOutput{Writer: os.Stdout, Service: "wardrobe"}
	if o, err := do.Invoke[LogOutput](i); err == nil {
		out = o
	}

	log := logger.New(logger.Config{
		Writer:      out.Writer,
		Format:      cfg.Logger.Format,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
		Service:     out.Service,
	})

	log.Debug("Configuration loaded",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
		"store", cfg.Store.Driver,
	)

	return log, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
