// Package di provides dependency injection configuration for the wardrobe
// record service and CLI.
package di

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/smartwardrobe/wardrobe-server/internal/config"
	"github.com/smartwardrobe/wardrobe-server/internal/di/providers"
	"github.com/smartwardrobe/wardrobe-server/internal/logger"
	"github.com/smartwardrobe/wardrobe-server/internal/media/images"
)

// NewContainer creates the record service container. args are passed to
// config.Load.
func NewContainer(args []string) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, providers.Args(args))
	do.ProvideValue(injector, providers.LogOutput{Writer: os.Stdout, Service: "wardrobe-api"})
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideRecordStore)
	do.Provide(injector, providers.ProvideObjectStorage)

	// Server
	do.Provide(injector, providers.ProvideMutationLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*providers.RecordStoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*images.Storage](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.MutationLimiterHandle](injector)

	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}

// NewClientContainer creates the CLI container. Logs go to stderr so command
// output on stdout stays clean.
func NewClientContainer(args []string) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, providers.Args(args))
	do.ProvideValue(injector, providers.LogOutput{Writer: os.Stderr, Service: "wardrobe"})
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	do.Provide(injector, providers.ProvideRemoteClient)
	do.Provide(injector, providers.ProvideUploader)
	do.Provide(injector, providers.ProvideNotifier)
	do.Provide(injector, providers.ProvideInventory)

	return injector
}
