package providers

import (
	"github.com/samber/do/v2"

	"github.com/smartwardrobe/wardrobe-server/internal/config"
	"github.com/smartwardrobe/wardrobe-server/internal/inventory"
	"github.com/smartwardrobe/wardrobe-server/internal/logger"
	"github.com/smartwardrobe/wardrobe-server/internal/media/images"
	"github.com/smartwardrobe/wardrobe-server/internal/remote"
)

// RemoteClientHandle wraps the record service client with Shutdownable.
type RemoteClientHandle struct {
	*remote.Client
}

// Shutdown implements do.Shutdownable.
func (h *RemoteClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideRemoteClient provides the HTTP client for the record service.
func ProvideRemoteClient(i do.Injector) (*RemoteClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	c, err := remote.NewClient(cfg.Remote.URL, remote.Options{
		Timeout: cfg.Remote.Timeout,
		Rate:    cfg.Remote.Rate,
		Burst:   cfg.Remote.Burst,
	}, log.Component("remote").Logger)
	if err != nil {
		return nil, err
	}
	return &RemoteClientHandle{Client: c}, nil
}

// ProvideUploader provides the image uploader writing through the remote client.
func ProvideUploader(i do.Injector) (*images.Uploader, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*RemoteClientHandle](i)

	return images.NewUploader(client.Client, images.Policy{
		MaxBytes:     cfg.Upload.MaxBytes,
		AllowedTypes: cfg.Upload.AllowedTypes,
	}, log.Component("upload").Logger), nil
}

// ProvideNotifier provides the report sink. Reports are logged.
func ProvideNotifier(i do.Injector) (inventory.Notifier, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return inventory.NewLogNotifier(log.Logger), nil
}

// ProvideInventory provides an empty inventory engine. Callers Load it.
func ProvideInventory(i do.Injector) (*inventory.Inventory, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*RemoteClientHandle](i)
	uploader := do.MustInvoke[*images.Uploader](i)
	notifier := do.MustInvoke[inventory.Notifier](i)

	return inventory.New(client.Client, uploader, notifier, log.Component("inventory").Logger, inventory.Options{
		RequireImageOnCreate: cfg.Inventory.RequireImage,
		PlaceholderImageURL:  cfg.Inventory.PlaceholderImageURL,
	}), nil
}
