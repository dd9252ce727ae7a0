package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/smartwardrobe/wardrobe-server/internal/config"
	"github.com/smartwardrobe/wardrobe-server/internal/logger"
	"github.com/smartwardrobe/wardrobe-server/internal/media/images"
)

// ProvideObjectStorage provides the filesystem image store served under /objects.
func ProvideObjectStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	objects, err := images.NewStorage(cfg.Data.BasePath, cfg.Server.PublicURL)
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}

	log.Info("Object storage initialized", "path", objects.Root(), "public_url", cfg.Server.PublicURL)
	return objects, nil
}
