package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/smartwardrobe/wardrobe-server/internal/api"
	"github.com/smartwardrobe/wardrobe-server/internal/config"
	"github.com/smartwardrobe/wardrobe-server/internal/logger"
	"github.com/smartwardrobe/wardrobe-server/internal/media/images"
	"github.com/smartwardrobe/wardrobe-server/internal/ratelimit"
)

// shutdownTimeout bounds how long the HTTP server waits for in-flight requests.
const shutdownTimeout = 30 * time.Second

// MutationLimiterHandle wraps the per-IP mutation limiter with Shutdownable.
type MutationLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *MutationLimiterHandle) Shutdown() error {
	if h.KeyedRateLimiter != nil {
		h.Stop()
	}
	return nil
}

// ProvideMutationLimiter provides the limiter for state-changing requests.
// A non-positive rate disables limiting.
func ProvideMutationLimiter(i do.Injector) (*MutationLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	if cfg.Server.MutationRate <= 0 {
		return &MutationLimiterHandle{}, nil
	}
	return &MutationLimiterHandle{
		KeyedRateLimiter: ratelimit.New(cfg.Server.MutationRate, cfg.Server.MutationBurst),
	}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the record service HTTP server and starts it.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	records := do.MustInvoke[*RecordStoreHandle](i)
	objects := do.MustInvoke[*images.Storage](i)
	limiter := do.MustInvoke[*MutationLimiterHandle](i)

	handler := api.NewServer(records.Records, objects, limiter.KeyedRateLimiter, api.Options{
		CORSOrigins:    cfg.Server.CORSOrigins,
		MaxObjectBytes: cfg.Upload.MaxBytes,
	}, log.Component("api").Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr, "store", records.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
