package api

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// Pinger is implemented by record backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"database": s.checkDatabase(ctx),
		"objects":  s.checkObjects(),
	}

	overall := "healthy"
	for _, c := range components {
		switch c.Status {
		case "unhealthy":
			overall = "unhealthy"
		case "degraded":
			if overall == "healthy" {
				overall = "degraded"
			}
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkDatabase pings the record backend, or falls back to a cheap select.
func (s *Server) checkDatabase(ctx context.Context) ComponentHealth {
	if s.records == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "record store not configured",
		}
	}

	start := time.Now()
	var err error
	if p, ok := s.records.(Pinger); ok {
		err = p.Ping(ctx)
	} else {
		_, err = s.records.Select(ctx, "sections", nil)
	}
	latency := time.Since(start)

	if err != nil {
		s.logger.Warn("Health check: database unreachable", "error", err)
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "database read failed",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

// checkObjects verifies the image directory is still present.
func (s *Server) checkObjects() ComponentHealth {
	if s.objects == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "object storage not configured",
		}
	}

	info, err := os.Stat(s.objects.Root())
	if err != nil || !info.IsDir() {
		return ComponentHealth{
			Status:  "unhealthy",
			Message: "object directory unavailable",
		}
	}
	return ComponentHealth{Status: "healthy"}
}
