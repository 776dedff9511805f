// Package health contiene el service para health checks.
package health

import (
	"context"
	"time"

	dto "github.com/dropDatabas3/hellojohn-introspect/internal/http/dto/health"
	"github.com/dropDatabas3/hellojohn-introspect/internal/observability/logger"
)

// HealthService define las operaciones de health check.
type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// Deps contiene las dependencias inyectables para el health service.
type Deps struct {
	StoreCheck func(ctx context.Context) error // crítico
	CacheCheck func(ctx context.Context) error // opcional: sin cache se degrada, no cae
	KeyCount   int
	Version    string
	Timeout    time.Duration
}

type healthService struct {
	deps Deps
}

// NewHealthService crea un nuevo service de health check.
func NewHealthService(deps Deps) HealthService {
	if deps.Timeout <= 0 {
		deps.Timeout = 2 * time.Second
	}
	return &healthService{deps: deps}
}

func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("health"),
		logger.Op("Check"),
	)

	ctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
	defer cancel()

	resp := dto.HealthResponse{
		Status:     "ready",
		Version:    s.deps.Version,
		Components: make(map[string]dto.HealthStatus),
		Timestamp:  time.Now().UTC(),
	}

	// 1) Store (crítico)
	if s.deps.StoreCheck == nil {
		resp.Components["store"] = dto.HealthStatus{Status: "error", Message: "not initialized"}
		resp.Status = "unavailable"
	} else if err := s.deps.StoreCheck(ctx); err != nil {
		resp.Components["store"] = dto.HealthStatus{Status: "error", Message: "unavailable"}
		resp.Status = "unavailable"
		log.Error("store unavailable", logger.Err(err))
	} else {
		resp.Components["store"] = dto.HealthStatus{Status: "ok"}
	}

	// 2) Keys (crítico)
	if s.deps.KeyCount == 0 {
		resp.Components["keys"] = dto.HealthStatus{Status: "error", Message: "no verification keys"}
		resp.Status = "unavailable"
	} else {
		resp.Components["keys"] = dto.HealthStatus{Status: "ok"}
	}

	// 3) Cache de revocación
	switch {
	case s.deps.CacheCheck == nil:
		resp.Components["cache"] = dto.HealthStatus{Status: "disabled"}
	default:
		if err := s.deps.CacheCheck(ctx); err != nil {
			resp.Components["cache"] = dto.HealthStatus{Status: "error", Message: "unavailable"}
			if resp.Status == "ready" {
				resp.Status = "degraded"
			}
			log.Warn("cache unavailable", logger.Err(err))
		} else {
			resp.Components["cache"] = dto.HealthStatus{Status: "ok"}
		}
	}

	return resp
}
