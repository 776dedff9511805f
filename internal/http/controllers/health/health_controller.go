// Package health contiene el controller para health checks.
package health

import (
	"encoding/json"
	"net/http"

	httperrors "github.com/dropDatabas3/hellojohn-introspect/internal/http/errors"
	svc "github.com/dropDatabas3/hellojohn-introspect/internal/http/services/health"
	"github.com/dropDatabas3/hellojohn-introspect/internal/observability/logger"
	"go.uber.org/zap"
)

// HealthController maneja las rutas de health check.
type HealthController struct {
	service svc.HealthService
}

// NewHealthController crea un nuevo controller de health check.
func NewHealthController(service svc.HealthService) *HealthController {
	return &HealthController{service: service}
}

// Readyz maneja GET /readyz
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed, false)
		return
	}

	resp := c.service.Check(ctx)

	status := http.StatusOK
	if resp.Status == "unavailable" {
		status = http.StatusServiceUnavailable
	}
	if resp.Version != "" {
		w.Header().Set("X-Service-Version", resp.Version)
	}

	log.Debug("health check completed", zap.String("status", resp.Status))

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
