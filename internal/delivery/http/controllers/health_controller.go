package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"timetableadmin/internal/delivery/http/helpers"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type HealthController struct {
	Logger *slog.Logger
	DB     Pinger
}

func NewHealthController(logger *slog.Logger, db Pinger) *HealthController {
	return &HealthController{Logger: logger, DB: db}
}

// Health godoc
// @Summary Health check
// @Description Reports whether the service can reach its database. No authentication.
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.status: ok"
// @Failure 503 {object} helpers.APIResponse "data.status: degraded"
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := c.DB.PingContext(ctx); err != nil {
		c.Logger.WarnContext(r.Context(), "database ping failed", "err", err)
		helpers.WriteJSONSuccess(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Database: "unreachable"})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
}
