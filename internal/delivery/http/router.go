package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"timetableadmin/internal/delivery/http/controllers"
	"timetableadmin/internal/delivery/http/middleware"
	"timetableadmin/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Schedules      *controllers.ScheduleController
	MergedSessions *controllers.MergedSessionController
	Health         *controllers.HealthController
	Auth           *controllers.AuthController
}

// NewRouter initializes the HTTP router with all application routes.
// Every route except login, health and swagger requires a bearer token.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Schedules
	mux.HandleFunc("GET /schedules", auth(c.Schedules.ListSchedules))
	mux.HandleFunc("POST /schedules", auth(c.Schedules.AssignSchedule))
	mux.HandleFunc("POST /schedules/validate", auth(c.Schedules.ValidateSchedule))
	mux.HandleFunc("POST /schedules/bulk-delete", auth(c.Schedules.BulkDeleteSchedules))
	mux.HandleFunc("PUT /schedules/{id}", auth(c.Schedules.UpdateSchedule))
	mux.HandleFunc("DELETE /schedules/{id}", auth(c.Schedules.DeleteSchedule))
	mux.HandleFunc("DELETE /groups/{groupID}/schedules", auth(c.Schedules.DeleteGroupSchedules))

	// Merged sessions
	mux.HandleFunc("GET /merged-sessions", auth(c.MergedSessions.ListMergedSessions))
	mux.HandleFunc("POST /merged-sessions", auth(c.MergedSessions.CreateMergedSession))
	mux.HandleFunc("PUT /merged-sessions/{id}", auth(c.MergedSessions.UpdateMergedSession))
	mux.HandleFunc("DELETE /merged-sessions/{id}", auth(c.MergedSessions.DeleteMergedSession))

	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("GET /health", c.Health.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewHandler wraps the router with the request id, logging and CORS middleware.
func NewHandler(mux http.Handler, allowedOrigins []string, logger *slog.Logger) http.Handler {
	return middleware.RequestID(middleware.LoggingMiddleware(logger, middleware.CORS(allowedOrigins, mux)))
}
