package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetableadmin/internal/adapters/auth"
	"timetableadmin/internal/delivery/http/controllers"
	"timetableadmin/internal/domain"
	"timetableadmin/internal/services"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type staticVerifier struct{}

func (staticVerifier) Verify(token string) (string, error) {
	if token == "good" {
		return "admin", nil
	}
	return "", errors.New("bad token")
}

type okPinger struct{}

func (okPinger) PingContext(ctx context.Context) error { return nil }

type emptySchedules struct{ domain.ScheduleService }

func (emptySchedules) List(ctx context.Context, f domain.ScheduleFilter) ([]domain.ScheduleEntry, error) {
	return []domain.ScheduleEntry{}, nil
}

type emptyMerged struct{ domain.MergedSessionService }

func (emptyMerged) ListDisplay(ctx context.Context) ([]domain.MergedSessionDisplay, error) {
	return []domain.MergedSessionDisplay{}, nil
}

type rejectingAuth struct{}

func (rejectingAuth) Login(ctx context.Context, username, password string) (string, error) {
	return "", domain.ErrInvalidCredentials
}

func newTestHandler() http.Handler {
	mux := NewRouter(Controllers{
		Schedules:      controllers.NewScheduleController(testLogger, emptySchedules{}, nil),
		MergedSessions: controllers.NewMergedSessionController(testLogger, emptyMerged{}),
		Health:         controllers.NewHealthController(testLogger, okPinger{}),
		Auth:           controllers.NewAuthController(testLogger, rejectingAuth{}),
	}, staticVerifier{}, testLogger)
	return NewHandler(mux, []string{"https://horarios.uni.edu"}, testLogger)
}

func TestRouter(t *testing.T) {
	handler := newTestHandler()

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"health is public", http.MethodGet, "/health", "", http.StatusOK},
		{"login is public", http.MethodPost, "/auth/login", "", http.StatusBadRequest},
		{"schedules need a token", http.MethodGet, "/schedules", "", http.StatusUnauthorized},
		{"schedules reject a bad token", http.MethodGet, "/schedules", "nope", http.StatusUnauthorized},
		{"schedules with token", http.MethodGet, "/schedules", "good", http.StatusOK},
		{"merged sessions with token", http.MethodGet, "/merged-sessions", "good", http.StatusOK},
		{"bad id before service", http.MethodDelete, "/schedules/abc", "good", http.StatusBadRequest},
		{"method not allowed", http.MethodPatch, "/schedules/1", "good", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
		})
	}
}

func TestRouter_Preflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/schedules/bulk-delete", strings.NewReader(""))
	req.Header.Set("Origin", "https://horarios.uni.edu")
	rr := httptest.NewRecorder()

	newTestHandler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://horarios.uni.edu", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_LoginTokenOpensProtectedRoutes(t *testing.T) {
	hasher := auth.NewBcrypt(4)
	hash, err := hasher.Hash("clave-segura")
	require.NoError(t, err)
	tokens := auth.NewJWT("horarios-secret")

	mux := NewRouter(Controllers{
		Schedules:      controllers.NewScheduleController(testLogger, emptySchedules{}, nil),
		MergedSessions: controllers.NewMergedSessionController(testLogger, emptyMerged{}),
		Health:         controllers.NewHealthController(testLogger, okPinger{}),
		Auth:           controllers.NewAuthController(testLogger, services.NewAuthService("coordinacion", hash, hasher, tokens, time.Hour, testLogger)),
	}, tokens, testLogger)
	handler := NewHandler(mux, nil, testLogger)

	login := func(body string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))
		return rr
	}

	rr := login(`{"username":"coordinacion","password":"incorrecta"}`)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = login(`{"username":"coordinacion","password":"clave-segura"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var envelope struct {
		Data controllers.LoginResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	assert.Equal(t, "Bearer", envelope.Data.TokenType)

	req := httptest.NewRequest(http.MethodGet, "/schedules", nil)
	req.Header.Set("Authorization", "Bearer "+envelope.Data.Token)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/merged-sessions", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
