package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"timetableadmin/internal/adapters/auth"
	"timetableadmin/internal/delivery/http/helpers"
	"timetableadmin/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokenVerifier implements domain.TokenVerifier for tests.
type fakeTokenVerifier struct {
	subject string
	err     error
}

func (f *fakeTokenVerifier) Verify(_ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.subject, nil
}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name         string
		authHeader   string
		verifier     domain.TokenVerifier
		wantStatus   int
		wantBodyCode string
		nextCalled   bool
		wantSubject  string
	}{
		{
			name:        "valid token sets context and calls next",
			authHeader:  "Bearer valid-token",
			verifier:    &fakeTokenVerifier{subject: "admin-1"},
			wantStatus:  http.StatusOK,
			nextCalled:  true,
			wantSubject: "admin-1",
		},
		{
			name:         "missing authorization header",
			authHeader:   "",
			verifier:     &fakeTokenVerifier{subject: "admin-1"},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
			nextCalled:   false,
		},
		{
			name:         "invalid authorization format no Bearer prefix",
			authHeader:   "Basic abc",
			verifier:     &fakeTokenVerifier{subject: "admin-1"},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
			nextCalled:   false,
		},
		{
			name:         "empty token after Bearer",
			authHeader:   "Bearer ",
			verifier:     &fakeTokenVerifier{subject: "admin-1"},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
			nextCalled:   false,
		},
		{
			name:         "verifier returns error",
			authHeader:   "Bearer bad-token",
			verifier:     &fakeTokenVerifier{err: errors.New("invalid or expired token")},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
			nextCalled:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			var capturedSubject string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				id, ok := SubjectFromContext(r.Context())
				if ok {
					capturedSubject = id
				}
				w.WriteHeader(http.StatusOK)
			})
			wrap := RequireAuth(tt.verifier, logger)
			handler := wrap(next)

			req := httptest.NewRequest(http.MethodGet, "http://test/schedules", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			handler(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			assert.Equal(t, tt.nextCalled, nextCalled, "next handler called")
			if tt.nextCalled && tt.wantSubject != "" {
				assert.Equal(t, tt.wantSubject, capturedSubject, "subject in context")
			}
			if tt.wantStatus != http.StatusOK && tt.wantBodyCode != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
		})
	}
}

func TestRequireAuth_OperatorTokens(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	signer := auth.NewJWT("horarios-secret")

	valid, err := signer.Issue("coordinacion", time.Hour)
	require.NoError(t, err)
	expired, err := signer.Issue("coordinacion", -time.Minute)
	require.NoError(t, err)
	foreign, err := auth.NewJWT("otro-secreto").Issue("coordinacion", time.Hour)
	require.NoError(t, err)
	anonymous, err := signer.Issue("", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name        string
		token       string
		wantStatus  int
		wantSubject string
	}{
		{"issued by login", valid, http.StatusOK, "coordinacion"},
		{"expired", expired, http.StatusUnauthorized, ""},
		{"signed with another secret", foreign, http.StatusUnauthorized, ""},
		{"no subject", anonymous, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var subject string
			handler := RequestID(http.HandlerFunc(RequireAuth(signer, logger)(func(w http.ResponseWriter, r *http.Request) {
				subject, _ = SubjectFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})))

			req := httptest.NewRequest(http.MethodDelete, "/groups/4/schedules", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantSubject, subject)
			assert.NotEmpty(t, rr.Header().Get(RequestIDHeader), "rejections still carry a request id")
		})
	}
}
