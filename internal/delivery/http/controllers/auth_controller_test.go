package controllers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"timetableadmin/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct {
	token        string
	err          error
	lastUsername string
}

func (f *fakeAuthService) Login(ctx context.Context, username, password string) (string, error) {
	f.lastUsername = username
	return f.token, f.err
}

func TestAuthController_Login(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		fakeErr    error
		wantStatus int
	}{
		{"success", `{"username":"coordinacion","password":"secret"}`, nil, http.StatusOK},
		{"missing password", `{"username":"coordinacion"}`, nil, http.StatusBadRequest},
		{"invalid credentials", `{"username":"coordinacion","password":"nope"}`, domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"issuer failure", `{"username":"coordinacion","password":"secret"}`, errors.New("sign failed"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAuthService{token: "tok", err: tt.fakeErr}
			ctrl := NewAuthController(testLogger, fake)
			rr := httptest.NewRecorder()

			ctrl.Login(rr, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(tt.body)))

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantStatus == http.StatusOK {
				var resp LoginResponse
				decodeData(t, envelope, &resp)
				assert.Equal(t, LoginResponse{Token: "tok", TokenType: "Bearer"}, resp)
				assert.Equal(t, "coordinacion", fake.lastUsername)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.NotContains(t, envelope.Error.Message, "sign failed")
		})
	}
}
