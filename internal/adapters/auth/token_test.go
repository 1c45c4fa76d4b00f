package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_IssueAndVerify(t *testing.T) {
	j := NewJWT("test-secret")

	token, err := j.Issue("admin-1", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sub, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", sub)
}

func TestJWT_VerifyRejects(t *testing.T) {
	j := NewJWT("test-secret")

	expired, err := j.Issue("admin-1", -time.Minute)
	require.NoError(t, err)

	otherSecret, err := NewJWT("other").Issue("admin-1", time.Hour)
	require.NoError(t, err)

	noSubject, err := j.Issue("", time.Hour)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "admin-1"}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", otherSecret},
		{"no subject", noSubject},
		{"no expiry", noExpiry},
		{"garbage", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := j.Verify(tt.token)
			assert.Error(t, err)
		})
	}
}
