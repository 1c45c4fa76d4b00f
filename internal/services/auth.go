package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"timetableadmin/internal/domain"
)

// DefaultTokenExpiry is the lifetime of tokens issued by Login.
const DefaultTokenExpiry = 8 * time.Hour

type authService struct {
	username     string
	passwordHash string
	hasher       domain.PasswordHasher
	issuer       domain.TokenIssuer
	expiry       time.Duration
	logger       *slog.Logger
}

// NewAuthService returns an AuthService for the single operator account configured by
// username and bcrypt passwordHash. With no hash configured every login fails.
func NewAuthService(username, passwordHash string, hasher domain.PasswordHasher, issuer domain.TokenIssuer, expiry time.Duration, logger *slog.Logger) domain.AuthService {
	if expiry <= 0 {
		expiry = DefaultTokenExpiry
	}
	return &authService{
		username:     strings.TrimSpace(username),
		passwordHash: passwordHash,
		hasher:       hasher,
		issuer:       issuer,
		expiry:       expiry,
		logger:       logger,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	if s.passwordHash == "" {
		s.logger.WarnContext(ctx, "login attempted but no operator password is configured")
		return "", domain.ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(s.username)) == 1
	// Always run the hash comparison so a wrong username costs the same as a wrong password.
	passErr := s.hasher.Compare(s.passwordHash, password)
	if !userOK || passErr != nil {
		s.logger.InfoContext(ctx, "login rejected", "username", username)
		return "", domain.ErrInvalidCredentials
	}
	token, err := s.issuer.Issue(s.username, s.expiry)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}
