package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errMissingSubject = errors.New("token has no subject")

type jwtClaims struct {
	jwt.RegisteredClaims
}

// JWT signs and verifies HS256 bearer tokens for the admin API.
type JWT struct {
	secret []byte
}

// NewJWT returns a JWT signer/verifier using the given shared secret.
func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret)}
}

// Issue signs a token for subject that expires after expiry.
func (j *JWT) Issue(subject string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify implements domain.TokenVerifier. Only HS256 tokens with a subject are accepted.
func (j *JWT) Verify(tokenString string) (string, error) {
	claims := &jwtClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if claims.Subject == "" {
		return "", errMissingSubject
	}
	return claims.Subject, nil
}
