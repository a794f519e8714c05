package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// DevVerifier decodes bearer tokens without signature verification. It exists
// for local development against emulated identity providers and must never be
// wired in production; config gates it behind a dev-only feature flag.
type DevVerifier struct{}

type devClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func (DevVerifier) Verify(_ context.Context, token string) (Identity, error) {
	if strings.TrimSpace(token) == "" {
		return Identity{}, fmt.Errorf("empty token")
	}

	claims := &devClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, fmt.Errorf("decoding dev token: %w", err)
	}

	uid := claims.UserID
	if uid == "" {
		uid = claims.Subject
	}
	if uid == "" {
		return Identity{}, fmt.Errorf("dev token has no subject")
	}

	return Identity{UID: uid, Email: claims.Email}, nil
}
