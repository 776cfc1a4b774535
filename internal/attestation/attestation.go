// Package attestation verifies app-integrity tokens presented by callers of the
// registration endpoints.
package attestation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"passgate/internal/platform/config"
)

var (
	ErrMissingToken = errors.New("attestation token missing")
	ErrInvalidToken = errors.New("attestation token invalid")
)

// Verifier checks a raw attestation token and returns the attested app id.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// Claims carried by an attestation token. The subject is the app id.
type Claims struct {
	jwt.RegisteredClaims
}

// New builds the verifier selected by cfg.Mode.
func New(cfg config.AppCheckConfig, logger *slog.Logger) (Verifier, error) {
	switch cfg.Mode {
	case config.AppCheckModeHMAC:
		return NewHMACVerifier(cfg.HMACSecret, cfg.Issuer, cfg.Audience, cfg.Leeway), nil
	case config.AppCheckModeJWKS:
		return NewJWKSVerifier(JWKSOptions{
			URL:             cfg.JWKSURL,
			Issuer:          cfg.Issuer,
			Audience:        cfg.Audience,
			Leeway:          cfg.Leeway,
			RefreshInterval: cfg.RefreshInterval,
			Client:          &http.Client{Timeout: 10 * time.Second},
		}, logger)
	default:
		return nil, fmt.Errorf("unknown appcheck mode %q", cfg.Mode)
	}
}

func parserOptions(method, issuer, audience string, leeway time.Duration) []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return opts
}

func subject(token *jwt.Token, claims *Claims) (string, error) {
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
