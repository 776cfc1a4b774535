package attestation

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

type JWKSOptions struct {
	URL             string
	Issuer          string
	Audience        string
	Leeway          time.Duration
	RefreshInterval time.Duration
	Client          *http.Client
}

// JWKSVerifier validates RS256 tokens against a remote key set that is
// refreshed in the background.
type JWKSVerifier struct {
	keys     keyfunc.Keyfunc
	issuer   string
	audience string
	leeway   time.Duration
}

func NewJWKSVerifier(opts JWKSOptions, logger *slog.Logger) (*JWKSVerifier, error) {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	// Start even if the key endpoint is unreachable; refresh will retry.
	storage, err := jwkset.NewStorageFromHTTP(opts.URL, jwkset.HTTPClientStorageOptions{
		Client:                    client,
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           opts.RefreshInterval,
		RefreshErrorHandler: func(ctx context.Context, err error) {
			logger.ErrorContext(ctx, "jwks refresh failed",
				"error", err,
				"url", opts.URL,
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create jwks storage: %w", err)
	}
	k, err := keyfunc.New(keyfunc.Options{Storage: storage})
	if err != nil {
		return nil, fmt.Errorf("create keyfunc: %w", err)
	}
	return NewJWKSVerifierWithKeyfunc(k, opts.Issuer, opts.Audience, opts.Leeway), nil
}

// NewJWKSVerifierWithKeyfunc wraps an existing key function, e.g. one built
// from a static key set.
func NewJWKSVerifierWithKeyfunc(k keyfunc.Keyfunc, issuer, audience string, leeway time.Duration) *JWKSVerifier {
	return &JWKSVerifier{keys: k, issuer: issuer, audience: audience, leeway: leeway}
}

func (v *JWKSVerifier) Verify(ctx context.Context, raw string) (string, error) {
	if raw == "" {
		return "", ErrMissingToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, v.keys.KeyfuncCtx(ctx),
		parserOptions(jwt.SigningMethodRS256.Alg(), v.issuer, v.audience, v.leeway)...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return subject(token, claims)
}
