package attestation

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passgate/internal/platform/config"
)

const (
	testKeyID    = "appcheck-test"
	testIssuer   = "https://firebaseappcheck.googleapis.com/123456"
	testAudience = "projects/123456"
	testSecret   = "0123456789abcdef0123456789abcdef"
)

func jwksJSON(pub *rsa.PublicKey) json.RawMessage {
	data, _ := json.Marshal(map[string]any{
		"keys": []map[string]any{{
			"kty": "RSA",
			"kid": testKeyID,
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	})
	return data
}

func signRS256(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKeyID
	s, err := token.SignedString(key)
	require.NoError(t, err)
	return s
}

func TestJWKSVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	kf, err := keyfunc.NewJWKSetJSON(jwksJSON(&key.PublicKey))
	require.NoError(t, err)
	v := NewJWKSVerifierWithKeyfunc(kf, testIssuer, testAudience, 0)
	ctx := context.Background()

	valid := jwt.MapClaims{
		"sub": "1:123456:web:abc",
		"iss": testIssuer,
		"aud": []string{testAudience},
		"exp": jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	t.Run("valid token yields app id", func(t *testing.T) {
		appID, err := v.Verify(ctx, signRS256(t, key, valid))
		require.NoError(t, err)
		assert.Equal(t, "1:123456:web:abc", appID)
	})

	t.Run("empty token is missing", func(t *testing.T) {
		_, err := v.Verify(ctx, "")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("expired token is invalid", func(t *testing.T) {
		claims := jwt.MapClaims{}
		for k, val := range valid {
			claims[k] = val
		}
		claims["exp"] = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		_, err := v.Verify(ctx, signRS256(t, key, claims))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong audience is invalid", func(t *testing.T) {
		claims := jwt.MapClaims{}
		for k, val := range valid {
			claims[k] = val
		}
		claims["aud"] = []string{"projects/other"}
		_, err := v.Verify(ctx, signRS256(t, key, claims))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token signed by another key is invalid", func(t *testing.T) {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		_, err = v.Verify(ctx, signRS256(t, other, valid))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage is invalid", func(t *testing.T) {
		_, err := v.Verify(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestHMACVerifier(t *testing.T) {
	v := NewHMACVerifier(testSecret, testIssuer, testAudience, time.Second)
	ctx := context.Background()

	t.Run("issued token verifies", func(t *testing.T) {
		tok, err := v.Issue("app-1", time.Minute)
		require.NoError(t, err)
		appID, err := v.Verify(ctx, tok)
		require.NoError(t, err)
		assert.Equal(t, "app-1", appID)
	})

	t.Run("token from a different secret is invalid", func(t *testing.T) {
		other := NewHMACVerifier("ffffffffffffffffffffffffffffffff", testIssuer, testAudience, 0)
		tok, err := other.Issue("app-1", time.Minute)
		require.NoError(t, err)
		_, err = v.Verify(ctx, tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token without subject is invalid", func(t *testing.T) {
		tok, err := v.Issue("", time.Minute)
		require.NoError(t, err)
		_, err = v.Verify(ctx, tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rs256 token is rejected by hmac verifier", func(t *testing.T) {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		tok := signRS256(t, key, jwt.MapClaims{
			"sub": "app-1",
			"iss": testIssuer,
			"exp": jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		_, err = v.Verify(ctx, tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewSelectsMode(t *testing.T) {
	v, err := New(config.AppCheckConfig{Mode: config.AppCheckModeHMAC, HMACSecret: testSecret}, nil)
	require.NoError(t, err)
	assert.IsType(t, &HMACVerifier{}, v)

	_, err = New(config.AppCheckConfig{Mode: "bogus"}, nil)
	assert.Error(t, err)
}
