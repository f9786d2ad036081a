package authn

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://login.example.com/tenant"
	testAudience = "api://punchclock"
	testKeyID    = "test-signing-key"
)

type jwksFixture struct {
	key    *rsa.PrivateKey
	server *httptest.Server
}

// newJWKSFixture 起一个只发布公钥集的 HTTP server，扮演身份提供方
func newJWKSFixture(t *testing.T) *jwksFixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pub, err := jwk.FromRaw(key.Public())
	require.NoError(t, err)
	require.NoError(t, pub.Set(jwk.KeyIDKey, testKeyID))
	require.NoError(t, pub.Set(jwk.AlgorithmKey, jwa.RS256))
	require.NoError(t, pub.Set(jwk.KeyUsageKey, "sig"))

	set := jwk.NewSet()
	require.NoError(t, set.AddKey(pub))

	payload, err := json.Marshal(set)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
	}))
	t.Cleanup(server.Close)

	return &jwksFixture{key: key, server: server}
}

func (f *jwksFixture) verifier(t *testing.T) *JWKSVerifier {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	v, err := NewJWKSVerifier(ctx, Options{
		Issuer:   testIssuer,
		Audience: testAudience,
		JWKSURL:  f.server.URL,
	})
	require.NoError(t, err)
	return v
}

// mint 签发一个测试令牌，claims 覆盖默认值
func (f *jwksFixture) mint(t *testing.T, kid string, override map[string]interface{}) string {
	t.Helper()

	claims := jwtv5.MapClaims{
		"iss": testIssuer,
		"aud": testAudience,
		"sub": "subject-guid",
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	for k, v := range override {
		if v == nil {
			delete(claims, k)
			continue
		}
		claims[k] = v
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}

	signed, err := token.SignedString(f.key)
	require.NoError(t, err)
	return signed
}

func TestJWKSVerifierAcceptsValidToken(t *testing.T) {
	f := newJWKSFixture(t)
	v := f.verifier(t)

	credential := f.mint(t, testKeyID, map[string]interface{}{
		"preferred_username": "alice@example.com",
	})

	claims, err := v.Verify(context.Background(), credential)
	require.NoError(t, err)

	subject, ok := claims.Subject([]string{"preferred_username", "upn", "email", "oid", "sub"})
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", subject)
}

func TestJWKSVerifierSubjectFallback(t *testing.T) {
	f := newJWKSFixture(t)
	v := f.verifier(t)

	priority := []string{"preferred_username", "upn", "email", "oid", "sub"}

	// 没有高优先级 claim 时逐级回退
	claims, err := v.Verify(context.Background(), f.mint(t, testKeyID, map[string]interface{}{
		"email": "bob@example.com",
	}))
	require.NoError(t, err)
	subject, ok := claims.Subject(priority)
	require.True(t, ok)
	assert.Equal(t, "bob@example.com", subject)

	// 一个可用 claim 都没有时回退到 sub
	claims, err = v.Verify(context.Background(), f.mint(t, testKeyID, nil))
	require.NoError(t, err)
	subject, ok = claims.Subject(priority)
	require.True(t, ok)
	assert.Equal(t, "subject-guid", subject)
}

func TestJWKSVerifierRejectsInvalidTokens(t *testing.T) {
	f := newJWKSFixture(t)
	v := f.verifier(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		credential string
	}{
		{
			name:       "expired",
			credential: f.mint(t, testKeyID, map[string]interface{}{"exp": time.Now().Add(-2 * time.Hour).Unix()}),
		},
		{
			name:       "missing expiry",
			credential: f.mint(t, testKeyID, map[string]interface{}{"exp": nil}),
		},
		{
			name:       "wrong audience",
			credential: f.mint(t, testKeyID, map[string]interface{}{"aud": "api://another-service"}),
		},
		{
			name:       "wrong issuer",
			credential: f.mint(t, testKeyID, map[string]interface{}{"iss": "https://evil.example.com"}),
		},
		{
			name:       "unknown signing key",
			credential: f.mint(t, "rotated-away-kid", nil),
		},
		{
			name:       "no kid header",
			credential: f.mint(t, "", nil),
		},
		{
			name:       "garbage",
			credential: "not.a.token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(ctx, tt.credential)
			assert.ErrorIs(t, err, ErrInvalidCredential)
		})
	}
}

func TestJWKSVerifierRejectsForeignKey(t *testing.T) {
	f := newJWKSFixture(t)
	v := f.verifier(t)

	// 同一个 kid，但签名私钥不是 JWKS 里公钥的对应方
	foreign, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, jwtv5.MapClaims{
		"iss": testIssuer,
		"aud": testAudience,
		"sub": "subject-guid",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token.Header["kid"] = testKeyID
	credential, err := token.SignedString(foreign)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), credential)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestJWKSVerifierRejectsEmptyCredential(t *testing.T) {
	f := newJWKSFixture(t)
	v := f.verifier(t)

	_, err := v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrMalformedCredential)
}

func TestJWKSVerifierUnreachableIssuer(t *testing.T) {
	f := newJWKSFixture(t)
	credential := f.mint(t, testKeyID, nil)

	// 密钥集还没拉过一次，issuer 就失联了
	f.server.Close()
	v := f.verifier(t)

	_, err := v.Verify(context.Background(), credential)
	assert.ErrorIs(t, err, ErrVerificationUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidCredential)
}

func TestNewJWKSVerifierRequiresAllOptions(t *testing.T) {
	ctx := context.Background()

	for _, opts := range []Options{
		{Audience: testAudience, JWKSURL: "http://localhost/jwks"},
		{Issuer: testIssuer, JWKSURL: "http://localhost/jwks"},
		{Issuer: testIssuer, Audience: testAudience},
	} {
		_, err := NewJWKSVerifier(ctx, opts)
		assert.Error(t, err)
	}
}
