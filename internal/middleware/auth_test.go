package middleware

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PunchClock/pkg/authn"
	"PunchClock/pkg/response"
)

// fakeVerifier 固定返回预设结果，避免测试依赖真实 JWKS
type fakeVerifier struct {
	claims authn.Claims
	err    error
}

func (f *fakeVerifier) Verify(ctx context.Context, credential string) (authn.Claims, error) {
	return f.claims, f.err
}

func newAuthedContext(authorization string) *app.RequestContext {
	c := app.NewContext(0)
	if authorization != "" {
		c.Request.Header.Set("Authorization", authorization)
	}
	return c
}

func errorCode(t *testing.T, c *app.RequestContext) string {
	t.Helper()
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(c.Response.Body(), &body))
	return body.Error.Code
}

func TestRequireAuthResolvesIdentity(t *testing.T) {
	SetVerifier(&fakeVerifier{claims: authn.Claims{"preferred_username": "alice@example.com"}})
	defer SetVerifier(nil)

	c := newAuthedContext("Bearer some-token")
	RequireAuth()(context.Background(), c)

	identity, ok := GetIdentity(context.Background(), c)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", identity)
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	SetVerifier(&fakeVerifier{claims: authn.Claims{"sub": "guid"}})
	defer SetVerifier(nil)

	for _, header := range []string{"", "Basic dXNlcg==", "Bearer", "Bearer "} {
		c := newAuthedContext(header)
		RequireAuth()(context.Background(), c)

		assert.Equal(t, 401, c.Response.StatusCode(), "header %q", header)
		assert.Equal(t, "UNAUTHORIZED", errorCode(t, c))
	}
}

func TestRequireAuthMapsVerifierErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid credential",
			err:        authn.ErrInvalidCredential,
			wantStatus: 401,
			wantCode:   "INVALID_CREDENTIAL",
		},
		{
			name:       "key set unreachable",
			err:        authn.ErrVerificationUnavailable,
			wantStatus: 500,
			wantCode:   "VERIFICATION_UNAVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVerifier(&fakeVerifier{err: tt.err})
			defer SetVerifier(nil)

			c := newAuthedContext("Bearer some-token")
			RequireAuth()(context.Background(), c)

			assert.Equal(t, tt.wantStatus, c.Response.StatusCode())
			assert.Equal(t, tt.wantCode, errorCode(t, c))
		})
	}
}

func TestRequireAuthRejectsTokenWithoutUsableSubject(t *testing.T) {
	SetVerifier(&fakeVerifier{claims: authn.Claims{"role": "admin"}})
	defer SetVerifier(nil)

	c := newAuthedContext("Bearer some-token")
	RequireAuth()(context.Background(), c)

	assert.Equal(t, 401, c.Response.StatusCode())
	assert.Equal(t, "INVALID_CREDENTIAL", errorCode(t, c))
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	SetVerifier(&fakeVerifier{claims: authn.Claims{"sub": "guid"}})
	defer SetVerifier(nil)

	c := newAuthedContext("")
	OptionalAuth()(context.Background(), c)

	_, ok := GetIdentity(context.Background(), c)
	assert.False(t, ok)
	assert.NotEqual(t, 401, c.Response.StatusCode())
}

func TestOptionalAuthStillRejectsBadCredential(t *testing.T) {
	// 出示了凭证就必须验过，宽松模式不等于接受坏凭证
	SetVerifier(&fakeVerifier{err: authn.ErrInvalidCredential})
	defer SetVerifier(nil)

	c := newAuthedContext("Bearer some-token")
	OptionalAuth()(context.Background(), c)

	assert.Equal(t, 401, c.Response.StatusCode())
}

func TestOptionalAuthResolvesPresentedCredential(t *testing.T) {
	SetVerifier(&fakeVerifier{claims: authn.Claims{"email": "bob@example.com"}})
	defer SetVerifier(nil)

	c := newAuthedContext("Bearer some-token")
	OptionalAuth()(context.Background(), c)

	identity, ok := GetIdentity(context.Background(), c)
	require.True(t, ok)
	assert.Equal(t, "bob@example.com", identity)
}
