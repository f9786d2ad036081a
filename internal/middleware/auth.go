package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"

	"PunchClock/config"
	"PunchClock/pkg/authn"
	apperrors "PunchClock/pkg/errors"
	"PunchClock/pkg/response"
)

const (
	IdentityKey = "identity"

	bearerPrefix = "Bearer "
)

var (
	verifier authn.Verifier
)

// initAuthMiddleware 按配置创建共享的凭证验证器。
// 未配置 JWKS 地址时验证器为空，所有请求按匿名处理。
func initAuthMiddleware() error {
	if !config.Cfg.AuthConfigured() {
		return nil
	}

	v, err := authn.NewJWKSVerifier(context.Background(), authn.Options{
		Issuer:   config.Cfg.AuthIssuer,
		Audience: config.Cfg.AuthAudience,
		JWKSURL:  config.Cfg.AuthJWKSURL,
	})
	if err != nil {
		return err
	}

	verifier = v
	return nil
}

// SetVerifier 注入验证器，用于测试替换
func SetVerifier(v authn.Verifier) {
	verifier = v
}

// extractCredential 从 Authorization 头中取出 bearer 凭证
func extractCredential(c *app.RequestContext) (string, bool) {
	header := string(c.GetHeader("Authorization"))
	if header == "" {
		return "", false
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	credential := strings.TrimSpace(header[len(bearerPrefix):])
	return credential, credential != ""
}

// resolveIdentity 验证凭证并按 claim 优先级解析出主体标识
func resolveIdentity(ctx context.Context, credential string) (string, *apperrors.Definition) {
	claims, err := verifier.Verify(ctx, credential)
	if err != nil {
		if errors.Is(err, authn.ErrVerificationUnavailable) {
			return "", &apperrors.VerificationUnavailable
		}
		return "", &apperrors.InvalidCredential
	}

	identity, ok := claims.Subject(config.Cfg.SubjectClaimPriority())
	if !ok {
		// 凭证合法但不含任何可用的主体 claim
		return "", &apperrors.InvalidCredential
	}

	return identity, nil
}

// RequireAuth 强制认证：凭证缺失、格式错误或验证失败一律拒绝
func RequireAuth() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if verifier == nil {
			response.Error(ctx, c, &apperrors.Unauthorized)
			c.Abort()
			return
		}

		credential, ok := extractCredential(c)
		if !ok {
			response.Error(ctx, c, &apperrors.Unauthorized)
			c.Abort()
			return
		}

		identity, errDef := resolveIdentity(ctx, credential)
		if errDef != nil {
			response.Error(ctx, c, errDef)
			c.Abort()
			return
		}

		c.Set(IdentityKey, identity)
		c.Next(ctx)
	}
}

// OptionalAuth 宽松认证：无凭证按匿名放行，但出示了凭证就必须验过
func OptionalAuth() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		credential, ok := extractCredential(c)
		if !ok || verifier == nil {
			c.Next(ctx)
			return
		}

		identity, errDef := resolveIdentity(ctx, credential)
		if errDef != nil {
			response.Error(ctx, c, errDef)
			c.Abort()
			return
		}

		c.Set(IdentityKey, identity)
		c.Next(ctx)
	}
}

// GetIdentity 从请求上下文中获取已验证的主体标识
func GetIdentity(ctx context.Context, c *app.RequestContext) (string, bool) {
	val, exists := c.Get(IdentityKey)
	if !exists {
		return "", false
	}

	identity, ok := val.(string)
	if !ok {
		return "", false
	}

	return identity, true
}
