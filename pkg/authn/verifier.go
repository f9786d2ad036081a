package authn

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// 验证失败分两类：凭证本身不合法（签名/issuer/audience/过期不匹配），
// 与密钥集拉取失败（issuer 不可达）。后者不代表凭证非法，调用方必须区分。
var (
	ErrMalformedCredential     = errors.New("missing or malformed credential")
	ErrInvalidCredential       = errors.New("credential verification failed")
	ErrVerificationUnavailable = errors.New("signing key set unavailable")
)

const (
	keyFetchTimeout    = 5 * time.Second
	minRefreshInterval = 15 * time.Minute
)

// Verifier 校验 bearer 凭证并产出 claim 集
type Verifier interface {
	Verify(ctx context.Context, credential string) (Claims, error)
}

// JWKSVerifier 基于 issuer 发布的 JWKS 验证签名令牌。
// 密钥按 kid 缓存在进程内；kid 未命中触发一次重新拉取，密钥按 kid 轮换、不会原地变更，
// 故无需额外的失效策略。
type JWKSVerifier struct {
	issuer   string
	audience string
	jwksURL  string
	cache    *jwk.Cache
	parser   *jwtv5.Parser
}

// Options JWKS 验证器配置
type Options struct {
	Issuer   string
	Audience string
	JWKSURL  string
}

// NewJWKSVerifier 创建验证器，ctx 控制密钥缓存后台刷新的生命周期
func NewJWKSVerifier(ctx context.Context, opts Options) (*JWKSVerifier, error) {
	if opts.Issuer == "" || opts.Audience == "" || opts.JWKSURL == "" {
		return nil, errors.New("issuer, audience and jwks url are all required")
	}

	cache := jwk.NewCache(ctx)
	if err := cache.Register(opts.JWKSURL, jwk.WithMinRefreshInterval(minRefreshInterval)); err != nil {
		return nil, fmt.Errorf("failed to register jwks url: %w", err)
	}

	parser := jwtv5.NewParser(
		jwtv5.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		jwtv5.WithIssuer(opts.Issuer),
		jwtv5.WithAudience(opts.Audience),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithLeeway(30*time.Second),
	)

	return &JWKSVerifier{
		issuer:   opts.Issuer,
		audience: opts.Audience,
		jwksURL:  opts.JWKSURL,
		cache:    cache,
		parser:   parser,
	}, nil
}

// Verify 对凭证做单次验证：查 kid 对应的签名密钥，校验签名、issuer、audience 与有效期。
// 不做重试，密钥拉取有超时上限。
func (v *JWKSVerifier) Verify(ctx context.Context, credential string) (Claims, error) {
	if credential == "" {
		return nil, ErrMalformedCredential
	}

	fetchCtx, cancel := context.WithTimeout(ctx, keyFetchTimeout)
	defer cancel()

	claims := jwtv5.MapClaims{}
	token, err := v.parser.ParseWithClaims(credential, claims, v.keyfunc(fetchCtx))
	if err != nil {
		if errors.Is(err, ErrVerificationUnavailable) {
			return nil, ErrVerificationUnavailable
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	if !token.Valid {
		return nil, ErrInvalidCredential
	}

	return Claims(claims), nil
}

// keyfunc 从缓存的密钥集中解析 kid 对应的公钥
func (v *JWKSVerifier) keyfunc(ctx context.Context) jwtv5.Keyfunc {
	return func(t *jwtv5.Token) (interface{}, error) {
		kid, ok := t.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("token header carries no kid")
		}

		set, err := v.cache.Get(ctx, v.jwksURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
		}

		key, found := set.LookupKeyID(kid)
		if !found {
			// kid 未命中，强制重新拉取一次再查
			set, err = v.cache.Refresh(ctx, v.jwksURL)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
			}
			if key, found = set.LookupKeyID(kid); !found {
				return nil, fmt.Errorf("signing key %q not found in key set", kid)
			}
		}

		var pub interface{}
		if err := key.Raw(&pub); err != nil {
			return nil, fmt.Errorf("failed to materialize signing key %q: %v", kid, err)
		}

		return pub, nil
	}
}
