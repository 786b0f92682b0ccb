package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"microblog/internal/model"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Verifier checks bearer tokens against the identity provider's JWKS and
// extracts the caller email from the verified claims.
type Verifier struct {
	keys     jwk.Set
	issuer   string
	audience string
}

// NewVerifier fetches and caches the JWKS behind jwksURL. The cache refreshes
// itself in the background for the lifetime of ctx.
func NewVerifier(ctx context.Context, jwksURL, issuer, audience string) (*Verifier, error) {
	cache := jwk.NewCache(ctx)
	if err := cache.Register(jwksURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, fmt.Errorf("register jwks url: %w", err)
	}
	if _, err := cache.Refresh(ctx, jwksURL); err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	return &Verifier{
		keys:     jwk.NewCachedSet(cache, jwksURL),
		issuer:   issuer,
		audience: audience,
	}, nil
}

func (v *Verifier) Verify(ctx context.Context, token string) (model.Identity, error) {
	opts := []jwt.ParseOption{
		jwt.WithContext(ctx),
		jwt.WithKeySet(v.keys, jws.WithInferAlgorithmFromKey(true)),
		jwt.WithValidate(true),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	tok, err := jwt.Parse([]byte(token), opts...)
	if err != nil {
		return model.Identity{}, fmt.Errorf("verify token: %w", err)
	}

	raw, ok := tok.Get("email")
	email, _ := raw.(string)
	if !ok || email == "" {
		return model.Identity{}, errors.New("token carries no email claim")
	}
	return model.Identity{Email: email}, nil
}
