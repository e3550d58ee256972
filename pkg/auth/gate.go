package auth

import (
	"context"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Config carries everything the authorization pipeline needs. Fetcher
// and Clock default to the real implementations and exist so tests can
// substitute their own.
type Config struct {
	JwksUrl           string
	Issuer            string
	Audience          string
	AllowedAlgorithms []string
	PermissionsClaim  string
	ClockSkew         time.Duration

	Fetcher KeyFetcher
	Clock   jwt.Clock
}

// Authorizer is the single entry point for authenticating a request and
// optionally authorizing it against a required permission. The pipeline
// is strict: extract, decode, resolve key, verify, check permission;
// the first failure is returned unchanged.
type Authorizer struct {
	resolver         *KeyResolver
	verifier         *Verifier
	permissionsClaim string
}

func NewAuthorizer(cfg Config) *Authorizer {
	algorithms := cfg.AllowedAlgorithms
	if len(algorithms) == 0 {
		algorithms = []string{"RS256"}
	}
	claim := cfg.PermissionsClaim
	if claim == "" {
		claim = DefaultPermissionsClaim
	}
	return &Authorizer{
		resolver:         NewKeyResolver(cfg.JwksUrl, cfg.Fetcher),
		verifier:         NewVerifier(algorithms, cfg.Issuer, cfg.Audience, cfg.ClockSkew, cfg.Clock),
		permissionsClaim: claim,
	}
}

// Authorize validates an Authorization header value and, when required
// is non-empty, confirms the token grants that permission. On success
// the verified claim set is returned for downstream handlers.
func (a *Authorizer) Authorize(ctx context.Context, header, required string) (jwt.Token, *AuthError) {
	raw, fail := BearerToken(header)
	if fail != nil {
		return nil, fail
	}
	decoded, fail := DecodeCompact(raw)
	if fail != nil {
		return nil, fail
	}
	key, fail := a.resolver.Resolve(ctx, decoded.Header.Kid)
	if fail != nil {
		return nil, fail
	}
	claims, fail := a.verifier.Verify(decoded, key)
	if fail != nil {
		return nil, fail
	}
	if required != "" {
		if fail := CheckPermission(claims, a.permissionsClaim, required); fail != nil {
			return nil, fail
		}
	}
	return claims, nil
}
