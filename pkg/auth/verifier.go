package auth

import (
	"errors"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Verifier checks a decoded token's signature against a resolved key
// and validates its claims. Issuer and audience are compared only when
// configured; temporal claims are always enforced.
type Verifier struct {
	allowed  map[string]jwa.SignatureAlgorithm
	issuer   string
	audience string
	skew     time.Duration
	clock    jwt.Clock
}

func NewVerifier(allowedAlgorithms []string, issuer, audience string, skew time.Duration, clock jwt.Clock) *Verifier {
	if clock == nil {
		clock = jwt.ClockFunc(time.Now)
	}
	allowed := make(map[string]jwa.SignatureAlgorithm, len(allowedAlgorithms))
	for _, name := range allowedAlgorithms {
		for _, alg := range jwa.SignatureAlgorithms() {
			if alg.String() == name {
				allowed[name] = alg
			}
		}
	}
	return &Verifier{
		allowed:  allowed,
		issuer:   issuer,
		audience: audience,
		skew:     skew,
		clock:    clock,
	}
}

// Verify confirms the token's signature and claim validity, returning
// the claim set untouched on success. The signature is checked over the
// original compact bytes.
func (v *Verifier) Verify(decoded *DecodedToken, key jwk.Key) (jwt.Token, *AuthError) {
	alg, ok := v.allowed[decoded.Header.Alg]
	if !ok {
		return nil, invalidHeader("Unsupported signing algorithm.")
	}
	if _, err := jws.Verify(decoded.Raw, jws.WithKey(alg, key)); err != nil {
		return nil, invalidSignature()
	}

	if err := jwt.Validate(decoded.Claims, jwt.WithClock(v.clock), jwt.WithAcceptableSkew(v.skew)); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, tokenExpired()
		}
		return nil, incorrectClaims()
	}

	if v.issuer != "" || v.audience != "" {
		options := []jwt.ValidateOption{jwt.WithClock(v.clock), jwt.WithAcceptableSkew(v.skew)}
		if v.issuer != "" {
			options = append(options, jwt.WithIssuer(v.issuer))
		}
		if v.audience != "" {
			options = append(options, jwt.WithAudience(v.audience))
		}
		if err := jwt.Validate(decoded.Claims, options...); err != nil {
			return nil, incorrectClaims()
		}
	}

	return decoded.Claims, nil
}
