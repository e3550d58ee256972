package auth_test

import (
	"context"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openbrewed/barback/pkg/auth"
)

func keySetOf(keys ...jwk.Key) jwk.Set {
	set := jwk.NewSet()
	for _, key := range keys {
		Expect(set.AddKey(key)).To(Succeed())
	}
	return set
}

var _ = Describe("Authorizer", func() {
	var (
		now     time.Time
		clock   jwt.Clock
		key     jwk.Key
		fetches int
		fetcher auth.KeyFetcher
	)

	newAuthorizer := func(cfg auth.Config) *auth.Authorizer {
		if cfg.Fetcher == nil {
			cfg.Fetcher = fetcher
		}
		if cfg.Clock == nil {
			cfg.Clock = clock
		}
		return auth.NewAuthorizer(cfg)
	}

	BeforeEach(func() {
		now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		clock = jwt.ClockFunc(func() time.Time { return now })
		key = newSigningKey("k1")
		fetches = 0
		fetcher = fetcherFunc(func(ctx context.Context, jwksUrl string) (jwk.Set, error) {
			fetches++
			return keySetOf(publicOf(key)), nil
		})
	})

	bearer := func(claims map[string]interface{}) string {
		return "Bearer " + mintToken(key, jwa.RS256, claims)
	}

	It("rejects malformed headers before touching the key endpoint", func() {
		authorizer := newAuthorizer(auth.Config{})

		for _, header := range []string{"", "Token abc", "Bearer ", "Bearer not-a-jwt"} {
			_, fail := authorizer.Authorize(context.Background(), header, "post:drinks")
			Expect(fail).NotTo(BeNil(), "header %q", header)
			Expect(fail.Code).To(Equal(auth.CodeInvalidHeader))
		}
		Expect(fetches).To(BeZero())
	})

	It("authorizes a verified token that grants the required permission", func() {
		header := bearer(map[string]interface{}{
			jwt.SubjectKey:    "bartender",
			jwt.ExpirationKey: now.Add(time.Hour),
			"permissions":     []string{"post:drinks", "patch:drinks"},
		})
		authorizer := newAuthorizer(auth.Config{})

		claims, fail := authorizer.Authorize(context.Background(), header, "post:drinks")
		Expect(fail).To(BeNil())
		Expect(claims.Subject()).To(Equal("bartender"))
		Expect(fetches).To(Equal(1))
	})

	It("reports the expiry before looking at permissions", func() {
		header := bearer(map[string]interface{}{
			jwt.ExpirationKey: now.Add(-time.Hour),
		})
		authorizer := newAuthorizer(auth.Config{})

		_, fail := authorizer.Authorize(context.Background(), header, "post:drinks")
		Expect(fail).NotTo(BeNil())
		Expect(fail.Code).To(Equal(auth.CodeTokenExpired))
	})

	It("refuses a verified token missing the required permission", func() {
		header := bearer(map[string]interface{}{
			jwt.ExpirationKey: now.Add(time.Hour),
			"permissions":     []string{"get:drinks-detail"},
		})
		authorizer := newAuthorizer(auth.Config{})

		_, fail := authorizer.Authorize(context.Background(), header, "delete:drinks")
		Expect(fail).NotTo(BeNil())
		Expect(fail.StatusCode).To(Equal(403))
		Expect(fail.Code).To(Equal(auth.CodeUnauthorized))
	})

	It("treats an empty required permission as authentication only", func() {
		header := bearer(map[string]interface{}{
			jwt.SubjectKey:    "bartender",
			jwt.ExpirationKey: now.Add(time.Hour),
		})
		authorizer := newAuthorizer(auth.Config{})

		claims, fail := authorizer.Authorize(context.Background(), header, "")
		Expect(fail).To(BeNil())
		Expect(claims.Subject()).To(Equal("bartender"))
	})

	It("enforces configured issuer and audience", func() {
		header := bearer(map[string]interface{}{
			jwt.IssuerKey:     "https://imposter.example/",
			jwt.ExpirationKey: now.Add(time.Hour),
			"permissions":     []string{"post:drinks"},
		})
		authorizer := newAuthorizer(auth.Config{Issuer: "https://issuer.example/"})

		_, fail := authorizer.Authorize(context.Background(), header, "post:drinks")
		Expect(fail).NotTo(BeNil())
		Expect(fail.StatusCode).To(Equal(401))
		Expect(fail.Code).To(Equal(auth.CodeInvalidClaims))
	})

	It("fails with an unknown key identifier after consulting the key set", func() {
		other := newSigningKey("k9")
		header := "Bearer " + mintToken(other, jwa.RS256, map[string]interface{}{
			jwt.ExpirationKey: now.Add(time.Hour),
		})
		authorizer := newAuthorizer(auth.Config{})

		_, fail := authorizer.Authorize(context.Background(), header, "")
		Expect(fail).NotTo(BeNil())
		Expect(fail.Code).To(Equal(auth.CodeInvalidHeader))
		Expect(fail.Description).To(Equal("Unable to find the appropriate key."))
		Expect(fetches).To(Equal(1))
	})

	Context("with a symmetric key published under the token's key id", func() {
		var (
			sym       jwk.Key
			symHeader string
		)

		BeforeEach(func() {
			sym = newSymmetricKey("k1")
			fetcher = fetcherFunc(func(ctx context.Context, jwksUrl string) (jwk.Set, error) {
				return keySetOf(sym), nil
			})
			symHeader = "Bearer " + mintToken(sym, jwa.HS256, map[string]interface{}{
				jwt.SubjectKey:    "bartender",
				jwt.ExpirationKey: now.Add(time.Hour),
				"permissions":     []string{"post:drinks"},
			})
		})

		It("verifies end to end when HS256 is allow-listed", func() {
			authorizer := newAuthorizer(auth.Config{AllowedAlgorithms: []string{"RS256", "HS256"}})

			claims, fail := authorizer.Authorize(context.Background(), symHeader, "post:drinks")
			Expect(fail).To(BeNil())
			Expect(claims.Subject()).To(Equal("bartender"))
		})

		It("rejects the algorithm under the default allow-list", func() {
			authorizer := newAuthorizer(auth.Config{})

			_, fail := authorizer.Authorize(context.Background(), symHeader, "post:drinks")
			Expect(fail).NotTo(BeNil())
			Expect(fail.Code).To(Equal(auth.CodeInvalidHeader))
		})
	})
})
