package auth_test

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/openbrewed/barback/pkg/auth"
)

var _ = Describe("Middleware", func() {
	var (
		server *ghttp.Server
		router *gin.Engine
		rec    *httptest.ResponseRecorder
		key    jwk.Key
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)

		server = ghttp.NewServer()
		key = newSigningKey("web")
		server.RouteToHandler("GET", "/",
			ghttp.RespondWithJSONEncoded(http.StatusOK, keySetOf(publicOf(key))))

		authorizer := auth.NewAuthorizer(auth.Config{JwksUrl: server.URL()})

		router = gin.New()
		router.GET("/gated", auth.Middleware(authorizer, "get:drinks-detail"), func(c *gin.Context) {
			claims, ok := auth.ClaimsFromContext(c)
			Expect(ok).To(BeTrue())
			c.JSON(http.StatusOK, gin.H{"subject": claims.Subject()})
		})
		router.GET("/authn", auth.Middleware(authorizer, ""), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		rec = httptest.NewRecorder()
	})

	AfterEach(func() {
		server.Close()
	})

	request := func(header string) {
		req, _ := http.NewRequest("GET", "/gated", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(rec, req)
	}

	It("rejects a missing header with the failure envelope", func() {
		request("")

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(rec.Body).To(MatchJSON(`{
			"success": false,
			"error": 401,
			"message": "Authorization header is expected."
		}`))
	})

	It("rejects an expired token", func() {
		header := "Bearer " + mintToken(key, jwa.RS256, map[string]interface{}{
			jwt.ExpirationKey: time.Now().Add(-time.Hour),
			"permissions":     []string{"get:drinks-detail"},
		})
		request(header)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(rec.Body).To(MatchJSON(`{
			"success": false,
			"error": 401,
			"message": "Token expired."
		}`))
	})

	It("rejects a token without the permissions claim", func() {
		header := "Bearer " + mintToken(key, jwa.RS256, map[string]interface{}{
			jwt.ExpirationKey: time.Now().Add(time.Hour),
		})
		request(header)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body).To(MatchJSON(`{
			"success": false,
			"error": 400,
			"message": "Permissions not included in JWT."
		}`))
	})

	It("rejects a token that lacks the route permission", func() {
		header := "Bearer " + mintToken(key, jwa.RS256, map[string]interface{}{
			jwt.ExpirationKey: time.Now().Add(time.Hour),
			"permissions":     []string{"post:drinks"},
		})
		request(header)

		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(rec.Body).To(MatchJSON(`{
			"success": false,
			"error": 403,
			"message": "Permission not found."
		}`))
	})

	It("passes a granted token through and exposes its claims", func() {
		header := "Bearer " + mintToken(key, jwa.RS256, map[string]interface{}{
			jwt.SubjectKey:    "bartender",
			jwt.ExpirationKey: time.Now().Add(time.Hour),
			"permissions":     []string{"get:drinks-detail"},
		})
		request(header)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body).To(MatchJSON(`{"subject": "bartender"}`))
	})

	It("authenticates without a permission check on unscoped routes", func() {
		header := "Bearer " + mintToken(key, jwa.RS256, map[string]interface{}{
			jwt.ExpirationKey: time.Now().Add(time.Hour),
		})
		req, _ := http.NewRequest("GET", "/authn", nil)
		req.Header.Set("Authorization", header)
		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusNoContent))
	})
})
