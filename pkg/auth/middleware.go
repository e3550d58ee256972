package auth

import (
	"context"
	"fmt"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/lestrrat-go/iter/mapiter"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/openbrewed/barback/pkg/utils"
)

// ClaimsKey is the gin context key under which Middleware stores the
// verified claim set.
const ClaimsKey = "claims"

// Middleware guards a route with the authorization pipeline. An empty
// permission authenticates the request without checking scopes.
func Middleware(authorizer *Authorizer, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, fail := authorizer.Authorize(c.Request.Context(), c.GetHeader("Authorization"), permission)
		if fail != nil {
			c.AbortWithStatusJSON(fail.StatusCode, gin.H{
				"success": false,
				"error":   fail.StatusCode,
				"message": fail.Description,
			})
			return
		}
		logClaimNames(c.Request.Context(), claims)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// ClaimsFromContext returns the claim set stored by Middleware.
func ClaimsFromContext(c *gin.Context) (jwt.Token, bool) {
	value, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(jwt.Token)
	return claims, ok
}

type claimNameVisitor struct {
	names []string
}

func (v *claimNameVisitor) Visit(key, _ interface{}) error {
	if name, ok := key.(string); ok {
		v.names = append(v.names, name)
	}
	return nil
}

// logClaimNames records which claims arrived on a verified token.
// Claim values stay out of the log.
func logClaimNames(ctx context.Context, claims jwt.Token) {
	visitor := &claimNameVisitor{}
	if err := mapiter.Walk(ctx, claims, visitor); err != nil {
		return
	}
	sort.Strings(visitor.names)
	utils.GetLogger().Debug(fmt.Sprintf("[AUTH]: verified token carrying claims %v", visitor.names))
}
