package auth

import "github.com/lestrrat-go/jwx/v2/jwt"

// DefaultPermissionsClaim is the claim the issuer places granted
// permissions under when no override is configured.
const DefaultPermissionsClaim = "permissions"

// CheckPermission confirms that a verified claim set grants the
// required permission. Membership is an exact string match; there is no
// wildcard or hierarchy expansion. A token without the permissions
// claim at all points at a misconfigured issuer, not a short-scoped
// token, and is reported as such.
func CheckPermission(claims jwt.Token, claimName, required string) *AuthError {
	if claimName == "" {
		claimName = DefaultPermissionsClaim
	}
	raw, ok := claims.Get(claimName)
	if !ok {
		return permissionsMissing()
	}
	switch granted := raw.(type) {
	case []interface{}:
		for _, entry := range granted {
			if permission, ok := entry.(string); ok && permission == required {
				return nil
			}
		}
	case []string:
		for _, permission := range granted {
			if permission == required {
				return nil
			}
		}
	default:
		return permissionsMissing()
	}
	return permissionNotFound()
}
