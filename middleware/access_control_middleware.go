package middleware

import (
	"net/http"

	"taskdesk/taskdesk/utils/token"

	"github.com/gin-gonic/gin"
)

// Policy decides whether identity may call an endpoint with the given HTTP
// method. identity is nil for anonymous requests.
type Policy func(identity *Identity, method string) bool

// AllowAny admits everyone.
func AllowAny(*Identity, string) bool { return true }

// IsAuthenticated admits any resolved identity.
func IsAuthenticated(identity *Identity, _ string) bool {
	return identity != nil
}

// AllowAnonymousCreate lets anyone POST (signup) and requires an identity
// for every other method.
func AllowAnonymousCreate(identity *Identity, method string) bool {
	return method == http.MethodPost || identity != nil
}

// IsStaff admits staff and superusers.
func IsStaff(identity *Identity, _ string) bool {
	return identity != nil && (identity.IsStaff || identity.IsSuperuser)
}

// AccessControlMiddleware enforces policy. Anonymous callers that are
// refused get 401; authenticated callers that are refused get 403.
func AccessControlMiddleware(policy Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _ := GetIdentity(c)
		if policy(identity, c.Request.Method) {
			c.Next()
			return
		}

		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": token.ErrAuthHeaderMissing.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action"})
	}
}
