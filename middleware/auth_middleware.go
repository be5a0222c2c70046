package middleware

import (
	"errors"
	"net/http"

	"taskdesk/taskdesk/database"
	"taskdesk/taskdesk/logger"
	"taskdesk/taskdesk/services"
	"taskdesk/taskdesk/utils/token"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// Identity is the authenticated requester attached to the gin context.
type Identity struct {
	UserID      uint
	Username    string
	IsStaff     bool
	IsSuperuser bool
}

// AuthMiddleware resolves a bearer token into an Identity. Requests without
// an Authorization header pass through anonymously; Authorize decides
// whether the endpoint accepts them.
func AuthMiddleware(db *database.Database, authService services.AuthServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := token.ExtractToken(c)
		if errors.Is(err, token.ErrAuthHeaderMissing) {
			c.Next()
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		user, err := authService.Authenticate(db, tokenString)
		switch {
		case err == nil:
		case errors.Is(err, services.ErrInactiveUser):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User inactive or deleted"})
			return
		case errors.Is(err, services.ErrInvalidToken):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": token.ErrInvalidToken.Error()})
			return
		default:
			logger.Error("Failed to load authenticated user", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.Set(identityKey, &Identity{
			UserID:      user.ID,
			Username:    user.Username,
			IsStaff:     user.IsStaff,
			IsSuperuser: user.IsSuperuser,
		})
		c.Next()
	}
}

// GetIdentity returns the identity set by AuthMiddleware, if any.
func GetIdentity(c *gin.Context) (*Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*Identity)
	return identity, ok && identity != nil
}

// SetIdentity attaches an identity to the context.
func SetIdentity(c *gin.Context, identity *Identity) {
	c.Set(identityKey, identity)
}
