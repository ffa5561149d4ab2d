package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "finhub/internal/errors"
)

// AdminAuthMiddleware admits requests whose bearer token carries the admin
// role. A missing or invalid token is a 401, a valid non-admin token a 403.
func AdminAuthMiddleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, appErr := tokens.bearerClaims(c)
		if appErr != nil {
			abortWithError(c, appErr)
			return
		}
		if claims.Role != RoleAdmin {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrForbidden, "Admin access required"))
			return
		}
		c.Set(ContextAdminUsername, claims.Username)
		c.Next()
	}
}
