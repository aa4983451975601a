package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/activity-points-api/internal/models"
	appErrors "github.com/noah-isme/activity-points-api/pkg/errors"
	"github.com/noah-isme/activity-points-api/pkg/response"
)

// RequireRoles admits only the listed roles. It is a coarse route gate;
// department and ownership rules are decided by the services.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Staff is every role that reviews or administers certificates.
var Staff = []models.UserRole{models.RoleFaculty, models.RoleHOD, models.RoleAdmin, models.RoleSuperAdmin}

// Admins are the roles allowed to run institution-wide operations.
var Admins = []models.UserRole{models.RoleAdmin, models.RoleSuperAdmin}
