package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-zone-analytics/internal/models"
	appErrors "github.com/noah-isme/sma-zone-analytics/pkg/errors"
	"github.com/noah-isme/sma-zone-analytics/pkg/response"
)

// RequireRoles only lets the listed roles through.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return requireRoles("", roles)
}

// RequireRolesOrSelf also admits a student whose user id equals the named
// path parameter, so students can read their own analytics.
func RequireRolesOrSelf(param string, roles ...models.UserRole) gin.HandlerFunc {
	return requireRoles(param, roles)
}

func requireRoles(selfParam string, roles []models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}
		if selfParam != "" && claims.Role == models.RoleStudent {
			if target := c.Param(selfParam); target != "" && target == claims.UserID {
				c.Next()
				return
			}
		}
		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
