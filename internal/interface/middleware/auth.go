package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evrs-lk/evrs-api/pkg/helpers"
	"github.com/evrs-lk/evrs-api/pkg/response"
)

const (
	CtxAccountIDKey = "accountID"
	CtxRoleKey      = "accountRole"
)

// RequireRole validates the access-token cookie and checks its role claim
// against the roles a route group accepts. On success it sets accountID and
// accountRole in the Gin context.
func RequireRole(jwt *helpers.JWTManager, roles ...string) gin.HandlerFunc {
	accepted := make(map[string]bool, len(roles))
	for _, r := range roles {
		accepted[r] = true
	}
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.Abort()
			return
		}
		if len(accepted) > 0 && !accepted[claims.Role] {
			response.Error[any](c, http.StatusForbidden, "insufficient role", nil)
			c.Abort()
			return
		}
		c.Set(CtxAccountIDKey, claims.AccountID)
		c.Set(CtxRoleKey, claims.Role)
		c.Next()
	}
}
