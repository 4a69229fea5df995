package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/riyajha981219/squareboat-job-portal/internal/database"
)

// RequireRole gates a route on the acting user's role. The action phrase
// feeds the rejection message, e.g. "post jobs" becomes
// "Unauthorized: Only recruiters can post jobs."
func RequireRole(role database.Role, action string) gin.HandlerFunc {
	message := fmt.Sprintf("Unauthorized: Only %ss can %s.", role, action)
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abortUnauthenticated(c)
			return
		}
		if user.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": message,
			})
			return
		}
		c.Next()
	}
}
