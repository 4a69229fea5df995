package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/riyajha981219/squareboat-job-portal/internal/auth"
	"github.com/riyajha981219/squareboat-job-portal/internal/database"
)

const (
	currentUserKey  = "currentUser"
	currentTokenKey = "currentToken"
)

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": "Unauthenticated.",
	})
}

// AuthMiddleware resolves the bearer token to a user row and injects both
// the user and the presented token into the context.
func AuthMiddleware(tokens *auth.TokenService, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthenticated(c)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthenticated(c)
			return
		}

		rawToken := parts[1]
		userID, err := tokens.Resolve(c.Request.Context(), rawToken)
		if err != nil {
			abortUnauthenticated(c)
			return
		}

		var user database.User
		if err := db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
			abortUnauthenticated(c)
			return
		}

		c.Set(currentUserKey, &user)
		c.Set(currentTokenKey, rawToken)
		c.Next()
	}
}

// CurrentUser returns the authenticated user injected by AuthMiddleware.
func CurrentUser(c *gin.Context) (*database.User, bool) {
	if value, ok := c.Get(currentUserKey); ok {
		if user, ok := value.(*database.User); ok {
			return user, true
		}
	}
	return nil, false
}

// CurrentToken returns the bearer token the request authenticated with.
func CurrentToken(c *gin.Context) (string, bool) {
	if value, ok := c.Get(currentTokenKey); ok {
		if token, ok := value.(string); ok && token != "" {
			return token, true
		}
	}
	return "", false
}
