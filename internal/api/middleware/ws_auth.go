package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidToken  = errors.New("invalid token")
	errInvalidClaims = errors.New("invalid token claims")
	errInvalidUserID = errors.New("invalid user id in token")
)

// WSAuth authenticates websocket upgrade requests. Browsers cannot set an
// Authorization header on a websocket handshake, so the token arrives as a
// query parameter instead.
func (am *AuthMiddleware) WSAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is required"})
			return
		}
		tokenString = strings.Replace(tokenString, "Bearer ", "", 1)

		userID, err := am.resolveUserID(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
