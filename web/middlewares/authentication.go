package middlewares

import (
	"net/http"
	"strings"

	"clockzy.com/clockzy/security"
	"clockzy.com/clockzy/web/common"
	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "clockzy.session"

	ClaimsKey = "claims"
	UserIDKey = "userId"
)

// Authentication checks for a valid Bearer token or session cookie
func Authentication(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// Try to get from cookie
			cookie, err := c.Cookie(SessionCookie)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("missing token"))
				return
			}

			tokenStr = cookie
		} else {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("malformed authorization header"))
				return
			}

			tokenStr = parts[1]
		}

		claims, err := security.ParseIdentityToken(tokenStr, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired token"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, claims.UserID)

		c.Next()
	}
}

// UserID is the user the request was authenticated as.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
