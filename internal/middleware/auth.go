package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-chat-service/internal/client"
)

const (
	subjectKey = "uid"
	claimsKey  = "claims"
)

// Auth validates the bearer token with the same verifier the socket handshake uses.
func Auth(verifier client.IdentityVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			logger.Debug("Token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(subjectKey, claims.SubjectID)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// GetSubject returns the verified subject id set by Auth.
func GetSubject(c *gin.Context) (string, bool) {
	v, ok := c.Get(subjectKey)
	if !ok {
		return "", false
	}
	uid, ok := v.(string)
	return uid, ok && uid != ""
}

func GetClaims(c *gin.Context) (*client.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*client.Claims)
	return claims, ok
}
