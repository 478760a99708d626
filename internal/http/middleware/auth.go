package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/quizgen-backend/internal/platform/ctxutil"
	"github.com/yungbote/quizgen-backend/internal/platform/logger"
)

// TokenParser resolves a session token to the session it was issued for.
type TokenParser interface {
	ParseToken(tokenString string) (uuid.UUID, error)
}

type SessionAuthMiddleware struct {
	log    *logger.Logger
	tokens TokenParser
}

func NewSessionAuthMiddleware(log *logger.Logger, tokens TokenParser) *SessionAuthMiddleware {
	middlewareLogger := log.With("middleware", "SessionAuthMiddleware")
	return &SessionAuthMiddleware{log: middlewareLogger, tokens: tokens}
}

func (am *SessionAuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "unauthorized"},
			})
			return
		}
		sessionID, err := am.tokens.ParseToken(tokenString)
		if err != nil || sessionID == uuid.Nil {
			am.log.Debug("Rejected session token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "unauthorized"},
			})
			return
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			TokenString: tokenString,
			SessionID:   sessionID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractTokenFromAll(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
