package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/somonity/accounts/internal/constants"
	"github.com/somonity/accounts/internal/service"
	ctxutil "github.com/somonity/accounts/pkg/context"
	"github.com/somonity/accounts/pkg/logger"
	"go.uber.org/zap"
)

type JWTMiddleware struct {
	jwtService *service.JWTService
}

func NewJWTMiddleware(jwtService *service.JWTService) *JWTMiddleware {
	return &JWTMiddleware{
		jwtService: jwtService,
	}
}

// RequireAuth validates the bearer token and sets the user id in context
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.GetLogger().Warn("Missing Authorization header",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				constants.BuildErrorResponse("Unauthorized", nil))
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			logger.GetLogger().Warn("Invalid Authorization header format",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				constants.BuildErrorResponse("Unauthorized", nil))
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenParts[1])
		if err != nil {
			logger.GetLogger().Warn("Invalid or expired token",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				constants.BuildErrorResponse("Unauthorized", nil))
			return
		}

		userID, err := claims.SubjectUserID()
		if err != nil {
			logger.GetLogger().Warn("Invalid subject claim",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				constants.BuildErrorResponse("Unauthorized", nil))
			return
		}

		c.Set("user_id", userID)
		c.Set("username", claims.Name)
		c.Set("email", claims.Email)
		c.Request = c.Request.WithContext(ctxutil.WithUserID(c.Request.Context(), userID))

		c.Next()
	}
}
