package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/somonity/accounts/internal/constants"
	"github.com/somonity/accounts/pkg/logger"
	"go.uber.org/zap"
)

// LoggingMiddleware logs every request with its status and duration
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		logger.InfoWithContext(ctx, "Request started").
			String("method", c.Request.Method).
			String("path", c.Request.URL.Path).
			Log()

		c.Next()

		builder := logger.InfoWithContext(ctx, "Request completed")
		if c.Writer.Status() >= http.StatusInternalServerError {
			builder = logger.ErrorWithContext(ctx, "Request completed")
		}

		builder.
			String("method", c.Request.Method).
			String("path", c.Request.URL.Path).
			Int("status_code", c.Writer.Status()).
			Int("response_size", c.Writer.Size()).
			Log()
	}
}

// RecoveryMiddleware converts panics into a generic internal error response
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.GetLogger().Error("Panic recovered",
					zap.Any("panic", rec),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					constants.BuildErrorResponse("Internal server error", nil))
			}
		}()

		c.Next()
	}
}
