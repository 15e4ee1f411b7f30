package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ctxutil "github.com/somonity/accounts/pkg/context"
)

// RequestContext seeds the request context with tracking values used by the
// context logger: request id, client address, user agent and start time.
func RequestContext(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		ctx = context.WithValue(ctx, ctxutil.RequestIDKey, uuid.NewString())
		ctx = context.WithValue(ctx, ctxutil.ClientIPKey, c.ClientIP())
		ctx = context.WithValue(ctx, ctxutil.UserAgentKey, c.Request.UserAgent())
		ctx = ctxutil.NewContext(ctx)

		ctx, cancel := ctxutil.WithTimeout(ctx, timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
