package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/gear-rental/pkg/common"
	"github.com/richxcame/gear-rental/pkg/logger"
	"go.uber.org/zap"
)

// RequestTimeout puts a deadline on the request context. Handlers run on the
// request goroutine and are expected to honour ctx; if one returns after the
// deadline without writing, the middleware answers 504.
func RequestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			logger.WithContext(ctx).Warn("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Duration("timeout", timeout),
			)
			common.ErrorResponse(c, http.StatusGatewayTimeout, "request timeout")
			c.Abort()
		}
	}
}
