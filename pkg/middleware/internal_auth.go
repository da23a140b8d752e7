package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/gear-rental/pkg/common"
)

// InternalAPIKeyHeader is the header internal callers present their key in
const InternalAPIKeyHeader = "X-Internal-API-Key"

// InternalAPIKey rejects requests whose X-Internal-API-Key does not match
// expected. The fraud endpoints are only reachable by marketplace services.
// An empty expected key rejects everything.
func InternalAPIKey(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" {
			common.ErrorResponse(c, http.StatusInternalServerError, "internal API key not configured")
			c.Abort()
			return
		}

		provided := c.GetHeader(InternalAPIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) != 1 {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid internal API key")
			c.Abort()
			return
		}

		c.Next()
	}
}
