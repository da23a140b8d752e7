package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/gear-rental/pkg/logger"
)

const (
	// CorrelationIDHeader carries the request's correlation id in both directions
	CorrelationIDHeader = "X-Request-ID"
	// CorrelationIDKey is the gin context key for the correlation id
	CorrelationIDKey = "correlation_id"

	legacyCorrelationHeader = "X-Correlation-ID"
)

// CorrelationID accepts a caller-supplied UUID or mints one, then threads it
// through the request context so every log line and async task carries it.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := incomingCorrelationID(c)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(CorrelationIDKey, id)
		c.Request = c.Request.WithContext(logger.ContextWithCorrelationID(c.Request.Context(), id))
		c.Writer.Header().Set(CorrelationIDHeader, id)

		c.Next()
	}
}

func incomingCorrelationID(c *gin.Context) string {
	for _, header := range []string{CorrelationIDHeader, legacyCorrelationHeader} {
		raw := strings.TrimSpace(c.GetHeader(header))
		if raw == "" {
			continue
		}
		if _, err := uuid.Parse(raw); err == nil {
			return raw
		}
	}
	return ""
}

// GetCorrelationID returns the id set by CorrelationID
func GetCorrelationID(c *gin.Context) string {
	if id := c.GetString(CorrelationIDKey); id != "" {
		return id
	}
	return logger.CorrelationIDFromContext(c.Request.Context())
}
