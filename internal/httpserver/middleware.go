package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestId"
)

// requestID reuses an incoming X-Request-ID or generates one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// recovery turns panics into the JSON 500 envelope and logs the stack.
func recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		logger.Error("http: panic recovered",
			zap.Any("panic", rec),
			zap.String("requestId", requestIDFrom(c)),
			zap.String("path", c.FullPath()),
			zap.Stack("stack"),
		)
		fail(c, http.StatusInternalServerError, internalErrorMessage, gin.H{"requestId": requestIDFrom(c)})
		c.Abort()
	})
}
