package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/brainfish/brainfish-chat/internal/common"
)

const RequestIDKey = "request_id"

// RequestID attaches a ULID to every request, honoring a caller-supplied
// X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			if generated, err := common.NewULID(); err == nil {
				id = generated
			}
		}
		c.Set(RequestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}
