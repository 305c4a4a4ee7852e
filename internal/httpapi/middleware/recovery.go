package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brainfish/brainfish-chat/internal/common"
)

// Recovery turns panics into 500 responses instead of dropped connections.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[recovery] panic: %v path=%s", r, c.Request.URL.Path)
				if !c.Writer.Written() {
					common.Fail(c, http.StatusInternalServerError, 50000, "internal error")
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
