package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodySizeLimit caps request bodies at maxBytes. Declared oversize bodies are
// refused with 413 up front; chunked bodies are cut off by http.MaxBytesReader
// and surface as a bind error in the handler.
func BodySizeLimit(maxBytes int64) gin.HandlerFunc {
	tooLarge := gin.H{"error": fmt.Sprintf("Request body exceeds %d bytes", maxBytes)}

	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, tooLarge)
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
