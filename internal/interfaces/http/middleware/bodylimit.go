package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodyLimit rejects requests whose declared Content-Length exceeds
// maxBytes and caps streamed bodies with http.MaxBytesReader so
// chunked uploads cannot sidestep the limit.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			rejectOversizeBody(c)
			return
		}

		// ContentLength of -1 means the length is unknown; the
		// limited reader is the only guard in that case.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func rejectOversizeBody(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "REQUEST_TOO_LARGE",
			"message": "Request body exceeds maximum allowed size",
		},
	})
}
