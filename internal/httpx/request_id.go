package httpx

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID carries the request id in both directions
const HeaderRequestID = "X-Request-ID"

const ctxKeyRequestID = "request_id"

// RequestID keeps an incoming X-Request-ID or assigns a new uuid,
// and echoes it in the response header
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestIDFrom returns the id set by RequestID, or ""
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}
