package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hexasamples/backend/internal/interfaces/http/dto"
)

// BodyLimit caps request bodies at maxBytes; zero or less disables the cap.
//
// A declared Content-Length over the cap is refused before the handler
// runs. Chunked bodies have no declared length, so the reader is capped
// too and binding fails with an error IsBodyTooLarge recognises.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, BodyTooLargeResponse(maxBytes))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// IsBodyTooLarge reports whether err came from reading past the BodyLimit cap
func IsBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

// BodyTooLargeResponse is the 413 body sent for an oversized request
func BodyTooLargeResponse(maxBytes int64) dto.Response {
	return dto.NewErrorResponse(dto.ErrCodeRequestTooLarge,
		fmt.Sprintf("Request body exceeds the %d byte limit", maxBytes))
}
