package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hexasamples/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
)

func bodyLimitEngine(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(BodyLimit(limit))
	engine.Any("/sales-orders", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			if IsBodyTooLarge(err) {
				c.JSON(http.StatusRequestEntityTooLarge, BodyTooLargeResponse(limit))
				return
			}
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusCreated)
	})
	return engine
}

func TestBodyLimit(t *testing.T) {
	order := `{"store_id":"3f1c","customer_id":"9a2b"}`

	tests := []struct {
		name         string
		limit        int64
		method       string
		body         string
		chunked      bool
		wantStatus   int
		wantTooLarge bool
	}{
		{name: "within limit", limit: 1024, method: http.MethodPost, body: order, wantStatus: http.StatusCreated},
		{name: "declared length over limit", limit: 16, method: http.MethodPost, body: order, wantStatus: http.StatusRequestEntityTooLarge, wantTooLarge: true},
		{name: "chunked body over limit", limit: 16, method: http.MethodPost, body: order, chunked: true, wantStatus: http.StatusRequestEntityTooLarge, wantTooLarge: true},
		{name: "no body", limit: 1, method: http.MethodGet, wantStatus: http.StatusCreated},
		{name: "limit disabled", limit: 0, method: http.MethodPost, body: strings.Repeat("x", 4096), wantStatus: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, "/sales-orders", body)
			if tt.chunked {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()
			bodyLimitEngine(tt.limit).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantTooLarge {
				assert.Contains(t, w.Body.String(), dto.ErrCodeRequestTooLarge)
				assert.Contains(t, w.Body.String(), "16 byte limit")
			}
		})
	}
}

func TestIsBodyTooLarge(t *testing.T) {
	assert.True(t, IsBodyTooLarge(&http.MaxBytesError{Limit: 10}))
	assert.False(t, IsBodyTooLarge(io.ErrUnexpectedEOF))
}
