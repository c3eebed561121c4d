package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hexasamples/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// APIClient drives an http.Handler the way a client of the API would.
type APIClient struct {
	t       *testing.T
	handler http.Handler
	headers map[string]string
}

// NewAPIClient wraps handler for the duration of t.
func NewAPIClient(t *testing.T, handler http.Handler) *APIClient {
	return &APIClient{t: t, handler: handler, headers: map[string]string{}}
}

// WithHeader sets a header on every following request.
func (c *APIClient) WithHeader(key, value string) *APIClient {
	c.headers[key] = value
	return c
}

// APIResponse is a recorded response with its decoded envelope.
type APIResponse struct {
	Code int
	Body dto.Response
	Raw  []byte
}

// Do sends a request with an optional JSON body.
func (c *APIClient) Do(method, path string, body any) *APIResponse {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	resp := &APIResponse{Code: w.Code, Raw: w.Body.Bytes()}
	if len(resp.Raw) > 0 {
		require.NoError(c.t, json.Unmarshal(resp.Raw, &resp.Body), "response is not a JSON envelope: %s", resp.Raw)
	}
	return resp
}

// Data decodes the data field into T.
func Data[T any](t *testing.T, resp *APIResponse) T {
	t.Helper()
	var out T
	data, err := json.Marshal(resp.Body.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

// AssertSuccess checks for a successful envelope with the given status.
func AssertSuccess(t *testing.T, resp *APIResponse, status int) {
	t.Helper()
	assert.Equal(t, status, resp.Code, "body: %s", resp.Raw)
	assert.True(t, resp.Body.Success, "body: %s", resp.Raw)
	assert.Nil(t, resp.Body.Error)
}

// AssertError checks for a failed envelope with the given status and code.
func AssertError(t *testing.T, resp *APIResponse, status int, code string) {
	t.Helper()
	assert.Equal(t, status, resp.Code, "body: %s", resp.Raw)
	assert.False(t, resp.Body.Success)
	require.NotNil(t, resp.Body.Error, "body: %s", resp.Raw)
	assert.Equal(t, code, resp.Body.Error.Code)
}
