package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hollyabrams/express-jobly/internal/types"
	"github.com/stretchr/testify/require"
)

// HTTPHelper provides a fluent way to make HTTP requests against a Fiber app in tests.
type HTTPHelper struct {
	t   *testing.T
	app *fiber.App
}

// NewHTTPHelper creates a new test helper for a given Fiber app.
func NewHTTPHelper(t *testing.T, app *fiber.App) *HTTPHelper {
	require.NotNil(t, app, "Fiber app provided to HTTPHelper cannot be nil")
	return &HTTPHelper{
		t:   t,
		app: app,
	}
}

// Request represents a test request under construction.
type Request struct {
	helper    *HTTPHelper
	method    string
	path      string
	bodyBytes []byte
	headers   http.Header
}

// NewRequest begins building a new test request. Bodies that are not
// []byte or string are marshaled to JSON.
func (h *HTTPHelper) NewRequest(method, path string, body interface{}) *Request {
	var bodyBytes []byte
	if body != nil {
		switch b := body.(type) {
		case []byte:
			bodyBytes = b
		case string:
			bodyBytes = []byte(b)
		default:
			jsonBytes, err := json.Marshal(body)
			require.NoError(h.t, err, "Failed to marshal request body to JSON")
			bodyBytes = jsonBytes
		}
	}

	req := &Request{
		helper:    h,
		method:    method,
		path:      path,
		bodyBytes: bodyBytes,
		headers:   make(http.Header),
	}

	if body != nil {
		req.WithHeader(types.HeaderContentType, "application/json")
	}

	return req
}

// WithHeader adds a header to the request.
func (r *Request) WithHeader(key, value string) *Request {
	r.headers.Add(key, value)
	return r
}

// WithJWTAuth sets a bearer token.
func (r *Request) WithJWTAuth(token string) *Request {
	r.headers.Set(types.HeaderAuthorization, types.BearerPrefix+token)
	return r
}

// WithUser mints a token for user with privateKeyPEM and sets it as bearer.
func (r *Request) WithUser(privateKeyPEM string, user types.UserContext) *Request {
	token, err := GenerateTestJWT(privateKeyPEM, user)
	require.NoError(r.helper.t, err)
	return r.WithJWTAuth(token)
}

// Send executes the request and returns the response.
func (r *Request) Send() *http.Response {
	req := httptest.NewRequest(r.method, r.path, bytes.NewReader(r.bodyBytes))
	req.Header = r.headers

	resp, err := r.helper.app.Test(req, int(10*time.Second.Milliseconds()))
	require.NoError(r.helper.t, err, "app.Test should not return an error")
	require.NotNil(r.helper.t, resp, "app.Test response should not be nil")

	return resp
}

// SendJSON executes the request and decodes the JSON response body into a map.
func (r *Request) SendJSON() (*http.Response, map[string]interface{}) {
	resp := r.Send()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(r.helper.t, err)

	body := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(r.helper.t, json.Unmarshal(raw, &body), "response is not JSON: %s", string(raw))
	}
	return resp, body
}
