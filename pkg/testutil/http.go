// Package testutil holds helpers for exercising callable HTTP endpoints in
// tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passgate/pkg/platform/httputil"
)

// CallableRequest builds a POST whose body is {"data": data}.
func CallableRequest(t *testing.T, path string, data any) *http.Request {
	t.Helper()
	body, err := json.Marshal(map[string]any{"data": data})
	require.NoError(t, err, "failed to marshal request body")
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// RawCallableRequest is CallableRequest with a literal body, for malformed
// payloads.
func RawCallableRequest(t *testing.T, path, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DoRequest executes a request against a handler and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// DecodeResult unmarshals the result member of a successful response.
func DecodeResult[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Result T `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), "failed to unmarshal result envelope")
	return env.Result
}

// DecodeError unmarshals the error member of a failed response.
func DecodeError(t *testing.T, rr *httptest.ResponseRecorder) httputil.ErrorBody {
	t.Helper()
	var env struct {
		Error httputil.ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), "failed to unmarshal error envelope")
	return env.Error
}

// AssertCallableError asserts the HTTP status and the envelope's status and
// message.
func AssertCallableError(t *testing.T, rr *httptest.ResponseRecorder, httpStatus int, status, message string) {
	t.Helper()
	assert.Equal(t, httpStatus, rr.Code, "unexpected status code")
	body := DecodeError(t, rr)
	assert.Equal(t, status, body.Status, "unexpected error status")
	if message != "" {
		assert.Equal(t, message, body.Message, "unexpected error message")
	}
}
