// Package httputil implements the callable-function wire envelope:
// requests arrive as {"data": {...}}, successes leave as {"result": {...}} and
// failures as {"error": {"status": "...", "message": "..."}}.
package httputil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	dErrors "passgate/pkg/domain-errors"
)

// MaxBodyBytes caps callable payloads.
const MaxBodyBytes = 64 << 10

// ErrorBody is the failure half of the envelope.
type ErrorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error ErrorBody `json:"error"`
}

type resultEnvelope struct {
	Result any `json:"result"`
}

type requestEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// StatusFor maps a domain code to the wire status string and HTTP status.
func StatusFor(code dErrors.Code) (string, int) {
	switch code {
	case dErrors.CodeInvalidArgument, dErrors.CodeInvariantViolation:
		return "INVALID_ARGUMENT", http.StatusBadRequest
	case dErrors.CodeFailedPrecondition:
		return "FAILED_PRECONDITION", http.StatusBadRequest
	case dErrors.CodeNotFound:
		return "NOT_FOUND", http.StatusNotFound
	case dErrors.CodePermissionDenied:
		return "PERMISSION_DENIED", http.StatusForbidden
	case dErrors.CodeResourceExhausted:
		return "RESOURCE_EXHAUSTED", http.StatusTooManyRequests
	default:
		return "INTERNAL", http.StatusInternalServerError
	}
}

// WriteError renders err as a callable error. Unclassified errors become
// INTERNAL with a generic message so no internal detail reaches the client.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	message := "internal"
	if dErrors.IsClassified(err) {
		message = dErrors.MessageOf(err, message)
	}
	status, httpStatus := StatusFor(code)
	writeJSON(w, httpStatus, errorEnvelope{Error: ErrorBody{Status: status, Message: message}})
}

// WriteResult renders a successful callable response.
func WriteResult(w http.ResponseWriter, result any) {
	writeJSON(w, http.StatusOK, resultEnvelope{Result: result})
}

// DecodeData reads a callable request and unmarshals its data member into dst.
// Any structural problem is reported as invalid-argument with message.
func DecodeData(r *http.Request, dst any, message string) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidArgument, message)
	}
	if len(body) > MaxBodyBytes {
		return dErrors.New(dErrors.CodeInvalidArgument, message)
	}

	var env requestEnvelope
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&env); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidArgument, message)
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return dErrors.New(dErrors.CodeInvalidArgument, message)
	}
	if env.Data[0] != '{' {
		return dErrors.New(dErrors.CodeInvalidArgument, message)
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidArgument, message)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
