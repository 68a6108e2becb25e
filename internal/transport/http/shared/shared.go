// Package shared holds the JSON helpers every HTTP handler uses so error
// envelopes and decoding rules stay identical across domains.
package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "hireline/pkg/domain-errors"
)

// errorEnvelope is the uniform error body returned by every endpoint.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// WriteError translates a domain error into the uniform error envelope.
// Uncoded errors render as 500 internal without leaking their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	WriteJSON(w, dErrors.ToHTTPStatus(code), errorEnvelope{
		Error:   string(code),
		Message: dErrors.MessageOf(err),
	})
}

// DecodeJSON decodes a request body into dst, rejecting unknown fields and
// trailing garbage so malformed clients fail loudly.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
