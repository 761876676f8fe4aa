package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedResponse is returned when a response body is not valid JSON.
var ErrMalformedResponse = errors.New("graph: malformed response body")

// Error is a fault reported by the API through an `error` object in the body.
// It is returned whenever that key is present, whatever the HTTP status.
type Error struct {
	StatusCode     int    `json:"-"`
	Message        string `json:"message"`
	Type           string `json:"type"`
	Code           int    `json:"code"`
	ErrorSubcode   int    `json:"error_subcode,omitempty"`
	FBTraceID      string `json:"fbtrace_id,omitempty"`
	ErrorUserTitle string `json:"error_user_title,omitempty"`
	ErrorUserMsg   string `json:"error_user_msg,omitempty"`
	IsTransient    bool   `json:"is_transient,omitempty"`

	// Raw is the nested error object exactly as received.
	Raw json.RawMessage `json:"-"`
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("graph: %s (#%d)", e.Type, e.Code)
	if e.Type == "" {
		msg = fmt.Sprintf("graph: api error (#%d)", e.Code)
	}
	if e.ErrorSubcode != 0 {
		msg += fmt.Sprintf(" subcode %d", e.ErrorSubcode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// StatusError is a non-2xx response whose body carried no `error` object.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	body := bytes.TrimSpace(e.Body)
	if len(body) > 256 {
		body = body[:256]
	}
	if len(body) == 0 {
		return fmt.Sprintf("graph: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("graph: unexpected status %d: %s", e.StatusCode, body)
}

// Classify inspects a decoded body and returns an *Error when the top-level
// value is an object containing `error`. Anything else, including bare
// strings, booleans, arrays and invalid JSON, is not a fault here.
func Classify(body []byte) error {
	if e := classify(body); e != nil {
		return e
	}
	return nil
}

func classify(body []byte) *Error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return nil
	}
	raw, ok := top["error"]
	if !ok {
		return nil
	}

	fault := &Error{Raw: raw}
	var asString string
	switch {
	case json.Unmarshal(raw, &asString) == nil:
		fault.Message = asString
	case json.Unmarshal(raw, fault) == nil:
		fault.Raw = raw
	default:
		fault.Message = string(raw)
	}
	return fault
}

// AsError extracts an API fault from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsOAuthError reports whether err is an OAuthException fault, the type the
// API uses for invalid, expired or insufficient tokens.
func IsOAuthError(err error) bool {
	e, ok := AsError(err)
	return ok && e.Type == "OAuthException"
}
