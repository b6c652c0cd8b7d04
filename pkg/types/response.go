// Package types holds the wire envelopes every handler responds with.
package types

// SuccessEnvelope wraps response payloads under a data key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the coded error body inside an ErrorEnvelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
