package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error body. Retryable tells clients a re-read and
// retry can succeed, as for conflicting status transitions.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	Details   any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
