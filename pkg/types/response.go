package types

// SuccessEnvelope wraps every successful API payload under a data key so the
// storefront client can decode responses uniformly.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error shape. Details carries per-field validation
// messages when the error code allows them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError for failed responses.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
