// Package apierror defines the error envelope every 4xx/5xx response uses.
// Each envelope carries a stable machine-readable code alongside the human
// detail, so clients branch on the code and internals (stack traces, SQL
// errors) never reach the wire.
package apierror

// Stable error codes. These are part of the API contract; add new ones,
// never rename existing ones.
const (
	CodeBadRequest        = "bad_request"
	CodeValidation        = "validation_failed"
	CodeNotFound          = "not_found"
	CodeDuplicate         = "duplicate"
	CodeInsufficientStock = "insufficient_stock"
	CodeRateLimited       = "rate_limited"
	CodeInternal          = "internal_error"
)

// APIError is the canonical envelope for all error responses.
type APIError struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func New(code, detail string) *APIError {
	return &APIError{Code: code, Detail: detail}
}

// ValidationError is the envelope for 422 responses: one entry per failing
// field when the failure came from struct tags, or just a detail when the
// service rejected a semantic rule.
type ValidationError struct {
	Code   string            `json:"code"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Code: CodeValidation, Detail: "validation failed", Fields: fields}
}
