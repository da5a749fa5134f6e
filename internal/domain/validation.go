package domain

import "strings"

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validatable is implemented by every request payload the HTTP layer accepts.
// An empty result means the payload is valid.
type Validatable interface {
	Validate() []FieldError
}

// JoinFieldErrors renders field errors as "field: message; field: message".
func JoinFieldErrors(errs []FieldError) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}
