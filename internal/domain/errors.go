package domain

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Cache pool and session store failures.
var (
	ErrPoolUninitialized = errors.New("cache pool is not initialized")
	ErrPoolExhausted     = errors.New("cache pool exhausted: no connection available before timeout")
	ErrCacheUnavailable  = errors.New("cache unavailable")
	ErrCacheProtocol     = errors.New("cache protocol error")
	ErrInvalidTTL        = errors.New("invalid cache entry ttl")
)

// Credential, token and account failures.
var (
	ErrCredentialMismatch = errors.New("credential mismatch")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrSessionRevoked     = errors.New("session is no longer active")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountInvalid     = errors.New("account is invalid")
	ErrAccountLocked      = errors.New("account is locked")
	ErrAccountExists      = errors.New("account already exists")
)

// ErrSystem is the catch-all for unexpected lower-layer failures surfaced to callers.
var ErrSystem = errors.New("system error")

// PublicInvalidCredentialsMessage is the only message a rejected login ever shows to a client.
const PublicInvalidCredentialsMessage = "invalid user id or password"

// RejectionReason is the internal, logged reason for a rejected login.
type RejectionReason string

const (
	ReasonInvalidCredentials RejectionReason = "invalid_credentials"
	ReasonAccountInvalid     RejectionReason = "account_invalid"
	ReasonAccountLocked      RejectionReason = "account_locked"
)

// LoginRejectedError is returned by a login attempt that ended in the Rejected state.
// Error() never distinguishes between reasons; Reason and Cause are for logs and callers
// that need the precise outcome.
type LoginRejectedError struct {
	Reason RejectionReason
	Cause  error
}

func (e *LoginRejectedError) Error() string {
	return PublicInvalidCredentialsMessage
}

func (e *LoginRejectedError) Unwrap() error {
	return e.Cause
}

// ErrorCode represents a specific error condition.
type ErrorCode string

const (
	ErrCodeInvalidCredentials ErrorCode = "InvalidCredentials"  // HTTP 401
	ErrCodeUnauthorized       ErrorCode = "Unauthorized"        // HTTP 401, missing/expired/revoked bearer token
	ErrCodeBadRequest         ErrorCode = "BadRequest"          // HTTP 400
	ErrCodeNotFound           ErrorCode = "NotFound"            // HTTP 404
	ErrCodeConflict           ErrorCode = "Conflict"            // HTTP 409
	ErrCodeInternal           ErrorCode = "InternalServerError" // HTTP 500
)

// ErrorResponse is the standard error format returned to HTTP clients.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// NewErrorResponse creates a new ErrorResponse struct.
func NewErrorResponse(code ErrorCode, message string, details string) ErrorResponse {
	return ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// WriteJSON sends an ErrorResponse as JSON with the given HTTP status code.
func (er ErrorResponse) WriteJSON(w http.ResponseWriter, httpStatusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	json.NewEncoder(w).Encode(er) // Best effort, error from Encode is not typically handled here.
}
