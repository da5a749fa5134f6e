package contextkeys

// contextKey is an unexported type for context keys to avoid collisions.
type contextKey string

const (
	// RequestIDKey holds the request ID assigned by the request id middleware.
	RequestIDKey contextKey = "request_id"

	// UserIDKey holds the subject of the authenticated bearer token.
	UserIDKey contextKey = "user_id"

	// ClientIPKey holds the remote address of the caller.
	ClientIPKey contextKey = "client_ip"

	// AuthSessionKey holds the *domain.AuthenticatedSession of the current request.
	AuthSessionKey contextKey = "auth_session"
)

// String makes contextKey satisfy fmt.Stringer for logging the key itself.
func (c contextKey) String() string {
	return string(c)
}
