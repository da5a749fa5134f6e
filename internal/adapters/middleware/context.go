package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"gitlab.com/timkado/api/staff-auth-service/pkg/contextkeys"
)

const (
	XRequestIDHeader    = "X-Request-ID"
	XForwardedForHeader = "X-Forwarded-For"
)

// RequestIDMiddleware injects a request ID and the client IP into the context.
// The request ID comes from the X-Request-ID header or is a new UUID.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(XRequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), contextkeys.RequestIDKey, requestID)
		ctx = context.WithValue(ctx, contextkeys.ClientIPKey, clientIP(r))
		w.Header().Set(XRequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromContext returns the address stored by RequestIDMiddleware.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(contextkeys.ClientIPKey).(string)
	return ip
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get(XForwardedForHeader); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
