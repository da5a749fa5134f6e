package domain

import (
	"context"
	"time"
)

// LoginOutcome classifies a finished login attempt for auditing and metrics.
type LoginOutcome string

const (
	LoginOutcomeSuccess  LoginOutcome = "success"
	LoginOutcomeRejected LoginOutcome = "rejected"
	LoginOutcomeError    LoginOutcome = "error"
)

// LoginEvent is published after every login attempt.
type LoginEvent struct {
	UserID    string          `json:"user_id"`
	Outcome   LoginOutcome    `json:"outcome"`
	Reason    RejectionReason `json:"reason,omitempty"`
	ClientIP  string          `json:"client_ip,omitempty"`
	Persisted bool            `json:"session_persisted"`
	At        time.Time       `json:"at"`
}

// AuditPublisher ships login events to downstream consumers. Publishing is best-effort.
type AuditPublisher interface {
	PublishLoginEvent(ctx context.Context, event LoginEvent) error
}
