package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"gitlab.com/timkado/api/staff-auth-service/internal/adapters/config"
	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
)

const defaultAuditSubject = "staff.auth.login"

// publisher is the subset of *nats.Conn the audit publisher uses.
type publisher interface {
	Publish(subj string, data []byte) error
}

// AuditPublisher publishes login events as JSON on a core NATS subject.
type AuditPublisher struct {
	conn    publisher
	subject string
	logger  domain.Logger
}

// NewAuditPublisher connects to NATS and returns the publisher with its cleanup.
// An empty nats.url yields a no-op publisher.
func NewAuditPublisher(ctx context.Context, cfgProvider config.Provider, appLogger domain.Logger) (domain.AuditPublisher, func(), error) {
	cfg := cfgProvider.Get()
	natsCfg := cfg.NATS
	if natsCfg.URL == "" {
		appLogger.Info(ctx, "NATS url not configured; login audit events are disabled")
		return NoopAuditPublisher{}, func() {}, nil
	}

	nc, err := nats.Connect(natsCfg.URL,
		nats.Name(fmt.Sprintf("%s-audit", cfg.App.ServiceName)),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			subject := ""
			if s != nil {
				subject = s.Subject
			}
			appLogger.Error(ctx, "NATS error", "subscription", subject, "error", err.Error())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			appLogger.Info(ctx, "NATS connection closed")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			appLogger.Info(ctx, "NATS reconnected", "url", c.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			appLogger.Warn(ctx, "NATS disconnected", "error", err)
		}),
	)
	if err != nil {
		appLogger.Error(ctx, "Failed to connect to NATS", "url", natsCfg.URL, "error", err.Error())
		return nil, nil, fmt.Errorf("failed to connect to NATS at %s: %w", natsCfg.URL, err)
	}

	p := newAuditPublisher(nc, natsCfg.AuditSubject, appLogger)
	cleanup := func() {
		appLogger.Info(context.Background(), "Draining NATS connection...")
		if err := nc.Drain(); err != nil {
			nc.Close()
		}
	}
	return p, cleanup, nil
}

func newAuditPublisher(conn publisher, subject string, logger domain.Logger) *AuditPublisher {
	if subject == "" {
		subject = defaultAuditSubject
	}
	return &AuditPublisher{conn: conn, subject: subject, logger: logger}
}

// PublishLoginEvent publishes event. Core NATS publish is fire-and-forget; an
// error here means the event could not even be buffered.
func (p *AuditPublisher) PublishLoginEvent(ctx context.Context, event domain.LoginEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal login event: %w", err)
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("publish login event to %s: %w", p.subject, err)
	}
	p.logger.Debug(ctx, "Published login audit event", "subject", p.subject, "outcome", string(event.Outcome))
	return nil
}

// NoopAuditPublisher discards every event.
type NoopAuditPublisher struct{}

func (NoopAuditPublisher) PublishLoginEvent(context.Context, domain.LoginEvent) error { return nil }
