package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gitlab.com/timkado/api/staff-auth-service/internal/adapters/config"
	"gitlab.com/timkado/api/staff-auth-service/internal/adapters/metrics"
	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
	"gitlab.com/timkado/api/staff-auth-service/pkg/crypto"
)

const (
	bearerPrefix               = "Bearer "
	defaultSessionWriteTimeout = 2 * time.Second
	sessionWriteRetryBackoff   = 50 * time.Millisecond
)

// AuthService runs the login flow and checks bearer sessions.
type AuthService struct {
	logger   domain.Logger
	config   config.Provider
	accounts domain.AccountRepository
	sessions domain.SessionStore
	tokens   domain.TokenIssuer
	verifier domain.CredentialVerifier
	audit    domain.AuditPublisher
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	logger domain.Logger,
	cfg config.Provider,
	accounts domain.AccountRepository,
	sessions domain.SessionStore,
	tokens domain.TokenIssuer,
	verifier domain.CredentialVerifier,
	audit domain.AuditPublisher,
) *AuthService {
	if logger == nil {
		panic("logger is nil in NewAuthService")
	}
	if cfg == nil {
		panic("config provider is nil in NewAuthService")
	}
	if accounts == nil || sessions == nil || tokens == nil || verifier == nil || audit == nil {
		panic("a required dependency is nil in NewAuthService")
	}
	return &AuthService{
		logger:   logger,
		config:   cfg,
		accounts: accounts,
		sessions: sessions,
		tokens:   tokens,
		verifier: verifier,
		audit:    audit,
		now:      time.Now,
	}
}

// Login authenticates userID/password and issues a session token.
//
// Outcomes: a *domain.LoginResult on success; a *domain.LoginRejectedError for
// unknown accounts, invalid or locked accounts and wrong passwords (all with the
// same public message); an error wrapping domain.ErrSystem otherwise.
// A failed session write does not fail the login; it is reported through
// LoginResult.SessionPersisted.
func (s *AuthService) Login(ctx context.Context, userID, password, clientIP string) (*domain.LoginResult, error) {
	log := s.logger.With("login_user_id", userID)

	account, err := s.accounts.FindByUserID(ctx, userID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		s.verifier.VerifyUnknown(ctx, password)
		return nil, s.reject(ctx, log, userID, clientIP, domain.ReasonInvalidCredentials, err)
	}
	if err != nil {
		return nil, s.systemError(ctx, log, userID, clientIP, "account lookup failed", err)
	}

	if !account.IsValid() {
		return nil, s.reject(ctx, log, userID, clientIP, domain.ReasonAccountInvalid, domain.ErrAccountInvalid)
	}
	if account.IsLocked() {
		return nil, s.reject(ctx, log, userID, clientIP, domain.ReasonAccountLocked, domain.ErrAccountLocked)
	}

	if err := s.verifier.Verify(ctx, account.PasswordHash, password); err != nil {
		if errors.Is(err, domain.ErrCredentialMismatch) {
			return nil, s.reject(ctx, log, userID, clientIP, domain.ReasonInvalidCredentials, err)
		}
		return nil, s.systemError(ctx, log, userID, clientIP, "credential verification failed", err)
	}

	token, expiresAt, err := s.tokens.Issue(account.UserID)
	if err != nil {
		return nil, s.systemError(ctx, log, userID, clientIP, "token issuance failed", err)
	}

	persisted := s.persistSession(ctx, log, token, account.UserID)

	if err := s.accounts.RecordLogin(ctx, account.UserID, clientIP, s.now()); err != nil {
		log.Warn(ctx, "Failed to record last login", "error", err.Error())
	}

	metrics.RecordLoginAttempt(domain.LoginOutcomeSuccess)
	s.publish(ctx, log, domain.LoginEvent{
		UserID:    account.UserID,
		Outcome:   domain.LoginOutcomeSuccess,
		ClientIP:  clientIP,
		Persisted: persisted,
	})
	log.Info(ctx, "Login succeeded",
		"token_fp", crypto.Fingerprint(token),
		"expires_at", expiresAt,
		"session_persisted", persisted,
	)

	return &domain.LoginResult{
		Subject:          account.UserID,
		Token:            token,
		BearerToken:      bearerPrefix + token,
		ExpiresAt:        expiresAt,
		SessionPersisted: persisted,
	}, nil
}

// persistSession writes token -> subject with the login TTL. The write is detached
// from the caller's cancellation and retried on pool exhaustion or transport
// failure. It reports whether the entry was written.
func (s *AuthService) persistSession(ctx context.Context, log domain.Logger, token, subject string) bool {
	authCfg := s.config.Get().Auth

	expiry := domain.Expiry{}
	if authCfg.SessionTTLSeconds > 0 {
		expiry = domain.ExpireAfter(time.Duration(authCfg.SessionTTLSeconds) * time.Second)
	}
	timeout := time.Duration(authCfg.SessionWriteTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultSessionWriteTimeout
	}
	attempts := 1 + max(authCfg.SessionWriteRetries, 0)

	writeCtx := context.WithoutCancel(ctx)
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(writeCtx, timeout)
		err = s.sessions.SetLogin(attemptCtx, token, subject, expiry)
		cancel()
		if err == nil {
			return true
		}
		if !errors.Is(err, domain.ErrPoolExhausted) && !errors.Is(err, domain.ErrCacheUnavailable) {
			break
		}
		if attempt < attempts {
			time.Sleep(sessionWriteRetryBackoff * time.Duration(attempt))
		}
	}

	metrics.IncrementSessionWriteFailures()
	log.Error(ctx, "Session write failed; token issued without cache-backed revocation",
		"token_fp", crypto.Fingerprint(token),
		"attempts", attempts,
		"error", err.Error(),
	)
	return false
}

func (s *AuthService) reject(ctx context.Context, log domain.Logger, userID, clientIP string, reason domain.RejectionReason, cause error) error {
	log.Warn(ctx, "Login rejected", "reason", string(reason), "client_ip", clientIP)
	metrics.RecordLoginAttempt(domain.LoginOutcomeRejected)
	s.publish(ctx, log, domain.LoginEvent{
		UserID:   userID,
		Outcome:  domain.LoginOutcomeRejected,
		Reason:   reason,
		ClientIP: clientIP,
	})
	return &domain.LoginRejectedError{Reason: reason, Cause: cause}
}

func (s *AuthService) systemError(ctx context.Context, log domain.Logger, userID, clientIP, msg string, cause error) error {
	log.Error(ctx, "Login failed: "+msg, "error", cause.Error())
	metrics.RecordLoginAttempt(domain.LoginOutcomeError)
	s.publish(ctx, log, domain.LoginEvent{
		UserID:   userID,
		Outcome:  domain.LoginOutcomeError,
		ClientIP: clientIP,
	})
	return fmt.Errorf("%w: %s: %w", domain.ErrSystem, msg, cause)
}

func (s *AuthService) publish(ctx context.Context, log domain.Logger, event domain.LoginEvent) {
	event.At = s.now().UTC()
	if err := s.audit.PublishLoginEvent(ctx, event); err != nil {
		log.Warn(ctx, "Failed to publish login audit event", "error", err.Error())
	}
}

// Authenticate checks a bearer credential ("Bearer <token>" or a bare token).
// The token must pass signature and expiry checks. When strict session checking is
// on, a token whose session entry is gone is rejected with domain.ErrSessionRevoked.
// If the session store cannot answer, the token is accepted on its signature alone
// and the session is marked Degraded.
func (s *AuthService) Authenticate(ctx context.Context, credential string) (*domain.AuthenticatedSession, error) {
	token := stripBearer(credential)
	if token == "" {
		return nil, fmt.Errorf("%w: empty bearer token", domain.ErrTokenInvalid)
	}

	subject, expiresAt, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	session := &domain.AuthenticatedSession{Subject: subject, Token: token, ExpiresAt: expiresAt}

	storedSubject, found, err := s.sessions.Get(ctx, token)
	switch {
	case err != nil:
		s.logger.Warn(ctx, "Session store unavailable; accepting token on signature only",
			"token_fp", crypto.Fingerprint(token),
			"error", err.Error(),
		)
		session.Degraded = true
		return session, nil
	case !found:
		if s.config.Get().Auth.StrictSessionCheck {
			return nil, domain.ErrSessionRevoked
		}
		s.logger.Warn(ctx, "Session entry missing; accepting token on signature only", "token_fp", crypto.Fingerprint(token))
		session.Degraded = true
		return session, nil
	case storedSubject != subject:
		s.logger.Error(ctx, "Session entry subject does not match token subject", "token_fp", crypto.Fingerprint(token))
		return nil, fmt.Errorf("%w: session subject mismatch", domain.ErrTokenInvalid)
	}
	return session, nil
}

// Logout revokes the session behind credential. Revoking an already-gone
// session succeeds. The token signature must still be valid so arbitrary keys
// cannot be deleted through this path.
func (s *AuthService) Logout(ctx context.Context, credential string) error {
	token := stripBearer(credential)
	if _, _, err := s.tokens.Validate(token); err != nil && !errors.Is(err, domain.ErrTokenExpired) {
		return err
	}
	removed, err := s.sessions.Delete(ctx, token)
	if err != nil {
		return fmt.Errorf("%w: revoke session: %w", domain.ErrSystem, err)
	}
	s.logger.Info(ctx, "Session revoked", "token_fp", crypto.Fingerprint(token), "removed", removed)
	return nil
}

func stripBearer(credential string) string {
	credential = strings.TrimSpace(credential)
	if len(credential) >= len(bearerPrefix) && strings.EqualFold(credential[:len(bearerPrefix)], bearerPrefix) {
		credential = credential[len(bearerPrefix):]
	}
	return strings.TrimSpace(credential)
}
