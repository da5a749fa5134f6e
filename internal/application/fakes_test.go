package application

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"gitlab.com/timkado/api/staff-auth-service/internal/adapters/config"
	"gitlab.com/timkado/api/staff-auth-service/internal/adapters/logger"
	redisadapter "gitlab.com/timkado/api/staff-auth-service/internal/adapters/redis"
	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
	"gitlab.com/timkado/api/staff-auth-service/pkg/crypto"
)

// fakeAccounts is an in-memory domain.AccountRepository.
type fakeAccounts struct {
	mu        sync.Mutex
	byID      map[string]*domain.Account
	lookupErr error
	nextID    int64

	Lookups      atomic.Int64
	LoginRecords atomic.Int64
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: make(map[string]*domain.Account)}
}

func (f *fakeAccounts) add(t testing.TB, userID, password string, locked, invalid int) {
	t.Helper()
	hash, err := crypto.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.byID[userID] = &domain.Account{AutoID: f.nextID, UserID: userID, UserName: userID, PasswordHash: hash, Locked: locked, IsValidFlag: invalid}
}

func (f *fakeAccounts) FindByUserID(_ context.Context, userID string) (*domain.Account, error) {
	f.Lookups.Add(1)
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.byID[userID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *acc
	return &cp, nil
}

func (f *fakeAccounts) Insert(_ context.Context, account *domain.Account) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[account.UserID]; ok {
		return nil, domain.ErrAccountExists
	}
	f.nextID++
	cp := *account
	cp.AutoID = f.nextID
	f.byID[account.UserID] = &cp
	return &cp, nil
}

func (f *fakeAccounts) RecordLogin(context.Context, string, string, time.Time) error {
	f.LoginRecords.Add(1)
	return nil
}

// failingSessions is a domain.SessionStore whose writes and reads fail with err.
type failingSessions struct {
	err       error
	SetCalls  atomic.Int64
	lastCtxOK atomic.Bool
}

func (f *failingSessions) Set(context.Context, string, string, domain.Expiry) error { return f.err }
func (f *failingSessions) SetLogin(ctx context.Context, _, _ string, _ domain.Expiry) error {
	f.SetCalls.Add(1)
	f.lastCtxOK.Store(ctx.Err() == nil)
	return f.err
}
func (f *failingSessions) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f *failingSessions) Delete(context.Context, string) (int64, error)     { return 0, f.err }
func (f *failingSessions) Exists(context.Context, string) (bool, error)      { return false, f.err }
func (f *failingSessions) RefreshTTL(context.Context, string, time.Duration) (bool, error) {
	return false, f.err
}
func (f *failingSessions) TTL(context.Context, string) (time.Duration, bool, error) {
	return 0, false, f.err
}

// recordingAudit keeps every published event.
type recordingAudit struct {
	mu     sync.Mutex
	events []domain.LoginEvent
}

func (r *recordingAudit) PublishLoginEvent(_ context.Context, e domain.LoginEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingAudit) last() domain.LoginEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			TokenExpirySeconds:    28800,
			SessionTTLSeconds:     28800,
			BcryptCost:            bcrypt.MinCost,
			StrictSessionCheck:    true,
			SessionWriteRetries:   1,
			SessionWriteTimeoutMs: 200,
		},
	}
}

type authFixture struct {
	svc      *AuthService
	accounts *fakeAccounts
	store    *redisadapter.SessionStoreAdapter
	mr       *miniredis.Miniredis
	audit    *recordingAudit
	issuer   *JWTIssuer
	cfg      *config.Config
}

func newAuthFixture(t testing.TB) *authFixture {
	t.Helper()
	log := logger.NewZapAdapterFromLogger(zaptest.NewLogger(t))
	cfg := testConfig()

	mr := miniredis.RunT(t)
	pool, err := redisadapter.NewPool(redisadapter.PoolOptions{
		URL:            "redis://" + mr.Addr() + "/0",
		MaxActive:      8,
		AcquireTimeout: time.Second,
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })

	store := redisadapter.NewSessionStoreAdapter(pool, log, time.Duration(cfg.Auth.SessionTTLSeconds)*time.Second)
	issuer, err := NewJWTIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenExpirySeconds)*time.Second)
	require.NoError(t, err)
	verifier, err := NewBcryptVerifier(bcrypt.MinCost, 4)
	require.NoError(t, err)

	accounts := newFakeAccounts()
	accounts.add(t, "E1001", "secret", 0, 0)
	accounts.add(t, "E1002", "secret", 1, 0)
	accounts.add(t, "E1003", "secret", 0, 1)

	audit := &recordingAudit{}
	svc := NewAuthService(log, config.StaticProvider{Config: cfg}, accounts, store, issuer, verifier, audit)
	return &authFixture{svc: svc, accounts: accounts, store: store, mr: mr, audit: audit, issuer: issuer, cfg: cfg}
}
