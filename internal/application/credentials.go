package application

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
	"gitlab.com/timkado/api/staff-auth-service/pkg/crypto"
)

// BcryptVerifier implements domain.CredentialVerifier with bcrypt.
// A weighted semaphore caps how many hashes run at once so slow hashing
// cannot occupy every CPU while I/O-bound requests wait.
type BcryptVerifier struct {
	cost      int
	slots     *semaphore.Weighted
	dummyHash string
}

// NewBcryptVerifier builds a verifier. cost 0 means bcrypt.DefaultCost;
// concurrency <= 0 means GOMAXPROCS.
func NewBcryptVerifier(cost, concurrency int) (*BcryptVerifier, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	dummy, err := crypto.HashPassword("staff-auth/unknown-account", cost)
	if err != nil {
		return nil, fmt.Errorf("init credential verifier: %w", err)
	}
	return &BcryptVerifier{
		cost:      cost,
		slots:     semaphore.NewWeighted(int64(concurrency)),
		dummyHash: dummy,
	}, nil
}

var _ domain.CredentialVerifier = (*BcryptVerifier)(nil)

func (v *BcryptVerifier) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := v.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("wait for hashing slot: %w", err)
	}
	defer v.slots.Release(1)
	return crypto.HashPassword(plaintext, v.cost)
}

func (v *BcryptVerifier) Verify(ctx context.Context, hash, plaintext string) error {
	if err := v.slots.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("wait for hashing slot: %w", err)
	}
	defer v.slots.Release(1)

	err := crypto.ComparePassword(hash, plaintext)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, crypto.ErrPasswordMismatch):
		return domain.ErrCredentialMismatch
	default:
		// A stored hash we cannot parse can never match.
		return fmt.Errorf("%w: %w", domain.ErrCredentialMismatch, err)
	}
}

func (v *BcryptVerifier) VerifyUnknown(ctx context.Context, plaintext string) {
	_ = v.Verify(ctx, v.dummyHash, plaintext)
}
