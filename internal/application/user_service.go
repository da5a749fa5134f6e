package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
)

// NewAccount is the input for registering an account.
type NewAccount struct {
	UserID   string
	UserName string
	Password string
	Phone    string
	Email    string
	Remark   string
}

// UserService registers accounts.
type UserService struct {
	logger   domain.Logger
	accounts domain.AccountRepository
	verifier domain.CredentialVerifier
	now      func() time.Time
}

func NewUserService(logger domain.Logger, accounts domain.AccountRepository, verifier domain.CredentialVerifier) *UserService {
	if logger == nil || accounts == nil || verifier == nil {
		panic("a required dependency is nil in NewUserService")
	}
	return &UserService{logger: logger, accounts: accounts, verifier: verifier, now: time.Now}
}

// Register hashes the password and inserts a valid, unlocked account.
// A duplicate user id yields domain.ErrAccountExists.
func (s *UserService) Register(ctx context.Context, in NewAccount) (*domain.Account, error) {
	hash, err := s.verifier.Hash(ctx, in.Password)
	if err != nil {
		s.logger.Error(ctx, "Failed to hash password for new account", "new_user_id", in.UserID, "error", err.Error())
		return nil, fmt.Errorf("%w: hash password: %w", domain.ErrSystem, err)
	}

	regTime := s.now().UTC()
	created, err := s.accounts.Insert(ctx, &domain.Account{
		UserID:       in.UserID,
		UserName:     in.UserName,
		PasswordHash: hash,
		Phone:        in.Phone,
		Email:        in.Email,
		Remark:       in.Remark,
		RegTime:      &regTime,
		Locked:       0,
		IsValidFlag:  0,
	})
	if errors.Is(err, domain.ErrAccountExists) {
		s.logger.Warn(ctx, "Registration for existing user id", "new_user_id", in.UserID)
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: insert account: %w", domain.ErrSystem, err)
	}

	s.logger.Info(ctx, "Account registered", "new_user_id", created.UserID)
	return created, nil
}
