package domain

import (
	"context"
	"time"
)

// Account is a login account (sys_user). Status columns keep the legacy encoding:
// locked == 1 means locked, isValid == 0 means valid.
type Account struct {
	AutoID       int64
	UserID       string
	UserName     string
	PasswordHash string
	Phone        string
	Email        string
	Remark       string
	LastLogin    *time.Time
	LoginIP      string
	ImageURL     string
	RegTime      *time.Time
	Locked       int
	IsValidFlag  int
}

// IsLocked reports whether the account is locked.
func (a *Account) IsLocked() bool {
	return a.Locked == 1
}

// IsValid reports whether the account is valid.
func (a *Account) IsValid() bool {
	return a.IsValidFlag == 0
}

// AccountRepository is the relational store for accounts.
// FindByUserID returns ErrAccountNotFound when no row matches; any other error is a storage failure.
// Insert returns ErrAccountExists on a duplicate user id.
type AccountRepository interface {
	FindByUserID(ctx context.Context, userID string) (*Account, error)
	Insert(ctx context.Context, account *Account) (*Account, error)
	RecordLogin(ctx context.Context, userID, ip string, at time.Time) error
}
