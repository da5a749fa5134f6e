package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
)

const uniqueViolation = "23505"

const accountColumns = `auto_id, user_id, user_name, password, phone, email, remark,
	last_login, login_ip, image_url, reg_time, locked, is_valid`

// AccountRepository implements domain.AccountRepository over the sys_user table.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	if db == nil {
		panic("db cannot be nil in NewAccountRepository")
	}
	return &AccountRepository{db: db}
}

var _ domain.AccountRepository = (*AccountRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		a                                       domain.Account
		phone, email, remark, loginIP, imageURL sql.NullString
		lastLogin, regTime                      sql.NullTime
	)
	err := row.Scan(&a.AutoID, &a.UserID, &a.UserName, &a.PasswordHash, &phone, &email, &remark,
		&lastLogin, &loginIP, &imageURL, &regTime, &a.Locked, &a.IsValidFlag)
	if err != nil {
		return nil, err
	}
	a.Phone, a.Email, a.Remark = phone.String, email.String, remark.String
	a.LoginIP, a.ImageURL = loginIP.String, imageURL.String
	a.LastLogin, a.RegTime = timePtr(lastLogin), timePtr(regTime)
	return &a, nil
}

// FindByUserID returns domain.ErrAccountNotFound when no row matches.
func (r *AccountRepository) FindByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM sys_user WHERE user_id = $1`, userID)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query sys_user by user_id: %w", err)
	}
	return a, nil
}

// Insert creates the account and returns the stored row.
func (r *AccountRepository) Insert(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `INSERT INTO sys_user
		(user_id, user_name, password, phone, email, remark, reg_time, locked, is_valid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+accountColumns,
		a.UserID, a.UserName, a.PasswordHash,
		nullString(a.Phone), nullString(a.Email), nullString(a.Remark),
		nullTime(a.RegTime), a.Locked, a.IsValidFlag,
	)
	created, err := scanAccount(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert sys_user: %w", err)
	}
	return created, nil
}

// RecordLogin stamps the last successful login time and client address.
func (r *AccountRepository) RecordLogin(ctx context.Context, userID, ip string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sys_user SET last_login = $1, login_ip = $2 WHERE user_id = $3`,
		at, nullString(ip), userID)
	if err != nil {
		return fmt.Errorf("update sys_user last_login: %w", err)
	}
	return nil
}
