package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
)

var accountCols = []string{"auto_id", "user_id", "user_name", "password", "phone", "email", "remark",
	"last_login", "login_ip", "image_url", "reg_time", "locked", "is_valid"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestFindByUserID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)
	reg := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sys_user WHERE user_id = $1")).
		WithArgs("E1001").
		WillReturnRows(sqlmock.NewRows(accountCols).
			AddRow(int64(7), "E1001", "Ana", "$2a$hash", "0812", nil, nil, nil, nil, nil, reg, 1, 0))

	acc, err := repo.FindByUserID(context.Background(), "E1001")
	require.NoError(t, err)
	assert.Equal(t, int64(7), acc.AutoID)
	assert.Equal(t, "0812", acc.Phone)
	assert.Empty(t, acc.Email)
	assert.Nil(t, acc.LastLogin)
	require.NotNil(t, acc.RegTime)
	assert.True(t, acc.RegTime.Equal(reg))
	assert.True(t, acc.IsLocked())
	assert.True(t, acc.IsValid())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByUserIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery("FROM sys_user").WithArgs("E9999").WillReturnRows(sqlmock.NewRows(accountCols))

	_, err := repo.FindByUserID(context.Background(), "E9999")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestFindByUserIDStorageFailure(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery("FROM sys_user").WillReturnError(errors.New("connection reset"))

	_, err := repo.FindByUserID(context.Background(), "E1001")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestInsertAccount(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)
	reg := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sys_user")).
		WithArgs("E2001", "Dana", "$2a$hash", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), 0, 0).
		WillReturnRows(sqlmock.NewRows(accountCols).
			AddRow(int64(8), "E2001", "Dana", "$2a$hash", nil, "dana@example.com", nil, nil, nil, nil, reg, 0, 0))

	created, err := repo.Insert(context.Background(), &domain.Account{
		UserID: "E2001", UserName: "Dana", PasswordHash: "$2a$hash", Email: "dana@example.com", RegTime: &reg,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), created.AutoID)
	assert.Equal(t, "dana@example.com", created.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertDuplicateAccount(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery("INSERT INTO sys_user").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := repo.Insert(context.Background(), &domain.Account{UserID: "E1001", UserName: "x", PasswordHash: "h"})
	assert.ErrorIs(t, err, domain.ErrAccountExists)
}

func TestRecordLogin(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)
	at := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE sys_user SET last_login = $1, login_ip = $2 WHERE user_id = $3")).
		WithArgs(at, sqlmock.AnyArg(), "E1001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RecordLogin(context.Background(), "E1001", "10.0.0.1", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}
