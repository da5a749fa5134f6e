package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
)

// EmployeeRepository reads material.rs_employee01.
type EmployeeRepository struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) *EmployeeRepository {
	if db == nil {
		panic("db cannot be nil in NewEmployeeRepository")
	}
	return &EmployeeRepository{db: db}
}

var _ domain.EmployeeRepository = (*EmployeeRepository)(nil)

func (r *EmployeeRepository) FindByEmpNo(ctx context.Context, empNo string) (*domain.Employee, error) {
	var (
		e                                              domain.Employee
		no, name, deptNo, deptName, duty, post, mobile sql.NullString
		deptID                                         sql.NullInt64
		status                                         sql.NullInt16
		entry, resign                                  sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `SELECT empid, empno, empname, deptid, deptno, deptname,
		dutyname, postname, mobileno, gender, entrydate, resigndate, statusid
		FROM material.rs_employee01 WHERE empno = $1`, empNo).
		Scan(&e.EmpID, &no, &name, &deptID, &deptNo, &deptName,
			&duty, &post, &mobile, &e.Gender, &entry, &resign, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query rs_employee01 by empno: %w", err)
	}

	e.EmpNo, e.EmpName = no.String, name.String
	e.DeptNo, e.DeptName = deptNo.String, deptName.String
	e.DutyName, e.PostName, e.MobileNo = duty.String, post.String, mobile.String
	if deptID.Valid {
		e.DeptID = &deptID.Int64
	}
	if status.Valid {
		e.StatusID = &status.Int16
	}
	e.EntryDate, e.ResignDate = timePtr(entry), timePtr(resign)
	return &e, nil
}
