package domain

import (
	"context"
	"errors"
	"time"
)

var ErrEmployeeNotFound = errors.New("employee not found")

// Employee is a read-only row of the employee master table.
type Employee struct {
	EmpID      int64      `json:"empId"`
	EmpNo      string     `json:"empNo"`
	EmpName    string     `json:"empName"`
	DeptID     *int64     `json:"deptId,omitempty"`
	DeptNo     string     `json:"deptNo,omitempty"`
	DeptName   string     `json:"deptName,omitempty"`
	DutyName   string     `json:"dutyName,omitempty"`
	PostName   string     `json:"postName,omitempty"`
	MobileNo   string     `json:"mobileNo,omitempty"`
	Gender     int16      `json:"gender"`
	EntryDate  *time.Time `json:"entryDate,omitempty"`
	ResignDate *time.Time `json:"resignDate,omitempty"`
	StatusID   *int16     `json:"statusId,omitempty"`
}

// IsActive reports whether the employee is currently employed (status 1, no resign date).
func (e *Employee) IsActive() bool {
	return e.StatusID != nil && *e.StatusID == 1 && e.ResignDate == nil
}

// EmployeeRepository looks up employees by employee number.
type EmployeeRepository interface {
	FindByEmpNo(ctx context.Context, empNo string) (*Employee, error)
}
