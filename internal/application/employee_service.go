package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
)

// EmployeeService serves employee lookups through a small in-process cache.
// Only hits are cached; a miss always goes to the repository.
type EmployeeService struct {
	logger domain.Logger
	repo   domain.EmployeeRepository
	cache  *expirable.LRU[string, *domain.Employee]
}

// NewEmployeeService creates the service. size <= 0 disables caching.
func NewEmployeeService(logger domain.Logger, repo domain.EmployeeRepository, size int, ttl time.Duration) *EmployeeService {
	if logger == nil || repo == nil {
		panic("a required dependency is nil in NewEmployeeService")
	}
	s := &EmployeeService{logger: logger, repo: repo}
	if size > 0 {
		s.cache = expirable.NewLRU[string, *domain.Employee](size, nil, ttl)
	}
	return s
}

// Lookup returns the employee with empNo or domain.ErrEmployeeNotFound.
func (s *EmployeeService) Lookup(ctx context.Context, empNo string) (*domain.Employee, error) {
	if s.cache != nil {
		if emp, ok := s.cache.Get(empNo); ok {
			return emp, nil
		}
	}

	emp, err := s.repo.FindByEmpNo(ctx, empNo)
	if errors.Is(err, domain.ErrEmployeeNotFound) {
		return nil, err
	}
	if err != nil {
		s.logger.Error(ctx, "Employee lookup failed", "emp_no", empNo, "error", err.Error())
		return nil, fmt.Errorf("%w: employee lookup: %w", domain.ErrSystem, err)
	}

	if s.cache != nil {
		s.cache.Add(empNo, emp)
	}
	return emp, nil
}
