package http

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
	"gitlab.com/timkado/api/staff-auth-service/pkg/crypto"
)

const minPasswordLength = 6

// LoginRequest is the payload of POST /api/login.
type LoginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() []domain.FieldError {
	var errs []domain.FieldError
	if strings.TrimSpace(r.UserID) == "" {
		errs = append(errs, domain.FieldError{Field: "userId", Message: "is required"})
	}
	if r.Password == "" {
		errs = append(errs, domain.FieldError{Field: "password", Message: "is required"})
	}
	return errs
}

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	Authorization []string  `json:"Authorization"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// RegisterRequest is the payload of POST /api/users.
type RegisterRequest struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Remark   string `json:"remark,omitempty"`
}

func (r RegisterRequest) Validate() []domain.FieldError {
	var errs []domain.FieldError
	if strings.TrimSpace(r.UserID) == "" {
		errs = append(errs, domain.FieldError{Field: "userId", Message: "is required"})
	}
	if strings.TrimSpace(r.UserName) == "" {
		errs = append(errs, domain.FieldError{Field: "userName", Message: "is required"})
	}
	if len(r.Password) < minPasswordLength {
		errs = append(errs, domain.FieldError{Field: "password", Message: "must be at least 6 characters"})
	}
	if len(r.Password) > crypto.MaxPasswordBytes {
		errs = append(errs, domain.FieldError{Field: "password", Message: fmt.Sprintf("must be at most %d bytes", crypto.MaxPasswordBytes)})
	}
	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			errs = append(errs, domain.FieldError{Field: "email", Message: "is not a valid address"})
		}
	}
	return errs
}

// RegisterResponse is the data of a successful registration.
type RegisterResponse struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

var (
	_ domain.Validatable = LoginRequest{}
	_ domain.Validatable = RegisterRequest{}
)
