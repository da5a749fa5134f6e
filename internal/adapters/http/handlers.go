package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gitlab.com/timkado/api/staff-auth-service/internal/adapters/middleware"
	"gitlab.com/timkado/api/staff-auth-service/internal/application"
	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
)

const (
	maxBodyBytes     = 1 << 16
	systemErrMessage = "system error, contact the administrator"
)

// LoginService is the part of the auth service the handlers need.
type LoginService interface {
	Login(ctx context.Context, userID, password, clientIP string) (*domain.LoginResult, error)
	Logout(ctx context.Context, credential string) error
}

// AccountRegistrar creates accounts.
type AccountRegistrar interface {
	Register(ctx context.Context, in application.NewAccount) (*domain.Account, error)
}

// EmployeeLookup finds employees by number.
type EmployeeLookup interface {
	Lookup(ctx context.Context, empNo string) (*domain.Employee, error)
}

// decodeAndValidate reads a JSON body into dst and runs its validation.
// It writes the 400 response itself and reports false on failure.
func decodeAndValidate[T domain.Validatable](w http.ResponseWriter, r *http.Request, logger domain.Logger, dst *T) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		logger.Warn(r.Context(), "Failed to decode request payload", "path", r.URL.Path, "error", err.Error())
		domain.NewErrorResponse(domain.ErrCodeBadRequest, "Invalid request payload", err.Error()).WriteJSON(w, http.StatusBadRequest)
		return false
	}
	if errs := (*dst).Validate(); len(errs) > 0 {
		details := domain.JoinFieldErrors(errs)
		logger.Warn(r.Context(), "Request payload failed validation", "path", r.URL.Path, "details", details)
		domain.NewErrorResponse(domain.ErrCodeBadRequest, "Invalid request payload", details).WriteJSON(w, http.StatusBadRequest)
		return false
	}
	return true
}

// LoginHandler authenticates the user and returns the bearer token both in the
// Authorization response header and in the body.
func LoginHandler(svc LoginService, logger domain.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeAndValidate(w, r, logger, &req) {
			return
		}

		res, err := svc.Login(r.Context(), strings.TrimSpace(req.UserID), req.Password, middleware.ClientIPFromContext(r.Context()))
		if err != nil {
			var rejected *domain.LoginRejectedError
			if errors.As(err, &rejected) {
				domain.NewErrorResponse(domain.ErrCodeInvalidCredentials, domain.PublicInvalidCredentialsMessage, "").WriteJSON(w, http.StatusUnauthorized)
				return
			}
			domain.NewErrorResponse(domain.ErrCodeInternal, systemErrMessage, "").WriteJSON(w, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Authorization", res.BearerToken)
		if err := writeOK(w, http.StatusOK, "success", LoginResponse{
			Authorization: []string{res.BearerToken},
			ExpiresAt:     res.ExpiresAt,
		}); err != nil {
			logger.Error(r.Context(), "Failed to encode login response", "error", err.Error())
		}
	}
}

// LogoutHandler revokes the session of the authenticated caller.
func LogoutHandler(svc LoginService, logger domain.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := middleware.SessionFromContext(r.Context())
		if !ok {
			domain.NewErrorResponse(domain.ErrCodeUnauthorized, "Authorization is required", "").WriteJSON(w, http.StatusUnauthorized)
			return
		}
		if err := svc.Logout(r.Context(), session.Token); err != nil {
			logger.Error(r.Context(), "Logout failed", "error", err.Error())
			domain.NewErrorResponse(domain.ErrCodeInternal, systemErrMessage, "").WriteJSON(w, http.StatusInternalServerError)
			return
		}
		if err := writeOK(w, http.StatusOK, "success", struct{}{}); err != nil {
			logger.Error(r.Context(), "Failed to encode logout response", "error", err.Error())
		}
	}
}

// RegisterHandler creates an account.
func RegisterHandler(svc AccountRegistrar, logger domain.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if !decodeAndValidate(w, r, logger, &req) {
			return
		}

		created, err := svc.Register(r.Context(), application.NewAccount{
			UserID:   strings.TrimSpace(req.UserID),
			UserName: strings.TrimSpace(req.UserName),
			Password: req.Password,
			Phone:    req.Phone,
			Email:    req.Email,
			Remark:   req.Remark,
		})
		switch {
		case errors.Is(err, domain.ErrAccountExists):
			domain.NewErrorResponse(domain.ErrCodeConflict, "user already exists", "").WriteJSON(w, http.StatusConflict)
			return
		case err != nil:
			domain.NewErrorResponse(domain.ErrCodeInternal, systemErrMessage, "").WriteJSON(w, http.StatusInternalServerError)
			return
		}

		if err := writeOK(w, http.StatusCreated, "success", RegisterResponse{UserID: created.UserID, UserName: created.UserName}); err != nil {
			logger.Error(r.Context(), "Failed to encode register response", "error", err.Error())
		}
	}
}

// EmployeeHandler serves GET /api/employees/{empNo}.
func EmployeeHandler(svc EmployeeLookup, logger domain.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		empNo := strings.TrimSpace(r.PathValue("empNo"))
		if empNo == "" {
			domain.NewErrorResponse(domain.ErrCodeBadRequest, "Invalid request", "empNo is required").WriteJSON(w, http.StatusBadRequest)
			return
		}

		emp, err := svc.Lookup(r.Context(), empNo)
		switch {
		case errors.Is(err, domain.ErrEmployeeNotFound):
			domain.NewErrorResponse(domain.ErrCodeNotFound, "employee not found", "").WriteJSON(w, http.StatusNotFound)
			return
		case err != nil:
			domain.NewErrorResponse(domain.ErrCodeInternal, systemErrMessage, "").WriteJSON(w, http.StatusInternalServerError)
			return
		}

		if err := writeOK(w, http.StatusOK, "success", emp); err != nil {
			logger.Error(r.Context(), "Failed to encode employee response", "error", err.Error())
		}
	}
}
