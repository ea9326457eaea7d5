// Package handler maps HTTP requests onto the usecases.
package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/kittipos/expense-tracker-api/internal/usecase"
	"github.com/kittipos/expense-tracker-api/shared/httputil"
	"github.com/kittipos/expense-tracker-api/shared/validate"
)

// AuthHandler handles authentication and password-reset HTTP requests.
type AuthHandler struct {
	authUsecase          usecase.AuthUsecase
	passwordResetUsecase usecase.PasswordResetUsecase
	validator            *validate.Validator
	logger               *zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(
	authUsecase usecase.AuthUsecase,
	passwordResetUsecase usecase.PasswordResetUsecase,
	validator *validate.Validator,
	logger *zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUsecase:          authUsecase,
		passwordResetUsecase: passwordResetUsecase,
		validator:            validator,
		logger:               logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondMessage(w, r, http.StatusBadRequest, "Name, email, and password are required")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.RespondMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingFields):
			httputil.RespondMessage(w, r, http.StatusBadRequest, "Name, email, and password are required")
		case errors.Is(err, usecase.ErrUserAlreadyExists):
			httputil.RespondMessage(w, r, http.StatusBadRequest, "Email already exists")
		default:
			h.logger.Error().Err(err).Str("operation", "Register").Msg("registration failed")
			httputil.RespondMessage(w, r, http.StatusInternalServerError, "Server error during registration")
		}
		return
	}

	httputil.RespondJSON(w, r, http.StatusCreated, AuthResponse{
		Token: result.Token,
		User:  result.User,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondMessage(w, r, http.StatusBadRequest, "Email and password are required")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.RespondMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingFields):
			httputil.RespondMessage(w, r, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, usecase.ErrUserNotFound):
			httputil.RespondMessage(w, r, http.StatusBadRequest, "User not found")
		case errors.Is(err, usecase.ErrIncorrectPassword):
			httputil.RespondMessage(w, r, http.StatusBadRequest, "Incorrect password")
		default:
			h.logger.Error().Err(err).Str("operation", "Login").Msg("login failed")
			httputil.RespondMessage(w, r, http.StatusInternalServerError, "Server error during login")
		}
		return
	}

	httputil.RespondJSON(w, r, http.StatusOK, AuthResponse{
		Token: result.Token,
		User:  result.User,
	})
}

func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req RequestOTPRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondMessage(w, r, http.StatusBadRequest, "Email is required")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.RespondMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.passwordResetUsecase.RequestReset(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingFields):
			httputil.RespondMessage(w, r, http.StatusBadRequest, "Email is required")
		case errors.Is(err, usecase.ErrUserNotFound):
			httputil.RespondMessage(w, r, http.StatusNotFound, "User not found")
		default:
			h.logger.Error().Err(err).Str("operation", "RequestOTP").Msg("otp request failed")
			httputil.RespondMessage(w, r, http.StatusInternalServerError, "Failed to send OTP")
		}
		return
	}

	httputil.RespondMessage(w, r, http.StatusOK, "OTP sent to your email")
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondMessage(w, r, http.StatusBadRequest, "Email and OTP are required")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.RespondMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.passwordResetUsecase.VerifyCode(r.Context(), req.Email, req.OTP); err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingFields):
			httputil.RespondMessage(w, r, http.StatusBadRequest, "Email and OTP are required")
		case errors.Is(err, usecase.ErrOTPNotFound):
			httputil.RespondMessage(w, r, http.StatusBadRequest, "OTP not found")
		case errors.Is(err, usecase.ErrOTPInvalid), errors.Is(err, usecase.ErrOTPExpired):
			httputil.RespondMessage(w, r, http.StatusBadRequest, "Invalid or expired OTP")
		default:
			h.logger.Error().Err(err).Str("operation", "VerifyOTP").Msg("otp verification failed")
			httputil.RespondMessage(w, r, http.StatusInternalServerError, "Failed to verify OTP")
		}
		return
	}

	httputil.RespondMessage(w, r, http.StatusOK, "OTP verified successfully")
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondMessage(w, r, http.StatusBadRequest, "Email, OTP, and new password are required")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.RespondMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.passwordResetUsecase.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingFields):
			httputil.RespondMessage(w, r, http.StatusBadRequest, "Email, OTP, and new password are required")
		case errors.Is(err, usecase.ErrUserNotFound):
			httputil.RespondMessage(w, r, http.StatusNotFound, "User not found")
		case errors.Is(err, usecase.ErrOTPNotFound):
			httputil.RespondMessage(w, r, http.StatusBadRequest, "OTP not found")
		case errors.Is(err, usecase.ErrOTPInvalid), errors.Is(err, usecase.ErrOTPExpired):
			httputil.RespondMessage(w, r, http.StatusBadRequest, "Invalid or expired OTP")
		default:
			h.logger.Error().Err(err).Str("operation", "ResetPassword").Msg("password reset failed")
			httputil.RespondMessage(w, r, http.StatusInternalServerError, "Failed to reset password")
		}
		return
	}

	httputil.RespondMessage(w, r, http.StatusOK, "Password reset successful")
}
