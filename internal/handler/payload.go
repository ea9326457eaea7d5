package handler

import (
	"time"

	"github.com/kittipos/expense-tracker-api/internal/model"
)

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type RequestOTPRequest struct {
	Email string `json:"email" validate:"required"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required"`
	OTP   string `json:"otp"   validate:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"       validate:"required"`
	OTP         string `json:"otp"         validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type ExpenseRequest struct {
	Title       string    `json:"title"       validate:"required"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"      validate:"required"`
	Category    string    `json:"category"    validate:"required"`
	Date        time.Time `json:"date"        validate:"required"`
}

type UpdateExpenseRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
}
