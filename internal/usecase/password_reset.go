package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/kittipos/expense-tracker-api/internal/config"
	"github.com/kittipos/expense-tracker-api/internal/model"
	"github.com/kittipos/expense-tracker-api/internal/repository"
	"github.com/kittipos/expense-tracker-api/shared/mailer"
	"github.com/kittipos/expense-tracker-api/shared/security"
)

// PasswordResetUsecase defines the business logic for the OTP-based
// password-reset flow. The flow is stateless between phases: every call
// re-reads the persisted code record, so the two-phase verify-then-reset
// client flow works across server instances.
type PasswordResetUsecase interface {
	// RequestReset issues a fresh code for the email, replacing any prior
	// one, and emails it to the user.
	RequestReset(ctx context.Context, email string) error

	// VerifyCode checks the submitted code against the stored record
	// without consuming it. The check is repeatable.
	VerifyCode(ctx context.Context, email, code string) error

	// ResetPassword re-validates the code, updates the user's password and
	// deletes the code record.
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

var (
	ErrOTPNotFound = errors.New("otp not found")
	ErrOTPInvalid  = errors.New("invalid otp")
	ErrOTPExpired  = errors.New("otp has expired")
)

// Notifier sends a single outbound email. *mailer.Mailer satisfies it.
type Notifier interface {
	Send(email mailer.Email) error
}

type passwordResetUsecase struct {
	userRepo repository.UserRepository
	otpRepo  repository.OTPRepository
	notifier Notifier
	cfg      *config.Config
	logger   *zerolog.Logger
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	otpRepo repository.OTPRepository,
	notifier Notifier,
	cfg *config.Config,
	logger *zerolog.Logger,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo: userRepo,
		otpRepo:  otpRepo,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

func (u *passwordResetUsecase) RequestReset(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return ErrMissingFields
	}

	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}

		return err
	}

	code, err := generateCode()
	if err != nil {
		return err
	}

	if _, err := u.otpRepo.UpsertCode(ctx, &model.OTPCode{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(u.cfg.OTP.ExpiresIn),
	}); err != nil {
		return err
	}

	// The code is issued once persisted. Delivery failure is logged but
	// must not fail the request.
	validity := int(u.cfg.OTP.ExpiresIn.Minutes())
	if err := u.notifier.Send(mailer.Email{
		To:       []string{user.Email},
		Subject:  "Password Reset OTP",
		Body:     fmt.Sprintf("Your OTP is %s. It is valid for %d minutes.", code, validity),
		HTMLBody: fmt.Sprintf("<p>Your OTP is <strong>%s</strong>. It is valid for %d minutes.</p>", code, validity),
	}); err != nil {
		u.logger.Error().
			Err(err).
			Str("operation", "RequestReset").
			Str("email", email).
			Msg("failed to send otp email")
	}

	return nil
}

func (u *passwordResetUsecase) VerifyCode(ctx context.Context, email, code string) error {
	email = NormalizeEmail(email)
	if email == "" || code == "" {
		return ErrMissingFields
	}

	_, err := u.validateCode(ctx, email, code)
	return err
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = NormalizeEmail(email)
	if email == "" || code == "" || newPassword == "" {
		return ErrMissingFields
	}

	// A prior VerifyCode call is never trusted across requests. Each reset
	// attempt re-checks the code and expiry against the stored record.
	if _, err := u.validateCode(ctx, email, code); err != nil {
		return err
	}

	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}

		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if _, err := u.userRepo.UpdateUser(ctx, user.ID.Hex(), repository.UpdateUserParams{
		PasswordHash: &passwordHash,
	}); err != nil {
		return err
	}

	// Delete unconditionally after the password update so the code cannot
	// be replayed. A failed delete leaves a stale record that the TTL index
	// eventually removes.
	if err := u.otpRepo.DeleteCodeByEmail(ctx, email); err != nil {
		u.logger.Error().
			Err(err).
			Str("operation", "ResetPassword").
			Str("email", email).
			Msg("failed to delete consumed otp")
	}

	return nil
}

func (u *passwordResetUsecase) validateCode(ctx context.Context, email, code string) (*model.OTPCode, error) {
	stored, err := u.otpRepo.GetCodeByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOTPNotFound
		}

		return nil, err
	}

	if stored.Code != code {
		return nil, ErrOTPInvalid
	}

	if !time.Now().Before(stored.ExpiresAt) {
		return nil, ErrOTPExpired
	}

	return stored, nil
}

// generateCode draws a uniformly random 6-digit code, zero-padded.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
