package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"moodblog/internal/cache"
	"moodblog/internal/mail"
	"moodblog/internal/middleware"
	"moodblog/internal/models"
	"moodblog/internal/repository"
	"moodblog/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// OTPService drives the password-reset flow: issue a one-time code by email,
// let the client confirm it, then consume it when the password changes.
type OTPService struct {
	userRepo repository.UserRepository
	store    *cache.OTPStore
	mailer   *mail.Mailer
}

func NewOTPService(userRepo repository.UserRepository, store *cache.OTPStore, mailer *mail.Mailer) *OTPService {
	return &OTPService{
		userRepo: userRepo,
		store:    store,
		mailer:   mailer,
	}
}

// RequestReset issues a fresh code for the account and emails it. The code is
// also returned so callers without a configured mailer (local development)
// can surface it; production handlers must not echo it to the client.
func (s *OTPService) RequestReset(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", models.NewValidationError("Email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		middleware.OTPRequests.WithLabelValues("request", "error").Inc()
		return "", err
	}
	if user == nil {
		middleware.OTPRequests.WithLabelValues("request", "unknown_email").Inc()
		return "", models.NewNotFoundError("User", email)
	}

	code, err := generateOTP()
	if err != nil {
		middleware.OTPRequests.WithLabelValues("request", "error").Inc()
		return "", models.NewInternalError(err)
	}

	if err := s.store.Set(ctx, email, code); err != nil {
		middleware.OTPRequests.WithLabelValues("request", "error").Inc()
		return "", models.NewInternalError(err)
	}

	s.mailer.SendPasswordResetEmail(email, code, int(cache.OTPTTL.Minutes()))
	middleware.OTPRequests.WithLabelValues("request", "ok").Inc()
	return code, nil
}

// MailEnabled reports whether reset codes actually leave the server by email.
func (s *OTPService) MailEnabled() bool {
	return s.mailer != nil && s.mailer.Enabled()
}

// CheckOTP confirms the code matches without consuming it, so the client can
// validate before collecting the new password.
func (s *OTPService) CheckOTP(ctx context.Context, email, code string) error {
	if email == "" || code == "" {
		return models.NewValidationError("Email and OTP are required")
	}
	if err := s.store.Check(ctx, email, code); err != nil {
		middleware.OTPRequests.WithLabelValues("verify", "fail").Inc()
		return otpError(err)
	}
	middleware.OTPRequests.WithLabelValues("verify", "ok").Inc()
	return nil
}

// ResetPassword consumes the code and sets the new password.
func (s *OTPService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if email == "" || code == "" || newPassword == "" {
		return models.NewValidationError("Email, OTP, and new password are required")
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundError("User", email)
	}

	if err := s.store.Verify(ctx, email, code); err != nil {
		middleware.OTPRequests.WithLabelValues("reset", "fail").Inc()
		return otpError(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}

	user.Password = string(hashed)
	if err := s.userRepo.Update(ctx, user); err != nil {
		middleware.OTPRequests.WithLabelValues("reset", "error").Inc()
		return err
	}

	middleware.OTPRequests.WithLabelValues("reset", "ok").Inc()
	return nil
}

func otpError(err error) error {
	switch {
	case errors.Is(err, cache.ErrOTPNotFound):
		return models.NewValidationError("OTP not found or expired")
	case errors.Is(err, cache.ErrOTPMismatch):
		return models.NewValidationError("Invalid OTP")
	case errors.Is(err, cache.ErrOTPTooManyTries):
		return models.NewValidationError("Too many incorrect attempts. Request a new code")
	default:
		return models.NewInternalError(err)
	}
}

// generateOTP returns a uniformly random six digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
