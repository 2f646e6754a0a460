package cache

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTP lifecycle errors.
var (
	ErrOTPNotFound     = errors.New("no active code for this email")
	ErrOTPMismatch     = errors.New("incorrect code")
	ErrOTPTooManyTries = errors.New("too many incorrect attempts")
)

const (
	// OTPTTL bounds how long a password-reset code stays valid.
	OTPTTL = 10 * time.Minute
	// otpMaxAttempts caps verification attempts per issued code.
	otpMaxAttempts = 5
)

// OTPStore holds password-reset one-time codes in Redis with an explicit TTL.
// Codes are keyed by normalized email, expire automatically, are deleted on
// successful verification (single use), and stop accepting guesses after a
// small number of failures.
type OTPStore struct {
	rdb *redis.Client
}

// NewOTPStore creates an OTPStore backed by the given Redis client.
func NewOTPStore(rdb *redis.Client) *OTPStore {
	return &OTPStore{rdb: rdb}
}

// Set stores a code for the email, replacing any previous one and resetting
// the attempt counter.
func (s *OTPStore) Set(ctx context.Context, email, code string) error {
	if s.rdb == nil {
		return errors.New("otp store unavailable: redis not connected")
	}
	key := otpKey(email)
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key, code, OTPTTL)
	pipe.Del(ctx, otpAttemptsKey(email))
	_, err := pipe.Exec(ctx)
	return err
}

// Check validates the code for the email without consuming it, so a client
// can confirm the code before submitting the new password. Failed attempts
// are counted; once the cap is reached the code is revoked.
func (s *OTPStore) Check(ctx context.Context, email, code string) error {
	if s.rdb == nil {
		return errors.New("otp store unavailable: redis not connected")
	}
	key := otpKey(email)

	stored, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrOTPNotFound
	}
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		attempts, incrErr := s.rdb.Incr(ctx, otpAttemptsKey(email)).Result()
		if incrErr == nil {
			s.rdb.Expire(ctx, otpAttemptsKey(email), OTPTTL)
		}
		if attempts >= otpMaxAttempts {
			s.Delete(ctx, email)
			return ErrOTPTooManyTries
		}
		return ErrOTPMismatch
	}

	return nil
}

// Verify checks the code and consumes it on success, making it single use.
func (s *OTPStore) Verify(ctx context.Context, email, code string) error {
	if err := s.Check(ctx, email, code); err != nil {
		return err
	}
	s.Delete(ctx, email)
	return nil
}

// Delete revokes any outstanding code for the email.
func (s *OTPStore) Delete(ctx context.Context, email string) {
	if s.rdb == nil {
		return
	}
	s.rdb.Del(ctx, otpKey(email), otpAttemptsKey(email))
}

func otpKey(email string) string {
	return fmt.Sprintf(otpKeyPrefix, normalizeEmail(email))
}

func otpAttemptsKey(email string) string {
	return fmt.Sprintf(otpAttemptsPrefix, normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
