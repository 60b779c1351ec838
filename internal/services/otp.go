package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// codeTTL bounds how long a reset code stays redeemable.
const codeTTL = 5 * time.Minute

// ErrCodeNotFound is returned when no live code exists for the email,
// whether it expired or was never issued.
var ErrCodeNotFound = errors.New("no live code for email")

// OTPStore keeps one-time password-reset codes in redis with a short TTL.
// At most one code is live per email: issuing overwrites any previous one.
type OTPStore struct {
	rdb *redis.Client
}

// NewOTPStore wraps a redis client.
func NewOTPStore(rdb *redis.Client) *OTPStore {
	return &OTPStore{rdb: rdb}
}

func otpKey(email string) string {
	return "otp_" + email
}

// Issue generates a fresh 6-digit code for the email and stores it,
// replacing any earlier unredeemed code.
func (s *OTPStore) Issue(ctx context.Context, email string) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}

	if err := s.rdb.Set(ctx, otpKey(email), code, codeTTL).Err(); err != nil {
		return "", err
	}

	return code, nil
}

// Get returns the live code for the email, or ErrCodeNotFound.
func (s *OTPStore) Get(ctx context.Context, email string) (string, error) {
	code, err := s.rdb.Get(ctx, otpKey(email)).Result()
	if err == redis.Nil {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

// Delete removes the code so it cannot be redeemed twice.
func (s *OTPStore) Delete(ctx context.Context, email string) error {
	return s.rdb.Del(ctx, otpKey(email)).Err()
}

// GenerateCode produces a uniformly random 6-digit code. Leading zeros are
// kept: the code space is the full 000000-999999.
func GenerateCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
