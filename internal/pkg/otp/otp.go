// Package otp issues and checks the short-lived numeric codes used as the
// authentication proof for signup verification and sign-in.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/notes-api/internal/domain"
)

// TTL is the fixed validity window of a code, measured from issuance.
const TTL = 10 * time.Minute

// Verification failure reasons. Callers usually collapse all three into a
// single invalid-or-expired kind; the distinction exists for logs and tests.
var (
	ErrNoChallenge = errors.New("no outstanding code")
	ErrExpired     = errors.New("code expired")
	ErrMismatch    = errors.New("code mismatch")
)

type userSaver interface {
	Save(ctx context.Context, u *domain.User) (*domain.User, error)
}

// Issuer generates challenges and persists them on the user record.
// At most one challenge is outstanding per user: issuing overwrites.
type Issuer struct {
	users userSaver
	now   func() time.Time
}

func NewIssuer(users userSaver) *Issuer {
	return &Issuer{users: users, now: func() time.Time { return time.Now().UTC() }}
}

// Issue draws a fresh 6-digit code, stamps the user with it and an expiry of
// now+TTL, persists both fields in one write, and returns the code for
// delivery. The issuer never sends the code anywhere itself.
func (i *Issuer) Issue(ctx context.Context, u *domain.User) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	u.SetOTP(code, i.now().Add(TTL))
	if _, err := i.users.Save(ctx, u); err != nil {
		return "", err
	}
	return code, nil
}

// Verify checks the supplied code against the user's outstanding challenge.
// It never mutates the user: on success the caller clears the challenge pair
// as part of its own atomic write, on failure the challenge stays as-is so
// the caller decides whether a retry is allowed.
func (i *Issuer) Verify(u *domain.User, code string) error {
	if u.OTPCode == nil || u.OTPExpiresAt == nil {
		return ErrNoChallenge
	}
	// Expiry is exclusive: a code presented at exactly its expiry instant is stale.
	if !i.now().Before(*u.OTPExpiresAt) {
		return ErrExpired
	}
	if *u.OTPCode != code {
		return ErrMismatch
	}
	return nil
}

// generateCode returns a uniformly random code in 000000–999999, always
// exactly six digits.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
