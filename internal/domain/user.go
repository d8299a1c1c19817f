package domain

import "time"

// User is one identity row. The outstanding OTP challenge is embedded in the
// document so that consuming it (clear code + expiry, flip IsVerified) is a
// single full-document write.
type User struct {
	UserID       string     `json:"id" dynamodbav:"user_id"`
	Email        string     `json:"email" dynamodbav:"email"`
	Name         string     `json:"name" dynamodbav:"name"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty" dynamodbav:"date_of_birth,omitempty"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash,omitempty"`
	GoogleSub    string     `json:"-" dynamodbav:"google_sub,omitempty"`
	IsVerified   bool       `json:"is_verified" dynamodbav:"is_verified"`
	OTPCode      *string    `json:"-" dynamodbav:"otp_code,omitempty"`
	OTPExpiresAt *time.Time `json:"-" dynamodbav:"otp_expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// HasPassword reports whether the account carries a password credential.
func (u *User) HasPassword() bool { return u.PasswordHash != "" }

// HasFederatedIdentity reports whether the account is linked to a Google identity.
func (u *User) HasFederatedIdentity() bool { return u.GoogleSub != "" }

// SetOTP installs a fresh challenge, overwriting any outstanding one.
func (u *User) SetOTP(code string, expiresAt time.Time) {
	u.OTPCode = &code
	u.OTPExpiresAt = &expiresAt
}

// ClearOTP removes the challenge pair. Both fields are always cleared together.
func (u *User) ClearOTP() {
	u.OTPCode = nil
	u.OTPExpiresAt = nil
}

// NewUserParams carries the fields for creating a User. Password, when present,
// is plaintext here and must be hashed by the credential store before any write.
type NewUserParams struct {
	Email       string
	Name        string
	DateOfBirth *time.Time
	Password    string
	GoogleSub   string
	Verified    bool
}
