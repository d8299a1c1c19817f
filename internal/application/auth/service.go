package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/notes-api/internal/domain"
	"github.com/notes-api/internal/infrastructure/google"
)

const dateLayout = "2006-01-02"

// SignupRequest registers a password account. The password is required here:
// federated accounts are created through GoogleAuth instead.
type SignupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

type VerifyOTPRequest struct {
	UserID string `json:"user_id" validate:"required"`
	OTP    string `json:"otp" validate:"required,len=6,numeric"`
}

type SigninRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResendOTPRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type GoogleAuthRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// Result is a completed authentication: a signed session token plus the user
// it belongs to.
type Result struct {
	Token string
	User  *domain.User
}

// Service orchestrates the authentication flows. Signup and Signin never hand
// out a session token directly; they park the account behind an emailed
// one-time code and VerifyOTP finishes the handshake.
type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*domain.User, error)
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*Result, error)
	Signin(ctx context.Context, req SigninRequest) (*domain.User, error)
	ResendOTP(ctx context.Context, req ResendOTPRequest) (*domain.User, error)
	GoogleAuth(ctx context.Context, req GoogleAuthRequest) (*Result, error)
}

type userStore interface {
	Create(ctx context.Context, params domain.NewUserParams) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, userID string) (*domain.User, error)
	Save(ctx context.Context, u *domain.User) (*domain.User, error)
}

type otpIssuer interface {
	Issue(ctx context.Context, u *domain.User) (string, error)
	Verify(u *domain.User, code string) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type tokenSigner interface {
	Sign(userID string) (string, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, idToken string) (*google.Payload, error)
}

type ServiceDeps struct {
	Users          userStore
	OTP            otpIssuer
	Mailer         mailer
	JWTProvider    tokenSigner
	GoogleVerifier googleVerifier
}

type service struct {
	users  userStore
	otp    otpIssuer
	mailer mailer
	jwt    tokenSigner
	google googleVerifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:  deps.Users,
		otp:    deps.OTP,
		mailer: deps.Mailer,
		jwt:    deps.JWTProvider,
		google: deps.GoogleVerifier,
	}
}

// Signup creates an unverified password account and emails it a one-time
// code. A taken email surfaces as domain.ErrDuplicateIdentity.
func (s *service) Signup(ctx context.Context, req SignupRequest) (*domain.User, error) {
	var dob *time.Time
	if req.DateOfBirth != "" {
		t, err := time.Parse(dateLayout, req.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("date_of_birth must use the %s layout: %w", dateLayout, domain.ErrValidation)
		}
		dob = &t
	}

	u, err := s.users.Create(ctx, domain.NewUserParams{
		Email:       req.Email,
		Name:        req.Name,
		Password:    req.Password,
		DateOfBirth: dob,
	})
	if err != nil {
		return nil, err
	}

	if err := s.issueAndDeliver(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// VerifyOTP checks the submitted code against the user's pending challenge.
// On success the challenge is consumed and the account marked verified in a
// single write, then a session token is issued.
func (s *service) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*Result, error) {
	u, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.otp.Verify(u, req.OTP); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidOrExpiredOTP)
	}

	u.IsVerified = true
	u.ClearOTP()
	u, err = s.users.Save(ctx, u)
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.Sign(u.UserID)
	if err != nil {
		return nil, err
	}
	return &Result{Token: token, User: u}, nil
}

// Signin starts a session for an existing account by emailing a fresh
// one-time code. The code is the authentication proof, so this also works
// for accounts that never finished signup verification.
func (s *service) Signin(ctx context.Context, req SigninRequest) (*domain.User, error) {
	u, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if err := s.issueAndDeliver(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ResendOTP replaces the user's pending challenge with a fresh code. Any
// previously delivered code stops working.
func (s *service) ResendOTP(ctx context.Context, req ResendOTPRequest) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.issueAndDeliver(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GoogleAuth exchanges a verified Google ID token for a session. Unknown
// emails get a fresh account that skips the OTP handshake entirely; known
// emails are reconciled against the asserted Google subject.
func (s *service) GoogleAuth(ctx context.Context, req GoogleAuthRequest) (*Result, error) {
	p, err := s.google.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}
	if p.Sub == "" || p.Email == "" || !p.EmailVerified {
		return nil, fmt.Errorf("google token lacks a verified email: %w", domain.ErrInvalidToken)
	}

	u, err := s.users.FindByEmail(ctx, p.Email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		u, err = s.users.Create(ctx, domain.NewUserParams{
			Email:     p.Email,
			Name:      displayName(p),
			GoogleSub: p.Sub,
			Verified:  true,
		})
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		u, err = s.linkGoogleIdentity(ctx, u, p.Sub)
		if err != nil {
			return nil, err
		}
	}

	token, err := s.jwt.Sign(u.UserID)
	if err != nil {
		return nil, err
	}
	return &Result{Token: token, User: u}, nil
}

// linkGoogleIdentity reconciles an existing account with the subject asserted
// by a Google token. A password account with no linked subject gets linked on
// first use; a mismatched subject is rejected.
func (s *service) linkGoogleIdentity(ctx context.Context, u *domain.User, sub string) (*domain.User, error) {
	switch {
	case u.GoogleSub == sub:
		return u, nil
	case u.GoogleSub != "":
		return nil, fmt.Errorf("account is linked to a different google identity: %w", domain.ErrInvalidToken)
	case !u.HasPassword():
		return nil, fmt.Errorf("account has no credential to link against: %w", domain.ErrInvalidToken)
	default:
		u.GoogleSub = sub
		u.IsVerified = true
		return s.users.Save(ctx, u)
	}
}

func (s *service) issueAndDeliver(ctx context.Context, u *domain.User) error {
	code, err := s.otp.Issue(ctx, u)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code)
	return s.mailer.SendEmail(u.Email, "Your verification code", body)
}

func displayName(p *google.Payload) string {
	if p.Name != "" {
		return p.Name
	}
	// Some tokens omit the name claim; fall back to the email local part.
	if i := strings.Index(p.Email, "@"); i > 0 {
		return p.Email[:i]
	}
	return p.Email
}
