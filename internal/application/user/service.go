package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/notes-api/internal/domain"
	"github.com/notes-api/internal/pkg/id"
	"github.com/notes-api/internal/pkg/password"
)

// Service is the credential store: it owns user records and the password
// hashing invariant. Plaintext passwords never cross the repo boundary;
// hashing happens here, as an explicit step before the storage write.
type Service interface {
	Create(ctx context.Context, params domain.NewUserParams) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, userID string) (*domain.User, error)
	Save(ctx context.Context, u *domain.User) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, newPassword string) error
	ComparePassword(u *domain.User, plaintext string) bool
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Save(ctx context.Context, u *domain.User) error
}

type service struct {
	repo userStore
}

type ServiceDeps struct {
	UserRepo userStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.UserRepo}
}

func (s *service) Create(ctx context.Context, params domain.NewUserParams) (*domain.User, error) {
	if params.Password == "" && params.GoogleSub == "" {
		return nil, fmt.Errorf("account needs a password or a federated identity: %w", domain.ErrValidation)
	}
	var hash string
	if params.Password != "" {
		var err error
		hash, err = password.Hash(params.Password)
		if err != nil {
			return nil, err
		}
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Email:        normalizeEmail(params.Email),
		Name:         params.Name,
		DateOfBirth:  params.DateOfBirth,
		PasswordHash: hash,
		GoogleSub:    params.GoogleSub,
		IsVerified:   params.Verified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.GetByEmail(ctx, normalizeEmail(email))
}

func (s *service) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

// Save replaces the stored document with u and bumps UpdatedAt. Callers batch
// related field changes (e.g. clear OTP pair + set IsVerified) into one Save
// so the write is atomic.
func (s *service) Save(ctx context.Context, u *domain.User) (*domain.User, error) {
	u.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) ChangePassword(ctx context.Context, userID, newPassword string) error {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	_, err = s.Save(ctx, u)
	return err
}

// ComparePassword fails closed: a user without a password hash matches nothing.
func (s *service) ComparePassword(u *domain.User, plaintext string) bool {
	return password.Compare(u.PasswordHash, plaintext)
}

// normalizeEmail is applied on create and on lookup, so the unique key is
// case-insensitive and whitespace-tolerant.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
