package note

import (
	"context"
	"fmt"
	"time"

	"github.com/notes-api/internal/domain"
	"github.com/notes-api/internal/pkg/id"
)

const (
	fieldTitle   = "title"
	fieldContent = "content"
)

// Service owns note records. Every operation that touches a single note
// checks that the requester is the note's owner first; other users' notes
// behave as if they were invisible except for the explicit forbidden error.
type Service interface {
	Create(ctx context.Context, userID string, req domain.CreateNoteRequest) (*domain.Note, error)
	Get(ctx context.Context, noteID, requesterID string) (*domain.Note, error)
	List(ctx context.Context, userID string) ([]domain.Note, error)
	Update(ctx context.Context, noteID, requesterID string, req domain.UpdateNoteRequest) (*domain.Note, error)
	Delete(ctx context.Context, noteID, requesterID string) error
}

type noteStore interface {
	Put(ctx context.Context, n *domain.Note) error
	Get(ctx context.Context, noteID string) (*domain.Note, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Note, error)
	Update(ctx context.Context, noteID string, updates map[string]interface{}) error
	HardDelete(ctx context.Context, noteID string) error
}

type attachmentPurger interface {
	DeleteByNote(ctx context.Context, noteID string) error
}

type ServiceDeps struct {
	NoteRepo    noteStore
	Attachments attachmentPurger
}

type service struct {
	repo        noteStore
	attachments attachmentPurger
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.NoteRepo, attachments: deps.Attachments}
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreateNoteRequest) (*domain.Note, error) {
	now := time.Now().UTC()
	n := &domain.Note{
		NoteID:    id.New(),
		UserID:    userID,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *service) Get(ctx context.Context, noteID, requesterID string) (*domain.Note, error) {
	n, err := s.repo.Get(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if n.UserID != requesterID {
		return nil, fmt.Errorf("note belongs to another user: %w", domain.ErrForbidden)
	}
	return n, nil
}

// List returns the requester's notes, newest first.
func (s *service) List(ctx context.Context, userID string) ([]domain.Note, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Update applies the set fields of req. An empty request writes nothing and
// returns the note as stored.
func (s *service) Update(ctx context.Context, noteID, requesterID string, req domain.UpdateNoteRequest) (*domain.Note, error) {
	n, err := s.Get(ctx, noteID, requesterID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates[fieldTitle] = *req.Title
	}
	if req.Content != nil {
		updates[fieldContent] = *req.Content
	}
	if len(updates) == 0 {
		return n, nil
	}

	if err := s.repo.Update(ctx, noteID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, noteID)
}

// Delete removes the note and everything attached to it. Attachments go
// first so a failed purge never leaves blobs pointing at a dead note.
func (s *service) Delete(ctx context.Context, noteID, requesterID string) error {
	if _, err := s.Get(ctx, noteID, requesterID); err != nil {
		return err
	}
	if err := s.attachments.DeleteByNote(ctx, noteID); err != nil {
		return err
	}
	return s.repo.HardDelete(ctx, noteID)
}
