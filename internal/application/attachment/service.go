package attachment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/notes-api/internal/domain"
	"github.com/notes-api/internal/pkg/id"
)

type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// Service owns attachment metadata rows and their backing blobs. Uploads and
// listings are scoped to a note the requester owns; downloads and deletes are
// checked against the owner recorded on the attachment itself.
type Service interface {
	Upload(ctx context.Context, noteID, requesterID string, input UploadInput) (*domain.Attachment, error)
	List(ctx context.Context, noteID, requesterID string) ([]domain.Attachment, error)
	Download(ctx context.Context, attachmentID, requesterID string) (io.ReadCloser, *domain.Attachment, error)
	Delete(ctx context.Context, attachmentID, requesterID string) error
	DeleteByNote(ctx context.Context, noteID string) error
}

type attachmentStore interface {
	Put(ctx context.Context, a *domain.Attachment) error
	Get(ctx context.Context, attachmentID string) (*domain.Attachment, error)
	ListByNote(ctx context.Context, noteID string) ([]domain.Attachment, error)
	HardDelete(ctx context.Context, attachmentID string) error
}

type noteStore interface {
	Get(ctx context.Context, noteID string) (*domain.Note, error)
}

type blobStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type ServiceDeps struct {
	AttachmentRepo attachmentStore
	NoteRepo       noteStore
	Blobs          blobStore
}

type service struct {
	repo  attachmentStore
	notes noteStore
	blobs blobStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.AttachmentRepo, notes: deps.NoteRepo, blobs: deps.Blobs}
}

// Upload streams the blob to storage while hashing it, then records the
// metadata row. The object key carries the attachment id so two uploads with
// the same filename never overwrite each other.
func (s *service) Upload(ctx context.Context, noteID, requesterID string, input UploadInput) (*domain.Attachment, error) {
	if _, err := s.ownedNote(ctx, noteID, requesterID); err != nil {
		return nil, err
	}

	safeName := sanitizeFilename(input.Filename)
	attachmentID := id.New()
	key := fmt.Sprintf("attachments/%s/%s/%s", noteID, attachmentID, safeName)

	contentType := input.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	hasher := sha256.New()
	tee := io.TeeReader(input.Reader, hasher)
	if err := s.blobs.Upload(ctx, key, tee, contentType); err != nil {
		return nil, err
	}

	a := &domain.Attachment{
		AttachmentID: attachmentID,
		NoteID:       noteID,
		UserID:       requesterID,
		Name:         safeName,
		Size:         input.Size,
		ContentType:  contentType,
		Object:       key,
		Hash:         hex.EncodeToString(hasher.Sum(nil)),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) List(ctx context.Context, noteID, requesterID string) ([]domain.Attachment, error) {
	if _, err := s.ownedNote(ctx, noteID, requesterID); err != nil {
		return nil, err
	}
	return s.repo.ListByNote(ctx, noteID)
}

// Download returns the blob stream and its metadata. The caller owns the
// returned ReadCloser.
func (s *service) Download(ctx context.Context, attachmentID, requesterID string) (io.ReadCloser, *domain.Attachment, error) {
	a, err := s.ownedAttachment(ctx, attachmentID, requesterID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Download(ctx, a.Object)
	if err != nil {
		return nil, nil, err
	}
	return rc, a, nil
}

func (s *service) Delete(ctx context.Context, attachmentID, requesterID string) error {
	a, err := s.ownedAttachment(ctx, attachmentID, requesterID)
	if err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, a.Object); err != nil {
		return err
	}
	return s.repo.HardDelete(ctx, a.AttachmentID)
}

// DeleteByNote purges every attachment of a note. The caller has already
// authorized the note deletion, so no ownership check happens here. A failed
// blob delete leaves an orphan object and is only logged; a failed row delete
// aborts, since dangling rows would keep resurfacing in listings.
func (s *service) DeleteByNote(ctx context.Context, noteID string) error {
	atts, err := s.repo.ListByNote(ctx, noteID)
	if err != nil {
		return err
	}
	for _, a := range atts {
		if err := s.blobs.Delete(ctx, a.Object); err != nil {
			slog.Warn("failed to delete attachment blob", "attachment_id", a.AttachmentID, "object", a.Object, "err", err)
		}
		if err := s.repo.HardDelete(ctx, a.AttachmentID); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) ownedNote(ctx context.Context, noteID, requesterID string) (*domain.Note, error) {
	n, err := s.notes.Get(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if n.UserID != requesterID {
		return nil, fmt.Errorf("note belongs to another user: %w", domain.ErrForbidden)
	}
	return n, nil
}

func (s *service) ownedAttachment(ctx context.Context, attachmentID, requesterID string) (*domain.Attachment, error) {
	a, err := s.repo.Get(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	if a.UserID != requesterID {
		return nil, fmt.Errorf("attachment belongs to another user: %w", domain.ErrForbidden)
	}
	return a, nil
}

// sanitizeFilename strips directory components and keeps only safe characters
// (alphanumeric, dot, dash, underscore) to prevent path traversal in S3 keys.
func sanitizeFilename(name string) string {
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." && result != ".." {
		return result
	}
	return "_"
}
