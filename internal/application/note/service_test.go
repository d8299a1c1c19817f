package note

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/notes-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockNoteStore struct{ mock.Mock }

func (m *mockNoteStore) Put(ctx context.Context, n *domain.Note) error {
	return m.Called(ctx, n).Error(0)
}
func (m *mockNoteStore) Get(ctx context.Context, noteID string) (*domain.Note, error) {
	args := m.Called(ctx, noteID)
	if n, _ := args.Get(0).(*domain.Note); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockNoteStore) ListByUser(ctx context.Context, userID string) ([]domain.Note, error) {
	args := m.Called(ctx, userID)
	if ns, _ := args.Get(0).([]domain.Note); ns != nil {
		return ns, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockNoteStore) Update(ctx context.Context, noteID string, updates map[string]interface{}) error {
	return m.Called(ctx, noteID, updates).Error(0)
}
func (m *mockNoteStore) HardDelete(ctx context.Context, noteID string) error {
	return m.Called(ctx, noteID).Error(0)
}

type mockAttachmentPurger struct{ mock.Mock }

func (m *mockAttachmentPurger) DeleteByNote(ctx context.Context, noteID string) error {
	return m.Called(ctx, noteID).Error(0)
}

func newService(ns *mockNoteStore, ap *mockAttachmentPurger) Service {
	return NewService(ServiceDeps{NoteRepo: ns, Attachments: ap})
}

func strPtr(s string) *string { return &s }

// --- Create ---

func TestCreate_HappyPath(t *testing.T) {
	ns := &mockNoteStore{}
	ns.On("Put", mock.Anything, mock.MatchedBy(func(n *domain.Note) bool {
		return n.NoteID != "" && n.UserID == "u1" && n.Title == "Groceries" &&
			n.Content == "milk, eggs" && !n.CreatedAt.IsZero() && n.CreatedAt.Equal(n.UpdatedAt)
	})).Return(nil)

	svc := newService(ns, nil)
	n, err := svc.Create(context.Background(), "u1", domain.CreateNoteRequest{
		Title:   "Groceries",
		Content: "milk, eggs",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, n.NoteID)
	assert.Equal(t, "u1", n.UserID)
	ns.AssertExpectations(t)
}

func TestCreate_StoreFailure(t *testing.T) {
	ns := &mockNoteStore{}
	ns.On("Put", mock.Anything, mock.Anything).
		Return(fmt.Errorf("dynamo put: %w", domain.ErrStoreUnavailable))

	svc := newService(ns, nil)
	_, err := svc.Create(context.Background(), "u1", domain.CreateNoteRequest{Title: "x"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
}

// --- Get ---

func TestGet_HappyPath(t *testing.T) {
	ns := &mockNoteStore{}
	stored := &domain.Note{NoteID: "n1", UserID: "u1", Title: "Groceries"}
	ns.On("Get", mock.Anything, "n1").Return(stored, nil)

	svc := newService(ns, nil)
	n, err := svc.Get(context.Background(), "n1", "u1")

	require.NoError(t, err)
	assert.Equal(t, stored, n)
}

func TestGet_NotFound(t *testing.T) {
	ns := &mockNoteStore{}
	ns.On("Get", mock.Anything, "ghost").
		Return(nil, fmt.Errorf("note not found: %w", domain.ErrNotFound))

	svc := newService(ns, nil)
	_, err := svc.Get(context.Background(), "ghost", "u1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGet_OtherUsersNote(t *testing.T) {
	ns := &mockNoteStore{}
	ns.On("Get", mock.Anything, "n1").Return(&domain.Note{NoteID: "n1", UserID: "owner"}, nil)

	svc := newService(ns, nil)
	_, err := svc.Get(context.Background(), "n1", "intruder")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

// --- List ---

func TestList_ReturnsOwnNotes(t *testing.T) {
	ns := &mockNoteStore{}
	notes := []domain.Note{
		{NoteID: "n2", UserID: "u1", UpdatedAt: time.Now()},
		{NoteID: "n1", UserID: "u1", UpdatedAt: time.Now().Add(-time.Hour)},
	}
	ns.On("ListByUser", mock.Anything, "u1").Return(notes, nil)

	svc := newService(ns, nil)
	got, err := svc.List(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, notes, got)
}

// --- Update ---

func TestUpdate_TitleOnly(t *testing.T) {
	ns := &mockNoteStore{}
	ns.On("Get", mock.Anything, "n1").
		Return(&domain.Note{NoteID: "n1", UserID: "u1", Title: "Old", Content: "body"}, nil).Once()
	ns.On("Update", mock.Anything, "n1", map[string]interface{}{fieldTitle: "New"}).Return(nil)
	ns.On("Get", mock.Anything, "n1").
		Return(&domain.Note{NoteID: "n1", UserID: "u1", Title: "New", Content: "body"}, nil).Once()

	svc := newService(ns, nil)
	n, err := svc.Update(context.Background(), "n1", "u1", domain.UpdateNoteRequest{Title: strPtr("New")})

	require.NoError(t, err)
	assert.Equal(t, "New", n.Title)
	assert.Equal(t, "body", n.Content)
	ns.AssertExpectations(t)
}

func TestUpdate_BothFields(t *testing.T) {
	ns := &mockNoteStore{}
	ns.On("Get", mock.Anything, "n1").
		Return(&domain.Note{NoteID: "n1", UserID: "u1"}, nil).Once()
	ns.On("Update", mock.Anything, "n1", map[string]interface{}{
		fieldTitle:   "New",
		fieldContent: "rewritten",
	}).Return(nil)
	ns.On("Get", mock.Anything, "n1").
		Return(&domain.Note{NoteID: "n1", UserID: "u1", Title: "New", Content: "rewritten"}, nil).Once()

	svc := newService(ns, nil)
	n, err := svc.Update(context.Background(), "n1", "u1", domain.UpdateNoteRequest{
		Title:   strPtr("New"),
		Content: strPtr("rewritten"),
	})

	require.NoError(t, err)
	assert.Equal(t, "rewritten", n.Content)
	ns.AssertExpectations(t)
}

func TestUpdate_EmptyRequestWritesNothing(t *testing.T) {
	ns := &mockNoteStore{}
	stored := &domain.Note{NoteID: "n1", UserID: "u1", Title: "Old"}
	ns.On("Get", mock.Anything, "n1").Return(stored, nil)

	svc := newService(ns, nil)
	n, err := svc.Update(context.Background(), "n1", "u1", domain.UpdateNoteRequest{})

	require.NoError(t, err)
	assert.Equal(t, stored, n)
	ns.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_OtherUsersNote(t *testing.T) {
	ns := &mockNoteStore{}
	ns.On("Get", mock.Anything, "n1").Return(&domain.Note{NoteID: "n1", UserID: "owner"}, nil)

	svc := newService(ns, nil)
	_, err := svc.Update(context.Background(), "n1", "intruder", domain.UpdateNoteRequest{Title: strPtr("x")})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	ns.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

// --- Delete ---

func TestDelete_PurgesAttachmentsFirst(t *testing.T) {
	ns := &mockNoteStore{}
	ap := &mockAttachmentPurger{}
	ns.On("Get", mock.Anything, "n1").Return(&domain.Note{NoteID: "n1", UserID: "u1"}, nil)
	ap.On("DeleteByNote", mock.Anything, "n1").Return(nil)
	ns.On("HardDelete", mock.Anything, "n1").Return(nil)

	svc := newService(ns, ap)
	err := svc.Delete(context.Background(), "n1", "u1")

	require.NoError(t, err)
	ap.AssertExpectations(t)
	ns.AssertExpectations(t)
}

func TestDelete_PurgeFailureKeepsNote(t *testing.T) {
	ns := &mockNoteStore{}
	ap := &mockAttachmentPurger{}
	ns.On("Get", mock.Anything, "n1").Return(&domain.Note{NoteID: "n1", UserID: "u1"}, nil)
	ap.On("DeleteByNote", mock.Anything, "n1").
		Return(fmt.Errorf("dynamo delete: %w", domain.ErrStoreUnavailable))

	svc := newService(ns, ap)
	err := svc.Delete(context.Background(), "n1", "u1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	ns.AssertNotCalled(t, "HardDelete", mock.Anything, mock.Anything)
}

func TestDelete_OtherUsersNote(t *testing.T) {
	ns := &mockNoteStore{}
	ap := &mockAttachmentPurger{}
	ns.On("Get", mock.Anything, "n1").Return(&domain.Note{NoteID: "n1", UserID: "owner"}, nil)

	svc := newService(ns, ap)
	err := svc.Delete(context.Background(), "n1", "intruder")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	ap.AssertNotCalled(t, "DeleteByNote", mock.Anything, mock.Anything)
}
