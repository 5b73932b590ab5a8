package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/labbook/internal/common"
	"github.com/dmitrijs2005/labbook/internal/logging"
	"github.com/dmitrijs2005/labbook/internal/server/models"
	"github.com/dmitrijs2005/labbook/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/labbook/internal/server/storage"
)

// AvatarMaxSize caps avatar uploads at 2 MiB.
const AvatarMaxSize = 2 << 20

// StoreSelector picks the object store for a given user: the user's own
// S3-compatible storage when enabled, otherwise the server default store
// (which may itself be S3 or local disk).
type StoreSelector struct {
	defaultStore storage.Store
	logger       logging.Logger
}

func NewStoreSelector(defaultStore storage.Store, logger logging.Logger) *StoreSelector {
	return &StoreSelector{defaultStore: defaultStore, logger: logger}
}

// StoreFor returns the store to use for user's files. A user store that
// fails to initialize falls back to the default rather than failing the
// operation.
func (s *StoreSelector) StoreFor(ctx context.Context, user *models.User) storage.Store {
	if user == nil || !user.Storage.Enabled {
		return s.defaultStore
	}
	st, err := storage.NewS3Store(ctx, user.Storage, s.logger)
	if err != nil || st == nil {
		s.logger.Warn(ctx, "user storage unavailable, using default", "user_id", user.ID)
		return s.defaultStore
	}
	return st
}

// AttachmentService stores note attachments and user avatars, choosing the
// backing object store per user.
type AttachmentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	notebook    *NotebookService
	selector    *StoreSelector
}

func NewAttachmentService(db *sql.DB, m repomanager.RepositoryManager, notebook *NotebookService, selector *StoreSelector) *AttachmentService {
	return &AttachmentService{db: db, repomanager: m, notebook: notebook, selector: selector}
}

// Upload stores data as an attachment of the given note.
func (s *AttachmentService) Upload(ctx context.Context, user *models.User, noteID, filename, contentType string, data []byte) (*models.Attachment, error) {
	if _, err := s.notebook.GetNote(ctx, user.ID, noteID); err != nil {
		return nil, err
	}

	store := s.selector.StoreFor(ctx, user)
	url, err := store.Upload(ctx, data, filename, contentType)
	if err != nil {
		return nil, err
	}

	a := &models.Attachment{
		NoteID:      noteID,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		StorageKey:  storage.KeyFromURL(url, ""),
		URL:         url,
	}
	return s.repomanager.Attachments(s.db).Create(ctx, a)
}

// Fetch returns the attachment record and its bytes.
func (s *AttachmentService) Fetch(ctx context.Context, user *models.User, attachmentID string) (*models.Attachment, []byte, error) {
	a, err := s.getOwned(ctx, user, attachmentID)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.selector.StoreFor(ctx, user).Fetch(ctx, a.URL)
	if err != nil {
		return nil, nil, err
	}
	return a, data, nil
}

// Delete removes the attachment's object and row. The boolean mirrors the
// store's delete result; the metadata row is removed regardless so a missing
// object cannot wedge the record.
func (s *AttachmentService) Delete(ctx context.Context, user *models.User, attachmentID string) (bool, error) {
	a, err := s.getOwned(ctx, user, attachmentID)
	if err != nil {
		return false, err
	}

	deleted := s.selector.StoreFor(ctx, user).Delete(ctx, a.URL)
	if err := s.repomanager.Attachments(s.db).Delete(ctx, attachmentID); err != nil {
		return deleted, err
	}
	return deleted, nil
}

// List returns the attachments of a note.
func (s *AttachmentService) List(ctx context.Context, user *models.User, noteID string) ([]*models.Attachment, error) {
	if _, err := s.notebook.GetNote(ctx, user.ID, noteID); err != nil {
		return nil, err
	}
	return s.repomanager.Attachments(s.db).ListByNote(ctx, noteID)
}

// UploadAvatar validates and stores a user avatar and records its URL on the
// user row. Only image payloads up to AvatarMaxSize are accepted.
func (s *AttachmentService) UploadAvatar(ctx context.Context, user *models.User, filename, contentType string, data []byte) (string, error) {
	if len(data) > AvatarMaxSize {
		return "", fmt.Errorf("%w: avatar exceeds 2MB limit", common.ErrValidation)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: avatar must be an image", common.ErrValidation)
	}

	store := s.selector.StoreFor(ctx, user)
	url, err := store.Upload(ctx, data, filename, contentType)
	if err != nil {
		return "", err
	}

	if err := s.repomanager.Users(s.db).UpdateAvatarURL(ctx, user.ID, url); err != nil {
		return "", err
	}
	return url, nil
}

func (s *AttachmentService) getOwned(ctx context.Context, user *models.User, attachmentID string) (*models.Attachment, error) {
	a, err := s.repomanager.Attachments(s.db).GetByID(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.notebook.GetNote(ctx, user.ID, a.NoteID); err != nil {
		return nil, err
	}
	return a, nil
}
