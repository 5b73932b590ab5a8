package attachments

import (
	"context"

	"github.com/dmitrijs2005/labbook/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error)
	GetByID(ctx context.Context, id string) (*models.Attachment, error)
	ListByNote(ctx context.Context, noteID string) ([]*models.Attachment, error)
	Delete(ctx context.Context, id string) error
}
