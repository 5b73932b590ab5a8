package notes

import (
	"context"

	"github.com/dmitrijs2005/labbook/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, n *models.Note) (*models.Note, error)
	GetByID(ctx context.Context, id string) (*models.Note, error)
	ListByExperiment(ctx context.Context, experimentID string) ([]*models.Note, error)
	ListByProject(ctx context.Context, projectID string) ([]*models.Note, error)
	Update(ctx context.Context, n *models.Note) error
	Delete(ctx context.Context, id string) error
}
