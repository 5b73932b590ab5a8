package experiments

import (
	"context"

	"github.com/dmitrijs2005/labbook/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, e *models.Experiment) (*models.Experiment, error)
	GetByID(ctx context.Context, id string) (*models.Experiment, error)
	ListByProject(ctx context.Context, projectID string) ([]*models.Experiment, error)
	Update(ctx context.Context, e *models.Experiment) error
	Delete(ctx context.Context, id string) error
}
