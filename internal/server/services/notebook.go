package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/labbook/internal/common"
	"github.com/dmitrijs2005/labbook/internal/server/models"
	"github.com/dmitrijs2005/labbook/internal/server/repositories/repomanager"
)

// NotebookService implements the project → experiment → note hierarchy.
// Every operation is scoped to the requesting user: records belonging to
// another owner resolve to common.ErrNotFound rather than ErrForbidden, so
// the API does not reveal which ids exist.
type NotebookService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewNotebookService(db *sql.DB, m repomanager.RepositoryManager) *NotebookService {
	return &NotebookService{db: db, repomanager: m}
}

func (s *NotebookService) CreateProject(ctx context.Context, userID, title, description string) (*models.Project, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrValidation)
	}
	p := &models.Project{OwnerID: userID, Title: title, Description: description}
	return s.repomanager.Projects(s.db).Create(ctx, p)
}

func (s *NotebookService) ListProjects(ctx context.Context, userID string) ([]*models.Project, error) {
	return s.repomanager.Projects(s.db).ListByOwner(ctx, userID)
}

// GetProject returns the project if it exists and belongs to userID.
func (s *NotebookService) GetProject(ctx context.Context, userID, projectID string) (*models.Project, error) {
	p, err := s.repomanager.Projects(s.db).GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != userID {
		return nil, common.ErrNotFound
	}
	return p, nil
}

func (s *NotebookService) UpdateProject(ctx context.Context, userID string, p *models.Project) (*models.Project, error) {
	if _, err := s.GetProject(ctx, userID, p.ID); err != nil {
		return nil, err
	}
	if err := s.repomanager.Projects(s.db).Update(ctx, p); err != nil {
		return nil, err
	}
	return s.repomanager.Projects(s.db).GetByID(ctx, p.ID)
}

func (s *NotebookService) DeleteProject(ctx context.Context, userID, projectID string) error {
	if _, err := s.GetProject(ctx, userID, projectID); err != nil {
		return err
	}
	return s.repomanager.Projects(s.db).Delete(ctx, projectID)
}

func (s *NotebookService) CreateExperiment(ctx context.Context, userID, projectID, title, status string) (*models.Experiment, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrValidation)
	}
	if _, err := s.GetProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	if status == "" {
		status = "planned"
	}
	e := &models.Experiment{ProjectID: projectID, Title: title, Status: status}
	return s.repomanager.Experiments(s.db).Create(ctx, e)
}

func (s *NotebookService) ListExperiments(ctx context.Context, userID, projectID string) ([]*models.Experiment, error) {
	if _, err := s.GetProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.repomanager.Experiments(s.db).ListByProject(ctx, projectID)
}

// GetExperiment returns the experiment if its project belongs to userID.
func (s *NotebookService) GetExperiment(ctx context.Context, userID, experimentID string) (*models.Experiment, error) {
	e, err := s.repomanager.Experiments(s.db).GetByID(ctx, experimentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetProject(ctx, userID, e.ProjectID); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *NotebookService) UpdateExperiment(ctx context.Context, userID string, e *models.Experiment) (*models.Experiment, error) {
	if _, err := s.GetExperiment(ctx, userID, e.ID); err != nil {
		return nil, err
	}
	if err := s.repomanager.Experiments(s.db).Update(ctx, e); err != nil {
		return nil, err
	}
	return s.repomanager.Experiments(s.db).GetByID(ctx, e.ID)
}

func (s *NotebookService) DeleteExperiment(ctx context.Context, userID, experimentID string) error {
	if _, err := s.GetExperiment(ctx, userID, experimentID); err != nil {
		return err
	}
	return s.repomanager.Experiments(s.db).Delete(ctx, experimentID)
}

func (s *NotebookService) CreateNote(ctx context.Context, userID, experimentID, title, body string) (*models.Note, error) {
	if _, err := s.GetExperiment(ctx, userID, experimentID); err != nil {
		return nil, err
	}
	n := &models.Note{ExperimentID: experimentID, Title: title, Body: body}
	return s.repomanager.Notes(s.db).Create(ctx, n)
}

func (s *NotebookService) ListNotes(ctx context.Context, userID, experimentID string) ([]*models.Note, error) {
	if _, err := s.GetExperiment(ctx, userID, experimentID); err != nil {
		return nil, err
	}
	return s.repomanager.Notes(s.db).ListByExperiment(ctx, experimentID)
}

// CreateProjectNote attaches a note directly to a project, outside any
// experiment.
func (s *NotebookService) CreateProjectNote(ctx context.Context, userID, projectID, title, body string) (*models.Note, error) {
	if _, err := s.GetProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	n := &models.Note{ProjectID: projectID, Title: title, Body: body}
	return s.repomanager.Notes(s.db).Create(ctx, n)
}

func (s *NotebookService) ListProjectNotes(ctx context.Context, userID, projectID string) ([]*models.Note, error) {
	if _, err := s.GetProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.repomanager.Notes(s.db).ListByProject(ctx, projectID)
}

// GetNote returns the note if its parent, experiment or project, belongs to
// userID.
func (s *NotebookService) GetNote(ctx context.Context, userID, noteID string) (*models.Note, error) {
	n, err := s.repomanager.Notes(s.db).GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if n.ExperimentID != "" {
		if _, err := s.GetExperiment(ctx, userID, n.ExperimentID); err != nil {
			return nil, err
		}
		return n, nil
	}
	if _, err := s.GetProject(ctx, userID, n.ProjectID); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NotebookService) UpdateNote(ctx context.Context, userID string, n *models.Note) (*models.Note, error) {
	if _, err := s.GetNote(ctx, userID, n.ID); err != nil {
		return nil, err
	}
	if err := s.repomanager.Notes(s.db).Update(ctx, n); err != nil {
		return nil, err
	}
	return s.repomanager.Notes(s.db).GetByID(ctx, n.ID)
}

func (s *NotebookService) DeleteNote(ctx context.Context, userID, noteID string) error {
	if _, err := s.GetNote(ctx, userID, noteID); err != nil {
		return err
	}
	return s.repomanager.Notes(s.db).Delete(ctx, noteID)
}
