// Package notes provides a PostgreSQL-backed repository for notebook notes.
// A note references either an experiment or a project, never both; the
// unset side is stored as NULL and surfaces as an empty string on the model.
package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/labbook/internal/common"
	"github.com/dmitrijs2005/labbook/internal/dbx"
	"github.com/dmitrijs2005/labbook/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// nullable maps an empty string to NULL for the optional parent columns.
func nullable(id string) any {
	if id == "" {
		return nil
	}
	return id
}

func scanNote(row interface{ Scan(...any) error }) (*models.Note, error) {
	n := &models.Note{}
	var experimentID, projectID sql.NullString
	err := row.Scan(&n.ID, &experimentID, &projectID, &n.Title, &n.Body, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	n.ExperimentID = experimentID.String
	n.ProjectID = projectID.String
	return n, nil
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Note) (*models.Note, error) {
	query := `
		INSERT INTO notes (experiment_id, project_id, title, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, nullable(n.ExperimentID), nullable(n.ProjectID), n.Title, n.Body).
		Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	query := `
		SELECT id, experiment_id, project_id, title, body, created_at, updated_at
		FROM notes
		WHERE id = $1
	`
	n, err := scanNote(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) ListByExperiment(ctx context.Context, experimentID string) ([]*models.Note, error) {
	query := `
		SELECT id, experiment_id, project_id, title, body, created_at, updated_at
		FROM notes
		WHERE experiment_id = $1
		ORDER BY created_at
	`
	return r.list(ctx, query, experimentID)
}

func (r *PostgresRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Note, error) {
	query := `
		SELECT id, experiment_id, project_id, title, body, created_at, updated_at
		FROM notes
		WHERE project_id = $1
		ORDER BY created_at
	`
	return r.list(ctx, query, projectID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, parentID string) ([]*models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, n *models.Note) error {
	query := `
		UPDATE notes SET title = $2, body = $3, updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, n.ID, n.Title, n.Body)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
