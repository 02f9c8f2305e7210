package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"seoscout/internal/models"
)

const projectColumns = `id, name, domain, created_at, updated_at`

// scanProject scans a row into a Project struct.
func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.Name, &p.Domain, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject inserts a new project and fills the generated fields.
func (d *DB) CreateProject(ctx context.Context, p *models.Project) error {
	query := `
		INSERT INTO projects (name, domain)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	return d.Pool.QueryRow(ctx, query, p.Name, p.Domain).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// GetProject returns a project by ID.
func (d *DB) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	return scanProject(d.Pool.QueryRow(ctx, query, id))
}

// ListProjects returns all projects, newest first.
func (d *DB) ListProjects(ctx context.Context) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Domain, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// DeleteProject removes a project and, via cascade, its tracked keywords and
// conversations.
func (d *DB) DeleteProject(ctx context.Context, id uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}
