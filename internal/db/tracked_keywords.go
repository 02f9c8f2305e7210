package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"seoscout/internal/models"
)

// TrackKeyword adds a keyword to a project's tracked set. Duplicates are
// detected on the normalized (lowercased, trimmed) text per project.
func (d *DB) TrackKeyword(ctx context.Context, projectID uuid.UUID, keyword string) (*models.TrackedKeyword, error) {
	query := `
		INSERT INTO tracked_keywords (project_id, keyword)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	tk := &models.TrackedKeyword{ProjectID: projectID, Keyword: keyword}
	err := d.Pool.QueryRow(ctx, query, projectID, keyword).Scan(&tk.ID, &tk.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, ErrDuplicateKeyword
			case "23503":
				return nil, ErrProjectNotFound
			}
		}
		return nil, err
	}
	return tk, nil
}

// ListTrackedKeywords returns a project's tracked keywords, oldest first.
func (d *DB) ListTrackedKeywords(ctx context.Context, projectID uuid.UUID) ([]models.TrackedKeyword, error) {
	query := `
		SELECT id, project_id, keyword, created_at
		FROM tracked_keywords
		WHERE project_id = $1
		ORDER BY created_at ASC
	`
	rows, err := d.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keywords []models.TrackedKeyword
	for rows.Next() {
		var tk models.TrackedKeyword
		if err := rows.Scan(&tk.ID, &tk.ProjectID, &tk.Keyword, &tk.CreatedAt); err != nil {
			return nil, err
		}
		keywords = append(keywords, tk)
	}
	return keywords, rows.Err()
}

// TrackedKeywordTexts returns just the keyword texts for a project. This is
// the read the research pipeline performs at the start of every request.
func (d *DB) TrackedKeywordTexts(ctx context.Context, projectID uuid.UUID) ([]string, error) {
	query := `SELECT keyword FROM tracked_keywords WHERE project_id = $1 ORDER BY created_at ASC`
	rows, err := d.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		texts = append(texts, k)
	}
	return texts, rows.Err()
}

// UntrackKeyword removes a tracked keyword by its normalized text.
func (d *DB) UntrackKeyword(ctx context.Context, projectID uuid.UUID, keyword string) error {
	query := `
		DELETE FROM tracked_keywords
		WHERE project_id = $1 AND lower(btrim(keyword)) = lower(btrim($2))
	`
	tag, err := d.Pool.Exec(ctx, query, projectID, keyword)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrKeywordNotFound
	}
	return nil
}
