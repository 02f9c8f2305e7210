package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"seoscout/internal/models"
)

// CreateConversation starts a conversation under a project.
func (d *DB) CreateConversation(ctx context.Context, c *models.Conversation) error {
	query := `
		INSERT INTO conversations (project_id, title)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	err := d.Pool.QueryRow(ctx, query, c.ProjectID, c.Title).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrProjectNotFound
		}
		return err
	}
	return nil
}

// GetConversation returns a conversation by ID.
func (d *DB) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	query := `SELECT id, project_id, title, created_at, updated_at FROM conversations WHERE id = $1`
	var c models.Conversation
	err := d.Pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.ProjectID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// TouchConversation bumps updated_at, marking the conversation active.
func (d *DB) TouchConversation(ctx context.Context, id uuid.UUID) error {
	_, err := d.Pool.Exec(ctx, `UPDATE conversations SET updated_at = NOW() WHERE id = $1`, id)
	return err
}

// IncrementProviderCall upserts a provider lookup outcome counter.
func (d *DB) IncrementProviderCall(ctx context.Context, seed, outcome string) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO provider_calls (seed, outcome, count, last_seen_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (seed, outcome) DO UPDATE
		SET count = provider_calls.count + 1, last_seen_at = NOW()
	`, seed, outcome)
	return err
}

// GetAllProviderCalls returns all provider call rows for metrics export.
func (d *DB) GetAllProviderCalls(ctx context.Context) ([]models.ProviderCall, error) {
	rows, err := d.Pool.Query(ctx, `SELECT seed, outcome, count, last_seen_at FROM provider_calls`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []models.ProviderCall
	for rows.Next() {
		var c models.ProviderCall
		if err := rows.Scan(&c.Seed, &c.Outcome, &c.Count, &c.LastSeenAt); err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
	return calls, rows.Err()
}
