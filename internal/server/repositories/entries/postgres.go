// Package entries provides the PostgreSQL-backed repository for journal
// entries.
package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/learning-journal/journal/internal/common"
	"github.com/learning-journal/journal/internal/dbx"
	"github.com/learning-journal/journal/internal/server/models"
)

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new entry and fills in the database-assigned ID and
// Created timestamp.
func (r *PostgresRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	query := `
		INSERT INTO entries (title, body_text)
		VALUES ($1, $2)
		RETURNING id, created
	`
	err := r.db.QueryRowContext(ctx, query, entry.Title, entry.BodyText).Scan(&entry.ID, &entry.Created)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

// List returns all entries, newest first. Entries created in the same
// instant are ordered by descending id.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Entry, error) {
	query := `
		SELECT id, title, body_text, created FROM entries
		ORDER BY created DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Entry, 0)
	for rows.Next() {
		var item models.Entry
		if err := rows.Scan(&item.ID, &item.Title, &item.BodyText, &item.Created); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID returns the entry with the given id or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Entry, error) {
	query := `
		SELECT id, title, body_text, created FROM entries
		WHERE id = $1
	`
	entry := &models.Entry{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&entry.ID, &entry.Title, &entry.BodyText, &entry.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

// Update overwrites title and body of an existing entry. ID and Created are
// left untouched; Created is read back into entry. A missing row yields
// common.ErrorNotFound.
func (r *PostgresRepository) Update(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	query := `
		UPDATE entries SET title = $1, body_text = $2
		WHERE id = $3
		RETURNING created
	`
	err := r.db.QueryRowContext(ctx, query, entry.Title, entry.BodyText, entry.ID).Scan(&entry.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}
