// Package services contains server-side business logic: the entry CRUD
// operations behind the web handlers and the author login.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/learning-journal/journal/internal/common"
	"github.com/learning-journal/journal/internal/server/models"
	"github.com/learning-journal/journal/internal/server/repositories/repomanager"
)

// EntryService lists, reads, creates and edits journal entries.
type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewEntryService constructs an EntryService over the given database.
func NewEntryService(db *sql.DB, m repomanager.RepositoryManager) *EntryService {
	return &EntryService{
		db:          db,
		repomanager: m,
	}
}

// List returns all entries, newest first.
func (s *EntryService) List(ctx context.Context) ([]*models.Entry, error) {
	entries, err := s.repomanager.Entries(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing entries: %w", err)
	}
	return entries, nil
}

// Get returns a single entry or an error wrapping common.ErrorNotFound.
func (s *EntryService) Get(ctx context.Context, id int64) (*models.Entry, error) {
	if id <= 0 {
		return nil, common.ErrorNotFound
	}
	entry, err := s.repomanager.Entries(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting entry %d: %w", id, err)
	}
	return entry, nil
}

// Create validates and stores a new entry. Empty title or body yields an
// error wrapping common.ErrorValidation.
func (s *EntryService) Create(ctx context.Context, title, body string) (*models.Entry, error) {
	entry := &models.Entry{Title: normalizeTitle(title), BodyText: normalizeBody(body)}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}

	created, err := s.repomanager.Entries(s.db).Create(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("error creating entry: %w", err)
	}
	return created, nil
}

// Update overwrites title and body of entry id. The id and creation time
// never change.
func (s *EntryService) Update(ctx context.Context, id int64, title, body string) (*models.Entry, error) {
	if id <= 0 {
		return nil, common.ErrorNotFound
	}
	entry := &models.Entry{ID: id, Title: normalizeTitle(title), BodyText: normalizeBody(body)}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}

	updated, err := s.repomanager.Entries(s.db).Update(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("error updating entry %d: %w", id, err)
	}
	return updated, nil
}

func normalizeTitle(title string) string {
	return strings.TrimSpace(title)
}

// normalizeBody unifies line endings and drops trailing whitespace of any
// kind, so a whitespace-only body becomes empty. Leading spaces on the first
// line are kept, they are significant in markdown.
func normalizeBody(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.TrimRightFunc(body, unicode.IsSpace)
	return strings.TrimLeft(body, "\n")
}
