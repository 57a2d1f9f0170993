package repomanager

import (
	"context"
	"database/sql"

	"github.com/learning-journal/journal/internal/dbx"
	"github.com/learning-journal/journal/internal/server/repositories/entries"
	"github.com/learning-journal/journal/internal/server/repositories/sessions"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Entries(db dbx.DBTX) entries.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
