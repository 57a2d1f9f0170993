package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/learning-journal/journal/internal/common"
	"github.com/learning-journal/journal/internal/logging"
	"github.com/learning-journal/journal/internal/server/models"
)

var ErrTitleMissing = errors.New("front matter title is required")

// EntryCreator stores a new entry; services.EntryService satisfies it.
type EntryCreator interface {
	Create(ctx context.Context, title, body string) (*models.Entry, error)
}

// SkippedFile is a document that could not be imported.
type SkippedFile struct {
	Path   string
	Reason error
}

type ImportResult struct {
	Imported []*models.Entry
	Skipped  []SkippedFile
}

// ImportDir creates an entry for every *.md file at the top level of fsys,
// in name order. Files that fail to parse or validate are reported in
// Skipped; any other error aborts the import.
func ImportDir(ctx context.Context, fsys fs.FS, creator EntryCreator, l logging.Logger) (*ImportResult, error) {
	paths, err := fs.Glob(fsys, "*.md")
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	res := &ImportResult{}
	for _, path := range paths {
		src, err := fs.ReadFile(fsys, path)
		if err != nil {
			return res, fmt.Errorf("read %s: %w", path, err)
		}

		doc, err := Decode(src)
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedFile{Path: path, Reason: err})
			continue
		}
		if doc.Title == "" {
			res.Skipped = append(res.Skipped, SkippedFile{Path: path, Reason: ErrTitleMissing})
			continue
		}

		entry, err := creator.Create(ctx, doc.Title, doc.Body)
		if err != nil {
			if errors.Is(err, common.ErrorValidation) {
				res.Skipped = append(res.Skipped, SkippedFile{Path: path, Reason: err})
				continue
			}
			return res, fmt.Errorf("import %s: %w", path, err)
		}

		l.Debug(ctx, "imported document", "path", path, "id", entry.ID)
		res.Imported = append(res.Imported, entry)
	}

	for _, s := range res.Skipped {
		l.Warn(ctx, "skipped document", "path", s.Path, "reason", s.Reason)
	}
	return res, nil
}
