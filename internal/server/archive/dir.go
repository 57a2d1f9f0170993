package archive

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/learning-journal/journal/internal/filex"
	"github.com/learning-journal/journal/internal/server/models"
)

// ExportDir writes one <id>.md document per entry into dir, creating it if
// needed. The output can be read back with ImportDir.
func ExportDir(ctx context.Context, dir string, entries []*models.Entry) (int, error) {
	root, err := filex.EnsureDir(dir)
	if err != nil {
		return 0, err
	}

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		doc, err := Encode(entry)
		if err != nil {
			return i, err
		}
		path := filepath.Join(root, fmt.Sprintf("%d.md", entry.ID))
		if err := filex.WriteFileAtomic(path, doc, 0o640); err != nil {
			return i, err
		}
	}
	return len(entries), nil
}
