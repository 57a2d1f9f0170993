package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_EmbeddedInOrder(t *testing.T) {
	names, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_create_entries.sql", "00002_create_sessions.sql"}, names)

	for _, name := range names {
		b, err := fs.ReadFile(Migrations, name)
		require.NoError(t, err)
		body := string(b)
		assert.True(t, strings.Contains(body, "-- +goose Up"), "%s lacks Up section", name)
		assert.True(t, strings.Contains(body, "-- +goose Down"), "%s lacks Down section", name)
	}
}

// entries.id is scanned into int64 and taken from the URL as int64, so the
// column must be 64-bit too or large ids fail to encode instead of missing.
func TestMigrations_EntryIDIs64Bit(t *testing.T) {
	b, err := fs.ReadFile(Migrations, "00001_create_entries.sql")
	require.NoError(t, err)
	assert.Contains(t, string(b), "id        BIGSERIAL PRIMARY KEY")
}
