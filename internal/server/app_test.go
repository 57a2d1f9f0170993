package server

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learning-journal/journal/internal/dbx"
	"github.com/learning-journal/journal/internal/logging"
	"github.com/learning-journal/journal/internal/server/config"
	"github.com/learning-journal/journal/internal/server/repositories/entries"
	"github.com/learning-journal/journal/internal/server/repositories/repomanager"
	"github.com/learning-journal/journal/internal/server/repositories/sessions"
)

type fakeManager struct {
	migrated bool
	err      error
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error {
	m.migrated = true
	return m.err
}
func (m *fakeManager) Entries(db dbx.DBTX) entries.Repository   { return entries.NewPostgresRepository(db) }
func (m *fakeManager) Sessions(db dbx.DBTX) sessions.Repository { return sessions.NewPostgresRepository(db) }

func stubDeps(t *testing.T, m *fakeManager, openErr error) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	origOpen, origManager := openDB, newRepoManager
	t.Cleanup(func() { openDB, newRepoManager = origOpen, origManager })

	openDB = func(context.Context, string) (*sql.DB, error) {
		if openErr != nil {
			return nil, openErr
		}
		return db, nil
	}
	newRepoManager = func() repomanager.RepositoryManager { return m }
	return mock
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	c.EndpointAddrHTTP = l.Addr().String()
	require.NoError(t, l.Close())
	return c
}

type warnRecorder struct {
	logging.NopLogger
	warnings []string
}

func (r *warnRecorder) Warn(_ context.Context, msg string, _ ...any) {
	r.warnings = append(r.warnings, msg)
}

func (r *warnRecorder) With(...any) logging.Logger { return r }

func warnedAbout(warnings []string, key string) bool {
	for _, w := range warnings {
		if strings.HasPrefix(w, key) {
			return true
		}
	}
	return false
}

func TestNewApp_StartupWarnings(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		hash       string
		wantSecret bool
		wantHash   bool
	}{
		{name: "defaults", secret: config.DefaultSecretKey, wantSecret: true, wantHash: true},
		{name: "custom secret without hash", secret: "b7c1e0f2a9", wantHash: true},
		{name: "default secret with hash", secret: config.DefaultSecretKey, hash: "$2a$10$abcdefghijklmnopqrstuv", wantSecret: true},
		{name: "configured", secret: "b7c1e0f2a9", hash: "$2a$10$abcdefghijklmnopqrstuv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubDeps(t, &fakeManager{}, nil)
			c := testConfig(t)
			c.SecretKey = tt.secret
			c.AuthPasswordHash = tt.hash

			rec := &warnRecorder{}
			_, err := NewApp(context.Background(), c, rec)
			require.NoError(t, err)

			assert.Equal(t, tt.wantSecret, warnedAbout(rec.warnings, "secret_key"), rec.warnings)
			assert.Equal(t, tt.wantHash, warnedAbout(rec.warnings, "auth_password_hash"), rec.warnings)
		})
	}
}

func TestNewApp_OpenError(t *testing.T) {
	stubDeps(t, &fakeManager{}, errors.New("refused"))

	_, err := NewApp(context.Background(), testConfig(t), logging.NopLogger{})
	assert.ErrorContains(t, err, "db init error: refused")
}

func TestNewApp_MigrationError(t *testing.T) {
	mock := stubDeps(t, &fakeManager{err: errors.New("dirty")}, nil)
	mock.ExpectClose()

	_, err := NewApp(context.Background(), testConfig(t), logging.NopLogger{})
	assert.ErrorContains(t, err, "migrations error: dirty")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	m := &fakeManager{}
	mock := stubDeps(t, m, nil)
	mock.ExpectClose()

	app, err := NewApp(context.Background(), testConfig(t), logging.NopLogger{})
	require.NoError(t, err)
	assert.True(t, m.migrated)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
