package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/learning-journal/journal/internal/common"
	"github.com/learning-journal/journal/internal/dbx"
	"github.com/learning-journal/journal/internal/server/models"
	"github.com/learning-journal/journal/internal/server/repositories/entries"
	"github.com/learning-journal/journal/internal/server/repositories/sessions"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeEntriesRepo struct {
	rows   map[int64]*models.Entry
	nextID int64

	listErr   error
	createErr error
	updateErr error

	created []*models.Entry
	updated []*models.Entry
}

func newFakeEntriesRepo() *fakeEntriesRepo {
	return &fakeEntriesRepo{rows: map[int64]*models.Entry{}, nextID: 1}
}

func (f *fakeEntriesRepo) Create(_ context.Context, e *models.Entry) (*models.Entry, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := *e
	out.ID = f.nextID
	out.Created = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.nextID) * time.Hour)
	f.nextID++
	f.rows[out.ID] = &out
	f.created = append(f.created, &out)
	return &out, nil
}

func (f *fakeEntriesRepo) List(context.Context) ([]*models.Entry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*models.Entry, 0, len(f.rows))
	for id := f.nextID - 1; id > 0; id-- {
		if e, ok := f.rows[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEntriesRepo) GetByID(_ context.Context, id int64) (*models.Entry, error) {
	e, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return e, nil
}

func (f *fakeEntriesRepo) Update(_ context.Context, e *models.Entry) (*models.Entry, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	cur, ok := f.rows[e.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cur.Title = e.Title
	cur.BodyText = e.BodyText
	f.updated = append(f.updated, cur)
	return cur, nil
}

type fakeSessionsRepo struct {
	rows map[string]*models.Session

	createErr        error
	findErr          error
	deleteErr        error
	deleteExpiredErr error

	deleteExpiredCalls int
	deleted            []string
}

func newFakeSessionsRepo() *fakeSessionsRepo {
	return &fakeSessionsRepo{rows: map[string]*models.Session{}}
}

func (f *fakeSessionsRepo) Create(_ context.Context, token, username string, validity time.Duration) (*models.Session, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	now := time.Now().UTC()
	s := &models.Session{Token: token, Username: username, Expires: now.Add(validity), CreatedAt: now}
	f.rows[token] = s
	return s, nil
}

func (f *fakeSessionsRepo) Find(_ context.Context, token string) (*models.Session, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	s, ok := f.rows[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s, nil
}

func (f *fakeSessionsRepo) Delete(_ context.Context, token string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, token)
	delete(f.rows, token)
	return nil
}

func (f *fakeSessionsRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.deleteExpiredCalls++
	if f.deleteExpiredErr != nil {
		return 0, f.deleteExpiredErr
	}
	var n int64
	for k, s := range f.rows {
		if s.Expired(now) {
			delete(f.rows, k)
			n++
		}
	}
	return n, nil
}

type fakeRepoManager struct {
	e *fakeEntriesRepo
	s *fakeSessionsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{e: newFakeEntriesRepo(), s: newFakeSessionsRepo()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Entries(dbx.DBTX) entries.Repository        { return m.e }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository      { return m.s }
