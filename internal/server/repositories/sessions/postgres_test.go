package sessions

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/learning-journal/journal/internal/common"
)

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	repo := NewPostgresRepository(db)
	repo.now = func() time.Time { return fixedNow }
	return repo, mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+sessions\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s+RETURNING\s+created_at\s*$`

	mock.ExpectQuery(q).
		WithArgs("tok123", "admin", fixedNow.Add(30*time.Minute)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(fixedNow))

	s, err := repo.Create(context.Background(), "tok123", "admin", 30*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Token != "tok123" || s.Username != "admin" || !s.Expires.Equal(fixedNow.Add(30*time.Minute)) || !s.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected session: %+v", s)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+sessions`).
		WithArgs("tok123", "admin", sqlmock.AnyArg()).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), "tok123", "admin", time.Hour)
	if err == nil || !regexp.MustCompile(`error performing sql request: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFind(t *testing.T) {
	q := `(?s)^\s*SELECT\s+token,\s*username,\s*expires_at,\s*created_at\s+FROM\s+sessions\s+WHERE\s+token\s*=\s*\$1\s*$`

	t.Run("found", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		expires := fixedNow.Add(10 * time.Minute)
		mock.ExpectQuery(q).WithArgs("tok123").
			WillReturnRows(sqlmock.NewRows([]string{"token", "username", "expires_at", "created_at"}).
				AddRow("tok123", "admin", expires, fixedNow))

		got, err := repo.Find(context.Background(), "tok123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Username != "admin" || !got.Expires.Equal(expires) {
			t.Fatalf("unexpected row: %+v", got)
		}
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs("missing").WillReturnError(sql.ErrNoRows)

		_, err := repo.Find(context.Background(), "missing")
		if !errors.Is(err, common.ErrorNotFound) {
			t.Fatalf("want ErrorNotFound, got %v", err)
		}
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs("tok").WillReturnError(errors.New("boom"))

		_, err := repo.Find(context.Background(), "tok")
		if err == nil || !regexp.MustCompile(`db error: .*boom`).MatchString(err.Error()) {
			t.Fatalf("expected wrapped db error, got %v", err)
		}
	})
}

func TestDelete(t *testing.T) {
	q := `(?s)^\s*DELETE\s+FROM\s+sessions\s+WHERE\s+token\s*=\s*\$1\s*$`

	t.Run("ok", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(q).WithArgs("tok123").WillReturnResult(sqlmock.NewResult(0, 1))

		if err := repo.Delete(context.Background(), "tok123"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("unknown token is fine", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(q).WithArgs("nope").WillReturnResult(sqlmock.NewResult(0, 0))

		if err := repo.Delete(context.Background(), "nope"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(q).WithArgs("tok").WillReturnError(errors.New("boom"))

		if err := repo.Delete(context.Background(), "tok"); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestDeleteExpired(t *testing.T) {
	q := `(?s)^\s*DELETE\s+FROM\s+sessions\s+WHERE\s+expires_at\s*<=\s*\$1\s*$`

	t.Run("returns count", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(q).WithArgs(fixedNow).WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := repo.DeleteExpired(context.Background(), fixedNow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 3 {
			t.Fatalf("want 3, got %d", n)
		}
	})

	t.Run("rows affected error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(q).WithArgs(fixedNow).WillReturnResult(sqlmock.NewErrorResult(errors.New("rows-err")))

		_, err := repo.DeleteExpired(context.Background(), fixedNow)
		if err == nil || !regexp.MustCompile(`rows affected error: .*rows-err`).MatchString(err.Error()) {
			t.Fatalf("expected rows affected error, got %v", err)
		}
	})
}
