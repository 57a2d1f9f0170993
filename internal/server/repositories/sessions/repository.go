package sessions

import (
	"context"
	"time"

	"github.com/learning-journal/journal/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, token string, username string, validity time.Duration) (*models.Session, error)
	Find(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
