package entries

import (
	"context"

	"github.com/learning-journal/journal/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	List(ctx context.Context) ([]*models.Entry, error)
	GetByID(ctx context.Context, id int64) (*models.Entry, error)
	Update(ctx context.Context, entry *models.Entry) (*models.Entry, error)
}
