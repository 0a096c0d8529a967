package repositories

import (
	"context"

	"github.com/chrisdamba/bagsim/internal/models"
)

type RestaurantRepository interface {
	BulkCreate(ctx context.Context, restaurants []*models.Restaurant) error
	Create(ctx context.Context, restaurant *models.Restaurant) error
	GetAll(ctx context.Context) ([]*models.Restaurant, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

// RunRecord identifies the run a batch of reservations belongs to.
type RunRecord struct {
	RunID    string
	Strategy string
	Seed     int64
	Day      int
}

type ReservationRepository interface {
	BulkCreate(ctx context.Context, run RunRecord, reservations []*models.Reservation) error
	GetByRun(ctx context.Context, runID string) ([]*models.Reservation, error)
	CountByRun(ctx context.Context, runID string) (int, error)
	DeleteRun(ctx context.Context, runID string) error
}
