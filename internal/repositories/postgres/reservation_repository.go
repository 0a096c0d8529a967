package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/chrisdamba/bagsim/internal/models"
	"github.com/chrisdamba/bagsim/internal/repositories"
)

// ReservationRepository stores settled reservation logs keyed by run.
type ReservationRepository struct {
	db DB
}

func NewReservationRepository(db DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) BulkCreate(ctx context.Context, run repositories.RunRecord, reservations []*models.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(reservations))
	for _, res := range reservations {
		rows = append(rows, []any{
			run.RunID,
			run.Strategy,
			run.Seed,
			run.Day,
			res.ID,
			res.CustomerID,
			res.RestaurantID,
			res.ReservationTime.String(),
			string(res.Status),
			res.BagsReceived,
		})
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"reservations"},
		[]string{"run_id", "strategy", "seed", "day", "reservation_id", "customer_id",
			"restaurant_id", "reservation_time", "status", "bags_received"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("error copying reservations for run %s day %d: %w", run.RunID, run.Day, err)
	}
	return tx.Commit(ctx)
}

// GetByRun returns a run's reservations ordered by day then id. The day is
// not part of models.Reservation, so ids repeat across days.
func (r *ReservationRepository) GetByRun(ctx context.Context, runID string) ([]*models.Reservation, error) {
	query := `
        SELECT reservation_id, customer_id, restaurant_id, reservation_time, status, bags_received
        FROM reservations
        WHERE run_id = $1
        ORDER BY day, reservation_id
    `
	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Reservation
	for rows.Next() {
		var (
			res    models.Reservation
			t      string
			status string
		)
		if err := rows.Scan(&res.ID, &res.CustomerID, &res.RestaurantID, &t, &status, &res.BagsReceived); err != nil {
			return nil, err
		}
		if _, err := fmt.Sscanf(t, "%d:%d", &res.ReservationTime.Hour, &res.ReservationTime.Minute); err != nil {
			return nil, fmt.Errorf("invalid reservation time %q: %w", t, err)
		}
		res.Status = models.ReservationStatus(status)
		out = append(out, &res)
	}
	return out, rows.Err()
}

func (r *ReservationRepository) CountByRun(ctx context.Context, runID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM reservations WHERE run_id = $1", runID).Scan(&count)
	return count, err
}

func (r *ReservationRepository) DeleteRun(ctx context.Context, runID string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM reservations WHERE run_id = $1", runID)
	return err
}

var _ repositories.ReservationRepository = (*ReservationRepository)(nil)
