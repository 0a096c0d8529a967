package postgres

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisdamba/bagsim/internal/models"
)

// storeRows replays canned restaurant rows in GetAll's column order.
type storeRows struct {
	pgx.Rows
	rows [][]any
	pos  int
}

func (r *storeRows) Next() bool {
	r.pos++
	return r.pos <= len(r.rows)
}

func (r *storeRows) Scan(dest ...any) error {
	row := r.rows[r.pos-1]
	for i, d := range dest {
		switch d := d.(type) {
		case *int:
			*d = row[i].(int)
		case *string:
			*d = row[i].(string)
		case *float64:
			*d = row[i].(float64)
		case *models.Location:
			*d = row[i].(models.Location)
		default:
			return fmt.Errorf("unexpected scan target %T", d)
		}
	}
	return nil
}

func (r *storeRows) Close()     {}
func (r *storeRows) Err() error { return nil }

type cannedDB struct {
	DB
	rows *storeRows
}

func (c cannedDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return c.rows, nil
}

func storeRow(id int, bags int, price, rating float64, loc models.Location) []any {
	return []any{id, "Store", "", models.CategoryCafe, bags, price, rating, 2, loc}
}

func TestRestaurantRepositoryGetAllValidatesRows(t *testing.T) {
	good := models.Location{Lat: 30.05, Lon: 31.25}
	tests := []struct {
		name string
		bad  []any
	}{
		{"rating above range", storeRow(7, 10, 80, 5.5, good)},
		{"zero price", storeRow(7, 10, 0, 4.0, good)},
		{"negative bags", storeRow(7, -1, 80, 4.0, good)},
		{"nan coordinate", storeRow(7, 10, 80, 4.0, models.Location{Lat: math.NaN(), Lon: 31.25})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := cannedDB{rows: &storeRows{rows: [][]any{storeRow(3, 10, 80, 4.0, good), tt.bad}}}
			_, err := NewRestaurantRepository(db).GetAll(context.Background())
			require.ErrorIs(t, err, models.ErrInvalidRestaurant)
			assert.Contains(t, err.Error(), "row id 7")
		})
	}
}

func TestRestaurantRepositoryGetAllBuildsStores(t *testing.T) {
	loc := models.Location{Lat: 30.05, Lon: 31.25}
	db := cannedDB{rows: &storeRows{rows: [][]any{storeRow(3, 10, 80, 4.0, loc)}}}

	got, err := NewRestaurantRepository(db).GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ID)
	assert.Equal(t, 2, got[0].MaxBagsPerCustomer)
	assert.Equal(t, loc, got[0].Location)
	assert.True(t, got[0].HasInventory)
}
