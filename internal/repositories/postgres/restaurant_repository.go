package postgres

import (
	"context"
	"fmt"

	"github.com/chrisdamba/bagsim/internal/models"
	"github.com/chrisdamba/bagsim/internal/repositories"
)

type RestaurantRepository struct {
	db DB
}

func NewRestaurantRepository(db DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

const insertRestaurant = `
    INSERT INTO restaurants (
        id, name, branch, business_type, estimated_bags, price_per_bag,
        rating, max_bags_per_customer, location
    ) VALUES (
        $1, $2, $3, $4, $5, $6, $7, $8,
        ST_SetSRID(ST_MakePoint($9, $10), 4326)::geography
    )
`

func (r *RestaurantRepository) BulkCreate(ctx context.Context, restaurants []*models.Restaurant) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, restaurant := range restaurants {
		if _, err := tx.Exec(ctx, insertRestaurant, restaurantArgs(restaurant)...); err != nil {
			return fmt.Errorf("error inserting store %d: %w", restaurant.ID, err)
		}
	}
	return tx.Commit(ctx)
}

func (r *RestaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	_, err := r.db.Exec(ctx, insertRestaurant, restaurantArgs(restaurant)...)
	return err
}

func restaurantArgs(restaurant *models.Restaurant) []any {
	return []any{
		restaurant.ID,
		restaurant.Name,
		restaurant.Branch,
		restaurant.BusinessType,
		restaurant.EstimatedBags,
		restaurant.PricePerBag,
		restaurant.GeneralRanking,
		restaurant.MaxBagsPerCustomer,
		restaurant.Location.Lon,
		restaurant.Location.Lat,
	}
}

// GetAll returns the catalogue ordered by id, so runs see stores in a stable
// order. Rows are held to the same checks as CSV stores.
func (r *RestaurantRepository) GetAll(ctx context.Context) ([]*models.Restaurant, error) {
	query := `
        SELECT
            id, name, branch, business_type, estimated_bags, price_per_bag,
            rating, max_bags_per_customer, ST_AsText(location::geometry)
        FROM restaurants
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var restaurants []*models.Restaurant
	for rows.Next() {
		var (
			id, bags, maxBags   int
			name, branch, btype string
			price, rating       float64
			location            models.Location
		)
		if err := rows.Scan(&id, &name, &branch, &btype, &bags, &price, &rating, &maxBags, &location); err != nil {
			return nil, err
		}
		restaurant := models.NewRestaurant(id, name, branch, btype, bags, rating, price, location)
		if maxBags > 0 {
			restaurant.MaxBagsPerCustomer = maxBags
		}
		if err := restaurant.Validate(); err != nil {
			return nil, fmt.Errorf("restaurants row id %d: %w", id, err)
		}
		restaurants = append(restaurants, restaurant)
	}
	return restaurants, rows.Err()
}

func (r *RestaurantRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM restaurants").Scan(&count)
	return count, err
}

func (r *RestaurantRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, "DELETE FROM restaurants")
	return err
}

var _ repositories.RestaurantRepository = (*RestaurantRepository)(nil)
