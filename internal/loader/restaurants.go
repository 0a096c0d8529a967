package loader

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/chrisdamba/bagsim/internal/factories"
	"github.com/chrisdamba/bagsim/internal/models"
)

var restaurantColumns = map[string][]string{
	"id":     {"store_id"},
	"name":   {"store_name"},
	"branch": {"branch"},
	"bags":   {"average_bags_at_9am"},
	"rating": {"average_overall_rating"},
	"price":  {"price"},
	"lon":    {"longitude"},
	"lat":    {"latitude"},
}

// LoadRestaurants reads the store catalogue from path.
func LoadRestaurants(path string, logger *logrus.Entry) ([]*models.Restaurant, error) {
	t, err := openTable(path)
	if err != nil {
		return nil, err
	}
	restaurants, err := restaurantsFromTable(t, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return restaurants, nil
}

func ReadRestaurants(r io.Reader, logger *logrus.Entry) ([]*models.Restaurant, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	return restaurantsFromTable(t, logger)
}

func restaurantsFromTable(t *table, logger *logrus.Entry) ([]*models.Restaurant, error) {
	cols, err := t.require(restaurantColumns)
	if err != nil {
		return nil, err
	}
	typeCol, hasType := t.column("business_type", "type")

	var restaurants []*models.Restaurant
	seen := make(map[int]bool)
	for i, row := range t.rows {
		line := i + 2
		if len(row) < len(t.header) {
			logger.WithField("line", line).Warn("skipping short store row")
			continue
		}

		r, err := parseRestaurant(row, cols)
		if err != nil {
			logger.WithField("line", line).WithError(err).Warn("skipping unparseable store row")
			continue
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("line %d: duplicate store_id %d", line, r.ID)
		}
		seen[r.ID] = true

		if hasType && field(row, typeCol) != "" {
			r.BusinessType = strings.ToLower(field(row, typeCol))
		} else {
			r.BusinessType = factories.InferBusinessType(r.Name)
		}
		restaurants = append(restaurants, r)
	}

	logger.WithField("stores", len(restaurants)).Info("loaded store catalogue")
	return restaurants, nil
}

func parseRestaurant(row []string, cols map[string]int) (*models.Restaurant, error) {
	id, err := parseInt(row, cols["id"], "store_id")
	if err != nil {
		return nil, err
	}
	bags, err := parseInt(row, cols["bags"], "average_bags_at_9AM")
	if err != nil {
		return nil, err
	}
	rating, err := parseFloat(row, cols["rating"], "average_overall_rating")
	if err != nil {
		return nil, err
	}
	price, err := parseFloat(row, cols["price"], "price")
	if err != nil {
		return nil, err
	}
	lon, err := parseFloat(row, cols["lon"], "longitude")
	if err != nil {
		return nil, err
	}
	lat, err := parseFloat(row, cols["lat"], "latitude")
	if err != nil {
		return nil, err
	}

	return models.NewRestaurant(id, field(row, cols["name"]), field(row, cols["branch"]), "",
		bags, rating, price, models.Location{Lat: lat, Lon: lon}), nil
}
