package loader

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/chrisdamba/bagsim/internal/factories"
	"github.com/chrisdamba/bagsim/internal/models"
)

var customerColumns = map[string][]string{
	"id":  {"customerid", "customer_id"},
	"lon": {"longitude", "lon"},
	"lat": {"latitude", "lat"},
}

var storeDigits = regexp.MustCompile(`store\D*(\d+)`)

// customerLayout holds the optional column positions; -1 means absent.
type customerLayout struct {
	required   map[string]int
	name       int
	segment    int
	wtp        int
	ratingW    int
	priceW     int
	noveltyW   int
	loyalty    int
	leaving    int
	valuations map[int]int
}

// LoadCustomers reads a customer pool from path. Profile fields missing from
// the file are drawn from rng per segment.
func LoadCustomers(path string, rng *rand.Rand, logger *logrus.Entry) ([]*models.Customer, error) {
	t, err := openTable(path)
	if err != nil {
		return nil, err
	}
	customers, err := customersFromTable(t, rng, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return customers, nil
}

func ReadCustomers(r io.Reader, rng *rand.Rand, logger *logrus.Entry) ([]*models.Customer, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	return customersFromTable(t, rng, logger)
}

func customersFromTable(t *table, rng *rand.Rand, logger *logrus.Entry) ([]*models.Customer, error) {
	required, err := t.require(customerColumns)
	if err != nil {
		return nil, err
	}
	layout := inferCustomerLayout(t, required)

	var customers []*models.Customer
	for i, row := range t.rows {
		line := i + 2
		if len(row) < len(t.header) {
			logger.WithField("line", line).Warn("skipping short customer row")
			continue
		}

		c, err := parseCustomer(row, layout, rng)
		if errors.Is(err, models.ErrUnknownSegment) {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err != nil {
			logger.WithField("line", line).WithError(err).Warn("skipping unparseable customer row")
			continue
		}
		if err := validateCustomer(c); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		customers = append(customers, c)
	}

	logger.WithField("customers", len(customers)).Info("loaded customer pool")
	return customers, nil
}

func inferCustomerLayout(t *table, required map[string]int) customerLayout {
	optional := func(aliases ...string) int {
		i, _ := t.column(aliases...)
		return i
	}
	layout := customerLayout{
		required:   required,
		name:       optional("customer_name", "name"),
		segment:    optional("segment"),
		wtp:        optional("willingness_to_pay", "wtp"),
		ratingW:    optional("rating_weight", "rating_w"),
		priceW:     optional("price_weight", "price_w"),
		noveltyW:   optional("novelty_weight", "novelty_w"),
		loyalty:    optional("loyalty"),
		leaving:    optional("leaving_threshold"),
		valuations: make(map[int]int),
	}
	for i, name := range t.header {
		if !strings.Contains(name, "store") {
			continue
		}
		if !strings.Contains(name, "valuation") && !strings.Contains(name, "_id_") {
			continue
		}
		m := storeDigits.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		layout.valuations[id] = i
	}
	return layout
}

func parseCustomer(row []string, layout customerLayout, rng *rand.Rand) (*models.Customer, error) {
	id, err := parseInt(row, layout.required["id"], "customer id")
	if err != nil {
		return nil, err
	}
	lon, err := parseFloat(row, layout.required["lon"], "longitude")
	if err != nil {
		return nil, err
	}
	lat, err := parseFloat(row, layout.required["lat"], "latitude")
	if err != nil {
		return nil, err
	}

	var segment models.Segment
	if s := field(row, layout.segment); s != "" {
		segment, err = models.ParseSegment(s)
		if err != nil {
			return nil, err
		}
	} else {
		segment = factories.DefaultSegment(rng)
	}
	defaults := factories.NewCSVDefaults(rng, segment)

	name := field(row, layout.name)
	if name == "" {
		name = fmt.Sprintf("Customer_%d", id)
	}

	optional := func(col int, label string, fallback float64) (float64, error) {
		if field(row, col) == "" {
			return fallback, nil
		}
		return parseFloat(row, col, label)
	}

	wtp, err := optional(layout.wtp, "willingness_to_pay", defaults.WillingnessToPay)
	if err != nil {
		return nil, err
	}
	var w models.Weights
	if w.Rating, err = optional(layout.ratingW, "rating_weight", defaults.Weights.Rating); err != nil {
		return nil, err
	}
	if w.Price, err = optional(layout.priceW, "price_weight", defaults.Weights.Price); err != nil {
		return nil, err
	}
	if w.Novelty, err = optional(layout.noveltyW, "novelty_weight", defaults.Weights.Novelty); err != nil {
		return nil, err
	}
	leaving, err := optional(layout.leaving, "leaving_threshold", defaults.LeavingThreshold)
	if err != nil {
		return nil, err
	}
	loyalty, err := optional(layout.loyalty, "loyalty", models.DefaultLoyalty)
	if err != nil {
		return nil, err
	}

	c := models.NewCustomer(id, models.Location{Lat: lat, Lon: lon}, name, segment, wtp, w, leaving)
	c.SetInitialLoyalty(loyalty)
	for storeID, col := range layout.valuations {
		if field(row, col) == "" {
			continue
		}
		v, err := parseFloat(row, col, fmt.Sprintf("store %d valuation", storeID))
		if err != nil {
			return nil, err
		}
		c.StoreValuations[storeID] = v
	}
	return c, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validateCustomer(c *models.Customer) error {
	switch {
	case !c.Location.IsFinite():
		return fmt.Errorf("customer %d has non-finite coordinates", c.ID)
	case !finite(c.WillingnessToPay) || c.WillingnessToPay <= 0:
		return fmt.Errorf("customer %d has non-positive willingness to pay %g", c.ID, c.WillingnessToPay)
	case !finite(c.Weights.Rating) || !finite(c.Weights.Price) || !finite(c.Weights.Novelty):
		return fmt.Errorf("customer %d has non-finite weights", c.ID)
	case !finite(c.LeavingThreshold):
		return fmt.Errorf("customer %d has non-finite leaving threshold", c.ID)
	case !finite(c.Loyalty) || c.Loyalty < 0 || c.Loyalty > 1:
		return fmt.Errorf("customer %d loyalty %g outside [0, 1]", c.ID, c.Loyalty)
	}
	for storeID, v := range c.StoreValuations {
		if !finite(v) {
			return fmt.Errorf("customer %d has non-finite valuation for store %d", c.ID, storeID)
		}
	}
	return nil
}
