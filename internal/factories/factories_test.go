package factories

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisdamba/bagsim/internal/models"
)

func TestInferBusinessType(t *testing.T) {
	assert.Equal(t, models.CategoryBakery, InferBusinessType("Krispy Kreme"))
	assert.Equal(t, models.CategoryCafe, InferBusinessType("Costa COFFEE"))
	assert.Equal(t, models.CategoryRestaurant, InferBusinessType("Pizza Hut"))
}

func TestDefaultRestaurants(t *testing.T) {
	stores := DefaultRestaurants()
	require.Len(t, stores, 15)

	seen := make(map[int]bool)
	for _, r := range stores {
		assert.False(t, seen[r.ID])
		seen[r.ID] = true
		assert.True(t, r.CanAcceptReservation())
		assert.Equal(t, models.DefaultMaxBagsPerCustomer, r.MaxBagsPerCustomer)
	}
	assert.Equal(t, "Krispy Kreme - Zamalek", stores[0].DisplayName())

	stores[0].ReservedCount = 3
	assert.Zero(t, DefaultRestaurants()[0].ReservedCount, "each call returns fresh stores")
}

func TestCreateCustomerGenerated(t *testing.T) {
	stores := DefaultRestaurants()
	f := NewCustomerFactory(rand.New(rand.NewSource(3)), nil)

	for id := 1; id <= 50; id++ {
		c := f.CreateCustomer(id, stores)
		assert.Equal(t, id, c.ID)
		assert.True(t, c.Segment.Valid())
		assert.NotEmpty(t, c.Name)
		assert.Equal(t, models.DefaultLoyalty, c.Loyalty)
		assert.Len(t, c.StoreValuations, len(stores))
		assert.GreaterOrEqual(t, c.Location.Lon, minCustomerLon)
		assert.LessOrEqual(t, c.Location.Lat, maxCustomerLat)

		switch c.Segment {
		case models.SegmentBudget:
			assert.GreaterOrEqual(t, c.WillingnessToPay, 80.0)
			assert.Less(t, c.WillingnessToPay, 120.0)
		case models.SegmentPremium:
			assert.GreaterOrEqual(t, c.WillingnessToPay, 180.0)
		}
	}
}

func TestCreateCustomerDeterministic(t *testing.T) {
	stores := DefaultRestaurants()
	a := NewCustomerFactory(rand.New(rand.NewSource(9)), nil)
	b := NewCustomerFactory(rand.New(rand.NewSource(9)), nil)
	for id := 0; id < 10; id++ {
		assert.Equal(t, a.CreateCustomer(id, stores), b.CreateCustomer(id, stores))
	}
}

func TestCreateCustomerFromPool(t *testing.T) {
	template := models.NewCustomer(1, models.Location{}, "Template", models.SegmentPremium, 200,
		models.Weights{Rating: 1}, 4)
	template.Churned = true
	template.RecordVisit()
	other := models.NewCustomer(2, models.Location{}, "Other", models.SegmentBudget, 90,
		models.Weights{Price: 1}, 2)

	f := NewCustomerFactory(rand.New(rand.NewSource(1)), []*models.Customer{template, other})
	c := f.CreateCustomer(10, nil)
	assert.Equal(t, 10, c.ID)
	assert.Equal(t, "Template", c.Name)
	assert.False(t, c.Churned)
	assert.Zero(t, c.History.Visits)

	assert.Equal(t, "Other", f.CreateCustomer(11, nil).Name)
	assert.Equal(t, 1, template.ID, "templates are not modified")
	assert.True(t, template.Churned)
}

func TestNewCSVDefaults(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 20; i++ {
		budget := NewCSVDefaults(rng, models.SegmentBudget)
		assert.GreaterOrEqual(t, budget.WillingnessToPay, 80.0)
		assert.Less(t, budget.LeavingThreshold, 2.5)

		premium := NewCSVDefaults(rng, models.SegmentPremium)
		assert.GreaterOrEqual(t, premium.LeavingThreshold, 3.5)
		assert.GreaterOrEqual(t, premium.Weights.Rating, 1.5)
	}
	assert.True(t, DefaultSegment(rng).Valid())
}

func TestCreateRestaurants(t *testing.T) {
	stores := NewRestaurantFactory(rand.New(rand.NewSource(2))).CreateRestaurants(100, 12)
	require.Len(t, stores, 12)
	for i, r := range stores {
		assert.Equal(t, 100+i, r.ID)
		assert.NotEmpty(t, r.Name)
		assert.Contains(t, models.DefaultCategories, r.BusinessType)
		assert.GreaterOrEqual(t, r.EstimatedBags, 6)
		assert.LessOrEqual(t, r.EstimatedBags, 20)
		assert.GreaterOrEqual(t, r.Rating(), 3.5)
		assert.LessOrEqual(t, r.Rating(), 5.0)
		assert.GreaterOrEqual(t, r.PricePerBag, 60.0)
		assert.LessOrEqual(t, r.PricePerBag, 150.0)
	}

	again := NewRestaurantFactory(rand.New(rand.NewSource(2))).CreateRestaurants(100, 12)
	assert.Equal(t, stores, again)
}
