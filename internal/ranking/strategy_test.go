package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisdamba/bagsim/internal/market"
	"github.com/chrisdamba/bagsim/internal/models"
)

var home = models.Location{Lat: 30.05, Lon: 31.25}

func near(dLat float64) models.Location {
	return models.Location{Lat: home.Lat + dLat, Lon: home.Lon}
}

func testMarket() *market.State {
	stores := []*models.Restaurant{
		models.NewRestaurant(1, "Bakery One", "", models.CategoryBakery, 12, 4.6, 90, near(0.010)),
		models.NewRestaurant(2, "Cafe Two", "", models.CategoryCafe, 8, 4.1, 70, near(0.002)),
		models.NewRestaurant(3, "Grill Three", "", models.CategoryRestaurant, 15, 3.8, 120, near(0.020)),
		models.NewRestaurant(4, "Bakery Four", "", models.CategoryBakery, 6, 4.9, 110, near(0.030)),
		models.NewRestaurant(5, "Cafe Five", "", models.CategoryCafe, 10, 4.3, 60, near(0.005)),
		models.NewRestaurant(6, "Far Away", "", models.CategoryRestaurant, 20, 5.0, 50, near(0.200)),
		models.NewRestaurant(7, "Sold Out", "", models.CategoryBakery, 4, 4.8, 80, near(0.001)),
		models.NewRestaurant(8, "Kitchen Eight", "", models.CategoryRestaurant, 9, 4.0, 100, near(0.040)),
	}
	stores[6].ReservedCount = 4
	return market.NewState(stores)
}

func testCustomer(segment models.Segment) *models.Customer {
	return models.NewCustomer(1, home, "Test", segment, 100,
		models.Weights{Rating: 1.0, Price: 1.0, Novelty: 0.5}, 2.0)
}

func TestNewUnknownStrategy(t *testing.T) {
	_, err := New("round_robin")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
	assert.False(t, IsValid("round_robin"))

	s, err := New("")
	require.NoError(t, err)
	assert.Equal(t, Baseline, s.Name())
}

func TestStrategiesRespectContract(t *testing.T) {
	for _, name := range Names() {
		for _, n := range []int{0, 1, 3, 5, 10} {
			st := testMarket()
			s, err := New(name)
			require.NoError(t, err)
			assert.Equal(t, name, s.Name())

			ids := s.Select(testCustomer(models.SegmentRegular), st, n)
			assert.LessOrEqual(t, len(ids), n, "%s n=%d", name, n)

			seen := make(map[int]bool)
			for _, id := range ids {
				assert.False(t, seen[id], "%s returned %d twice", name, id)
				seen[id] = true
				r := st.Restaurant(id)
				require.NotNil(t, r)
				assert.True(t, r.CanAcceptReservation(), "%s displayed full store %d", name, id)
			}
		}
	}
}

func TestStrategiesAreDeterministic(t *testing.T) {
	for _, name := range Names() {
		if name == Harmony {
			continue
		}
		s, _ := New(name)
		st := testMarket()
		c := testCustomer(models.SegmentBudget)
		assert.Equal(t, s.Select(c, st, 5), s.Select(c, st, 5), name)
	}
}

func TestBaselineOrdersByRating(t *testing.T) {
	ids := (&BaselineStrategy{}).Select(testCustomer(models.SegmentRegular), testMarket(), 4)
	assert.Equal(t, []int{6, 4, 1, 5}, ids)
}

func TestBaselineEmptyMarket(t *testing.T) {
	st := market.NewState(nil)
	assert.Empty(t, (&BaselineStrategy{}).Select(testCustomer(models.SegmentRegular), st, 5))
}

func TestWeightedLinearCapsDisplay(t *testing.T) {
	ids := (&WeightedLinearStrategy{}).Select(testCustomer(models.SegmentRegular), testMarket(), 10)
	assert.Len(t, ids, maxLinearDisplay)
	assert.NotContains(t, ids, 6, "out of range stores are filtered")
}

func TestNearestFirstPinsClosest(t *testing.T) {
	ids := (&NearestFirstStrategy{}).Select(testCustomer(models.SegmentRegular), testMarket(), 5)
	require.NotEmpty(t, ids)
	assert.Equal(t, 2, ids[0], "store 7 is closer but has no inventory left")
	assert.NotContains(t, ids, 6)
}

func TestFairnessDampsExposedStores(t *testing.T) {
	c := testCustomer(models.SegmentRegular)
	st := market.NewState([]*models.Restaurant{
		models.NewRestaurant(1, "A", "", models.CategoryCafe, 10, 4.0, 80, home),
		models.NewRestaurant(2, "B", "", models.CategoryCafe, 10, 4.0, 80, home),
	})
	assert.Equal(t, []int{1, 2}, (&FairnessStrategy{}).Select(c, st, 2))

	st.Impressions[1] = 100
	assert.Equal(t, []int{2, 1}, (&FairnessStrategy{}).Select(c, st, 2))
	assert.Equal(t, 100, st.Impressions[1], "fairness only reads impressions")
}

func TestHarmonyCountsImpressions(t *testing.T) {
	st := testMarket()
	ids := (&HarmonyStrategy{}).Select(testCustomer(models.SegmentPremium), st, 3)
	require.Len(t, ids, 3)

	for _, id := range ids {
		assert.Equal(t, 1, st.Impressions[id])
	}
	_, tracked := st.Impressions[6]
	assert.False(t, tracked, "out of range stores never enter the impression table")

	displayed := 0
	for _, n := range st.Impressions {
		displayed += n
	}
	assert.Equal(t, 3, displayed)
}

func TestMultiObjectiveFillsDisplay(t *testing.T) {
	for _, seg := range models.Segments {
		ids := (&MultiObjectiveStrategy{}).Select(testCustomer(seg), testMarket(), 5)
		assert.Len(t, ids, 5, string(seg))
	}
}
