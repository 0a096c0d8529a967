package settlement

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisdamba/bagsim/internal/market"
	"github.com/chrisdamba/bagsim/internal/models"
)

func quietLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name   string
		actual int
		k      int
		max    int
		want   []int
	}{
		{"one each", 10, 10, 3, []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}},
		{"shortage", 3, 5, 3, []int{1, 1, 1, 0, 0}},
		{"extras to earliest", 7, 3, 3, []int{3, 2, 2}},
		{"capped", 20, 3, 3, []int{3, 3, 3}},
		{"nothing", 0, 2, 3, []int{0, 0}},
		{"no reservations", 5, 0, 3, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allocate(tt.actual, tt.k, tt.max))
		})
	}
}

// storeWithPending builds one store and k pending reservations whose log order
// is the reverse of their time order.
func storeWithPending(actual, k int) *market.State {
	r := models.NewRestaurant(1, "Bakery", "", models.CategoryBakery, 10, 4.0, 80, models.Location{})
	r.SetActualInventory(actual)
	st := market.NewState([]*models.Restaurant{r})
	for i := k; i >= 1; i-- {
		c := models.NewCustomer(i, models.Location{}, "c", models.SegmentRegular, 100, models.Weights{}, 1)
		st.AddCustomer(c)
		res := models.NewReservation(st.AllocateReservationID(), i, r.ID, models.NewTimestamp(9, i))
		c.RecordReservationAttempt(r.ID, r.BusinessType, res.ReservationTime)
		r.ReservedCount++
		st.AppendReservation(res)
	}
	return st
}

func TestSettleAllConfirmed(t *testing.T) {
	st := storeWithPending(10, 10)
	settlements := NewReconciler(false, quietLogger()).Settle(st)
	require.Len(t, settlements, 1)

	s := settlements[0]
	assert.Equal(t, 10, s.Pending)
	assert.Equal(t, 10, s.Confirmed)
	assert.Zero(t, s.Cancelled)
	assert.Equal(t, 10, s.BagsDistributed)
	assert.Zero(t, s.Waste())
	for _, res := range st.Reservations {
		assert.Equal(t, models.StatusConfirmed, res.Status)
		assert.Equal(t, 1, res.BagsReceived)
	}
}

func TestSettleShortageCancelsLatest(t *testing.T) {
	st := storeWithPending(3, 5)
	settlements := NewReconciler(false, quietLogger()).Settle(st)
	s := settlements[0]
	assert.Equal(t, 3, s.Confirmed)
	assert.Equal(t, 2, s.Cancelled)

	// customer i reserved at 9:0i
	for _, res := range st.Reservations {
		if res.CustomerID <= 3 {
			assert.Equal(t, models.StatusConfirmed, res.Status, "customer %d", res.CustomerID)
		} else {
			assert.Equal(t, models.StatusCancelled, res.Status, "customer %d", res.CustomerID)
		}
	}
	require.Len(t, s.Resolved, 5)
	assert.Equal(t, 1, s.Resolved[0].CustomerID)

	r := st.Restaurant(1)
	assert.InDelta(t, 4.0+3*0.01-2*0.05, r.Rating(), 1e-9)
	assert.Equal(t, 3, r.DailyOrdersConfirmed)
	assert.Equal(t, 2, r.DailyOrdersCancelled)

	cancelled := st.Customer(5)
	assert.InDelta(t, 0.7, cancelled.Loyalty, 1e-9)
	assert.Equal(t, 1, cancelled.History.Cancellations)
	confirmed := st.Customer(1)
	assert.Equal(t, models.DefaultLoyalty, confirmed.Loyalty)
	assert.Equal(t, 1, confirmed.History.Successes)
}

func TestSettleLoyaltyReward(t *testing.T) {
	st := storeWithPending(1, 1)
	NewReconciler(true, quietLogger()).Settle(st)
	assert.InDelta(t, 0.85, st.Customer(1).Loyalty, 1e-9)
}

func TestSettleIsIdempotent(t *testing.T) {
	st := storeWithPending(3, 5)
	rc := NewReconciler(false, quietLogger())
	rc.Settle(st)
	rating := st.Restaurant(1).Rating()

	again := rc.Settle(st)
	assert.Zero(t, again[0].Pending)
	assert.Equal(t, rating, st.Restaurant(1).Rating())
}

func TestSettleUnknownCustomer(t *testing.T) {
	logger, hook := test.NewNullLogger()
	st := storeWithPending(0, 1)
	st.Customers = map[int]*models.Customer{}

	NewReconciler(false, logrus.NewEntry(logger)).Settle(st)
	assert.Equal(t, models.StatusCancelled, st.Reservations[0].Status)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
