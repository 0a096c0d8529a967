// Package settlement resolves the day's pending reservations against the
// inventory stores actually had.
package settlement

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/chrisdamba/bagsim/internal/market"
	"github.com/chrisdamba/bagsim/internal/models"
)

// StoreSettlement summarises how one store's pending reservations resolved.
type StoreSettlement struct {
	RestaurantID    int
	Pending         int
	Confirmed       int
	Cancelled       int
	BagsDistributed int
	ActualBags      int
	Resolved        []*models.Reservation
}

// Waste is the realized inventory nobody took home.
func (s StoreSettlement) Waste() int {
	return max(0, s.ActualBags-s.BagsDistributed)
}

type Reconciler struct {
	// LoyaltyReward nudges loyalty up on every confirmation.
	LoyaltyReward bool

	logger *logrus.Entry
}

func NewReconciler(loyaltyReward bool, logger *logrus.Entry) *Reconciler {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Reconciler{LoyaltyReward: loyaltyReward, logger: logger}
}

// Settle resolves every PENDING reservation in st, store by store, in store
// order. It never fails: each pending reservation ends CONFIRMED or CANCELLED.
func (rc *Reconciler) Settle(st *market.State) []StoreSettlement {
	out := make([]StoreSettlement, 0, len(st.Restaurants))
	for _, r := range st.Restaurants {
		out = append(out, rc.settleStore(st, r))
	}
	return out
}

func (rc *Reconciler) settleStore(st *market.State, r *models.Restaurant) StoreSettlement {
	result := StoreSettlement{RestaurantID: r.ID, ActualBags: r.ActualBags}

	var pending []*models.Reservation
	for _, res := range st.Reservations {
		if res.RestaurantID == r.ID && res.Pending() {
			pending = append(pending, res)
		}
	}
	if len(pending) == 0 {
		return result
	}

	// Equal times keep log order, so earlier reservations win ties.
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].ReservationTime.Before(pending[j].ReservationTime)
	})
	result.Pending = len(pending)

	for i, bags := range Allocate(r.ActualBags, len(pending), r.MaxBagsPerCustomer) {
		res := pending[i]
		if bags > 0 {
			rc.confirm(st, r, res, bags)
			result.Confirmed++
			result.BagsDistributed += bags
		} else {
			rc.cancel(st, r, res)
			result.Cancelled++
		}
		result.Resolved = append(result.Resolved, res)
	}

	rc.logger.WithFields(logrus.Fields{
		"restaurant_id": r.ID,
		"pending":       result.Pending,
		"actual_bags":   r.ActualBags,
		"confirmed":     result.Confirmed,
		"cancelled":     result.Cancelled,
	}).Debug("store settled")
	return result
}

// Allocate splits actual bags over k time-ordered reservations. With enough
// bags everyone gets an equal share up to maxPerCustomer and leftovers go one
// each to the earliest; otherwise the first actual reservations get one bag
// and the rest get none.
func Allocate(actual, k, maxPerCustomer int) []int {
	bags := make([]int, k)
	if k == 0 {
		return bags
	}
	if actual < k {
		for i := 0; i < actual; i++ {
			bags[i] = 1
		}
		return bags
	}

	per := min(maxPerCustomer, actual/k)
	extra := actual - per*k
	for i := range bags {
		bags[i] = per
		if extra > 0 && bags[i] < maxPerCustomer {
			bags[i]++
			extra--
		}
	}
	return bags
}

func (rc *Reconciler) confirm(st *market.State, r *models.Restaurant, res *models.Reservation, bags int) {
	res.Confirm(bags)
	if c := st.Customer(res.CustomerID); c != nil {
		c.RecordReservationSuccess(r.ID, r.BusinessType)
		if rc.LoyaltyReward {
			c.UpdateLoyalty(false)
		}
	} else {
		rc.logger.WithField("customer_id", res.CustomerID).Warn("settled reservation for unknown customer")
	}
	r.UpdateRatingOnConfirmation()
}

func (rc *Reconciler) cancel(st *market.State, r *models.Restaurant, res *models.Reservation) {
	res.Cancel()
	if c := st.Customer(res.CustomerID); c != nil {
		c.RecordReservationCancellation(r.ID)
	} else {
		rc.logger.WithField("customer_id", res.CustomerID).Warn("cancelled reservation for unknown customer")
	}
	r.UpdateRatingOnCancellation()
}
