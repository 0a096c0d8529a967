// Package metrics aggregates sales, waste, revenue and exposure outcomes.
package metrics

import (
	"sort"

	"github.com/chrisdamba/bagsim/internal/market"
	"github.com/chrisdamba/bagsim/internal/models"
)

// StoreMetrics is one store's outcome over a day or a whole run.
type StoreMetrics struct {
	BagsSold       int     `json:"bags_sold" yaml:"bags_sold"`
	BagsCancelled  int     `json:"bags_cancelled" yaml:"bags_cancelled"`
	Waste          int     `json:"waste" yaml:"waste"`
	Revenue        float64 `json:"revenue" yaml:"revenue"`
	TimesDisplayed int     `json:"times_displayed" yaml:"times_displayed"`
}

type Metrics struct {
	TotalBagsSold         int     `json:"total_bags_sold" yaml:"total_bags_sold"`
	TotalBagsCancelled    int     `json:"total_bags_cancelled" yaml:"total_bags_cancelled"`
	TotalBagsUnsold       int     `json:"total_bags_unsold" yaml:"total_bags_unsold"`
	TotalRevenueGenerated float64 `json:"total_revenue_generated" yaml:"total_revenue_generated"`
	TotalRevenueLost      float64 `json:"total_revenue_lost" yaml:"total_revenue_lost"`
	CustomersWhoLeft      int     `json:"customers_who_left" yaml:"customers_who_left"`
	TotalArrivals         int     `json:"total_customer_arrivals" yaml:"total_customer_arrivals"`
	GiniExposure          float64 `json:"gini_coefficient_exposure" yaml:"gini_coefficient_exposure"`

	PerStore map[int]*StoreMetrics `json:"per_store" yaml:"per_store"`
}

func New() *Metrics {
	return &Metrics{PerStore: make(map[int]*StoreMetrics)}
}

// Store returns the entry for id, creating it on first use.
func (m *Metrics) Store(id int) *StoreMetrics {
	sm, ok := m.PerStore[id]
	if !ok {
		sm = &StoreMetrics{}
		m.PerStore[id] = sm
	}
	return sm
}

// RevenueEfficiency is generated revenue as a percentage of generated plus
// lost revenue.
func (m *Metrics) RevenueEfficiency() float64 {
	total := m.TotalRevenueGenerated + m.TotalRevenueLost
	if m.TotalArrivals == 0 || total == 0 {
		return 0
	}
	return m.TotalRevenueGenerated / total * 100.0
}

// ConversionRate is the percentage of arrivals that reserved a bag.
func (m *Metrics) ConversionRate() float64 {
	if m.TotalArrivals == 0 {
		return 0
	}
	return float64(m.TotalArrivals-m.CustomersWhoLeft) / float64(m.TotalArrivals) * 100.0
}

// Merge adds another period's counts into m. The Gini value is not summed;
// call ComputeFairness afterwards.
func (m *Metrics) Merge(other *Metrics) {
	m.TotalBagsSold += other.TotalBagsSold
	m.TotalBagsCancelled += other.TotalBagsCancelled
	m.TotalBagsUnsold += other.TotalBagsUnsold
	m.TotalRevenueGenerated += other.TotalRevenueGenerated
	m.TotalRevenueLost += other.TotalRevenueLost
	m.CustomersWhoLeft += other.CustomersWhoLeft
	m.TotalArrivals += other.TotalArrivals
	for id, sm := range other.PerStore {
		dst := m.Store(id)
		dst.BagsSold += sm.BagsSold
		dst.BagsCancelled += sm.BagsCancelled
		dst.Waste += sm.Waste
		dst.Revenue += sm.Revenue
		dst.TimesDisplayed += sm.TimesDisplayed
	}
}

// ComputeFairness sets GiniExposure from times displayed over the given
// stores, counting stores never displayed as zero.
func (m *Metrics) ComputeFairness(restaurants []*models.Restaurant) {
	exposures := make([]float64, 0, len(restaurants))
	for _, r := range restaurants {
		exposures = append(exposures, float64(m.Store(r.ID).TimesDisplayed))
	}
	m.GiniExposure = Gini(exposures)
}

// Gini returns the Gini coefficient of values: 0 for perfect equality and
// approaching 1 as one value takes everything. Empty or all-zero input is 0.
func Gini(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	sum, weighted := 0.0, 0.0
	for i, v := range sorted {
		sum += v
		weighted += v * float64(i+1)
	}
	if sum == 0 {
		return 0
	}
	n := float64(len(sorted))
	return (2.0*weighted)/(n*sum) - (n+1.0)/n
}

// Collector records one day's outcomes as they happen.
type Collector struct {
	day *Metrics
}

func NewCollector() *Collector {
	return &Collector{day: New()}
}

func (c *Collector) Reset() {
	c.day = New()
}

func (c *Collector) Metrics() *Metrics {
	return c.day
}

func (c *Collector) RecordArrival() {
	c.day.TotalArrivals++
}

func (c *Collector) RecordDisplayed(ids []int) {
	for _, id := range ids {
		c.day.Store(id).TimesDisplayed++
	}
}

func (c *Collector) RecordCustomerLeft() {
	c.day.CustomersWhoLeft++
}

// EndOfDay derives sales, cancellations, revenue and waste from the settled
// reservation log, then the day's exposure Gini.
func (c *Collector) EndOfDay(st *market.State) {
	m := c.day
	m.TotalBagsSold = 0
	m.TotalBagsCancelled = 0
	m.TotalBagsUnsold = 0
	m.TotalRevenueGenerated = 0
	m.TotalRevenueLost = 0

	for _, r := range st.Restaurants {
		sm := m.Store(r.ID)
		sm.BagsSold, sm.BagsCancelled, sm.Revenue = 0, 0, 0
		given := 0
		for _, res := range st.ReservationsFor(r.ID) {
			switch res.Status {
			case models.StatusConfirmed:
				revenue := r.PricePerBag * float64(res.BagsReceived)
				sm.BagsSold += res.BagsReceived
				sm.Revenue += revenue
				given += res.BagsReceived
				m.TotalBagsSold += res.BagsReceived
				m.TotalRevenueGenerated += revenue
			case models.StatusCancelled:
				sm.BagsCancelled++
				m.TotalBagsCancelled++
				m.TotalRevenueLost += r.PricePerBag
			}
		}
		sm.Waste = max(0, r.ActualBags-given)
		m.TotalBagsUnsold += sm.Waste
	}
	m.ComputeFairness(st.Restaurants)
}
