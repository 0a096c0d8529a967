// Package report renders run results for people and for other tools.
package report

import (
	"github.com/chrisdamba/bagsim/internal/metrics"
	"github.com/chrisdamba/bagsim/internal/simulator"
)

// StoreSummary is one store's outcome over a whole run.
type StoreSummary struct {
	ID             int     `yaml:"id"`
	Name           string  `yaml:"name"`
	Branch         string  `yaml:"branch"`
	InitialRating  float64 `yaml:"initial_rating"`
	FinalRating    float64 `yaml:"final_rating"`
	Confirmed      int     `yaml:"orders_confirmed"`
	Cancelled      int     `yaml:"orders_cancelled"`
	BagsSold       int     `yaml:"bags_sold"`
	BagsCancelled  int     `yaml:"bags_cancelled"`
	Waste          int     `yaml:"waste"`
	Revenue        float64 `yaml:"revenue"`
	TimesDisplayed int     `yaml:"times_displayed"`
}

// Summary is a flattened view of one run.
type Summary struct {
	Strategy          string         `yaml:"strategy"`
	RunID             string         `yaml:"run_id"`
	Seed              int64          `yaml:"seed"`
	Days              int            `yaml:"days"`
	BagsSold          int            `yaml:"bags_sold"`
	BagsCancelled     int            `yaml:"bags_cancelled"`
	BagsUnsold        int            `yaml:"bags_unsold"`
	RevenueGenerated  float64        `yaml:"revenue_generated"`
	RevenueLost       float64        `yaml:"revenue_lost"`
	RevenueEfficiency float64        `yaml:"revenue_efficiency_pct"`
	Arrivals          int            `yaml:"customer_arrivals"`
	CustomersWhoLeft  int            `yaml:"customers_who_left"`
	ConversionRate    float64        `yaml:"conversion_rate_pct"`
	GiniExposure      float64        `yaml:"gini_exposure"`
	Stores            []StoreSummary `yaml:"stores"`
}

func Summarize(res *simulator.Result) Summary {
	m := res.Metrics
	if m == nil {
		m = metrics.New()
	}
	s := Summary{
		Strategy:          res.Strategy,
		RunID:             res.RunID,
		Seed:              res.Seed,
		Days:              len(res.Days),
		BagsSold:          m.TotalBagsSold,
		BagsCancelled:     m.TotalBagsCancelled,
		BagsUnsold:        m.TotalBagsUnsold,
		RevenueGenerated:  m.TotalRevenueGenerated,
		RevenueLost:       m.TotalRevenueLost,
		RevenueEfficiency: m.RevenueEfficiency(),
		Arrivals:          m.TotalArrivals,
		CustomersWhoLeft:  m.CustomersWhoLeft,
		ConversionRate:    m.ConversionRate(),
		GiniExposure:      m.GiniExposure,
	}
	for _, r := range res.Restaurants {
		sm := storeMetrics(m, r.ID)
		s.Stores = append(s.Stores, StoreSummary{
			ID:             r.ID,
			Name:           r.Name,
			Branch:         r.Branch,
			InitialRating:  r.InitialRating,
			FinalRating:    r.Rating(),
			Confirmed:      r.TotalOrdersConfirmed,
			Cancelled:      r.TotalOrdersCancelled,
			BagsSold:       sm.BagsSold,
			BagsCancelled:  sm.BagsCancelled,
			Waste:          sm.Waste,
			Revenue:        sm.Revenue,
			TimesDisplayed: sm.TimesDisplayed,
		})
	}
	return s
}

// Retained is the number of arrivals that ended in a reservation.
func (s Summary) Retained() int {
	return s.Arrivals - s.CustomersWhoLeft
}

func storeMetrics(m *metrics.Metrics, id int) *metrics.StoreMetrics {
	if sm, ok := m.PerStore[id]; ok {
		return sm
	}
	return &metrics.StoreMetrics{}
}
