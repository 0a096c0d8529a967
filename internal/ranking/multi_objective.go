package ranking

import (
	"github.com/chrisdamba/bagsim/internal/market"
	"github.com/chrisdamba/bagsim/internal/models"
)

const (
	minPersonalizedSlots  = 3
	minPersonalization    = 0.4
	maxPersonalization    = 0.85
	highMarketWasteUnsold = 10.0
	minDiscoveryBags      = 8
)

type segmentWeights struct {
	rating    float64
	price     float64
	inventory float64
}

func weightsFor(s models.Segment) segmentWeights {
	switch s {
	case models.SegmentBudget:
		return segmentWeights{rating: 0.8, price: 1.3, inventory: 0.8}
	case models.SegmentPremium:
		return segmentWeights{rating: 1.5, price: 0.7, inventory: 0.5}
	default:
		return segmentWeights{rating: 1.0, price: 1.0, inventory: 0.6}
	}
}

func basePersonalization(s models.Segment) float64 {
	switch s {
	case models.SegmentBudget:
		return 0.7
	case models.SegmentPremium:
		return 0.5
	default:
		return 0.6
	}
}

// MultiObjectiveStrategy blends personal utility with waste, revenue and
// history signals, then reserves slots for a discovery store and a
// price-competitive store.
type MultiObjectiveStrategy struct{}

func (m *MultiObjectiveStrategy) Name() string { return MultiObjective }

func (m *MultiObjectiveStrategy) Select(c *models.Customer, st *market.State, n int) []int {
	display := newDisplaySet(n)
	available := st.AvailableRestaurants()
	if len(available) == 0 || n <= 0 {
		return display.ids
	}

	w := weightsFor(c.Segment)
	scores := make([]scoredStore, 0, len(available))
	for _, r := range available {
		scores = append(scores, scoredStore{store: r, score: m.score(c, r, w)})
	}
	sortByScore(scores)

	personalized := personalizedSlots(c, st, n, len(scores))
	for i := 0; i < personalized && i < len(scores) && !display.full(); i++ {
		display.add(scores[i].store.ID)
	}

	if !display.full() {
		if best, ok := bestOf(m.discoveryCandidates(c, available, display)); ok {
			display.add(best.store.ID)
		}
	}

	if !display.full() {
		if best, ok := bestOf(m.competitiveCandidates(c, available, display)); ok {
			display.add(best.store.ID)
		}
	}

	display.fill(scores)
	return display.ids
}

// personalizedSlots is how many leading slots go to the best utility stores.
// Loyal customers get more, a wasteful market gets fewer, and the count never
// drops below minPersonalizedSlots.
func personalizedSlots(c *models.Customer, st *market.State, n, candidates int) int {
	ratio := basePersonalization(c.Segment) + c.Loyalty*0.15
	if averageUnsold(st) > highMarketWasteUnsold {
		ratio -= 0.1
	}
	ratio = min(maxPersonalization, max(minPersonalization, ratio))
	return max(minPersonalizedSlots, min(int(float64(n)*ratio), candidates))
}

func (m *MultiObjectiveStrategy) score(c *models.Customer, r *models.Restaurant, w segmentWeights) float64 {
	unsold := float64(r.Unsold())
	urgency := min(1.0, unsold/15.0)
	inventoryBonus := urgency * 1.2 * w.inventory

	ratingBonus := max(0.0, (r.Rating()-3.5)*0.3*w.rating)

	priceBonus := 0.0
	switch c.Segment {
	case models.SegmentBudget:
		if r.PricePerBag < c.WillingnessToPay {
			priceBonus = (c.WillingnessToPay - r.PricePerBag) / c.WillingnessToPay * 0.4
		}
	case models.SegmentPremium:
		if r.PricePerBag > 100.0 {
			priceBonus = 0.1
		}
	}

	historyBonus := 0.0
	if si, ok := c.History.Interaction(r.ID); ok && si.Reservations > 0 {
		historyBonus = si.SuccessRate()*0.5 - si.CancellationRate()*1.0
	}

	categoryBonus := 0.0
	if pref, ok := c.CategoryPreference[r.BusinessType]; ok {
		categoryBonus = pref * 0.2
	}

	wasteBonus := 0.0
	if unsold > 5 {
		wasteBonus = min(2.0, unsold/5.0) * 0.5
	}

	revenueBonus := (r.PricePerBag * urgency / 200.0) * 0.3

	return c.StoreScore(r) + inventoryBonus + ratingBonus + priceBonus +
		historyBonus + categoryBonus + wasteBonus + revenueBonus
}

// discoveryCandidates scores unselected stores the customer never reserved
// at, keeping only those passing the segment's quality gate.
func (m *MultiObjectiveStrategy) discoveryCandidates(c *models.Customer, available []*models.Restaurant, display *displaySet) []scoredStore {
	var out []scoredStore
	for _, r := range available {
		if display.has(r.ID) || !neverReserved(c, r) || r.EstimatedBags < minDiscoveryBags {
			continue
		}
		rating := r.Rating()
		valueRatio := rating / r.PricePerBag
		safety := inventorySafety(r, 15.0)
		unsoldBonus := min(1.0, float64(r.Unsold())/10.0)

		switch c.Segment {
		case models.SegmentBudget:
			if r.PricePerBag <= c.WillingnessToPay*1.1 && rating >= 3.8 {
				afford := (c.WillingnessToPay - r.PricePerBag) / c.WillingnessToPay
				score := valueRatio*15.0 + afford*2.0 + safety*0.5 + rating*0.3 + unsoldBonus*0.8
				out = append(out, scoredStore{store: r, score: score})
			}
		case models.SegmentPremium:
			if rating >= 4.0 {
				score := rating*1.5 + valueRatio*10.0 + safety*0.5 + unsoldBonus*0.6
				out = append(out, scoredStore{store: r, score: score})
			}
		default:
			if rating >= 3.9 {
				score := rating + valueRatio*10.0 + safety*0.5 + unsoldBonus*0.7
				out = append(out, scoredStore{store: r, score: score})
			}
		}
	}
	return out
}

// competitiveCandidates keeps unselected stores whose rating per unit price
// clears the segment's bar.
func (m *MultiObjectiveStrategy) competitiveCandidates(c *models.Customer, available []*models.Restaurant, display *displaySet) []scoredStore {
	var out []scoredStore
	for _, r := range available {
		if display.has(r.ID) || r.EstimatedBags < minDiscoveryBags {
			continue
		}
		rating := r.Rating()
		valueRatio := rating / r.PricePerBag
		safety := inventorySafety(r, 15.0)

		switch c.Segment {
		case models.SegmentBudget:
			if r.PricePerBag <= c.WillingnessToPay*1.1 && valueRatio > 0.025 {
				afford := (c.WillingnessToPay - r.PricePerBag) / c.WillingnessToPay
				score := valueRatio*120.0 + afford*3.0 + safety*0.5 + rating*0.3
				out = append(out, scoredStore{store: r, score: score})
			}
		case models.SegmentPremium:
			if valueRatio > 0.03 && rating >= 3.8 {
				score := valueRatio*100.0 + safety*0.5 + rating*0.8
				out = append(out, scoredStore{store: r, score: score})
			}
		default:
			if valueRatio > 0.03 {
				score := valueRatio*100.0 + safety*0.5 + rating*0.5
				out = append(out, scoredStore{store: r, score: score})
			}
		}
	}
	return out
}

// averageUnsold averages unsold forecast bags over stores that still have
// some, across the whole market.
func averageUnsold(st *market.State) float64 {
	total, stores := 0, 0
	for _, r := range st.Restaurants {
		if u := r.Unsold(); u > 0 {
			total += u
			stores++
		}
	}
	if stores == 0 {
		return 0
	}
	return float64(total) / float64(stores)
}
