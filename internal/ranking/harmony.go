package ranking

import (
	"github.com/chrisdamba/bagsim/internal/market"
	"github.com/chrisdamba/bagsim/internal/models"
)

const (
	harmonyDirectShare    = 0.7
	harmonyHighWaste      = 10
	harmonyDiscoveryBags  = 6
	harmonyDiscoveryScore = 3.8
)

// HarmonyStrategy combines satisfaction, waste, exposure fairness and revenue
// signals. It counts an impression for every store it returns.
type HarmonyStrategy struct{}

func (h *HarmonyStrategy) Name() string { return Harmony }

func (h *HarmonyStrategy) Select(c *models.Customer, st *market.State, n int) []int {
	display := newDisplaySet(n)
	available := st.AvailableRestaurants()
	if len(available) == 0 || n <= 0 {
		return display.ids
	}

	meanImpressions := st.MeanImpressions()
	scores := make([]scoredStore, 0, len(available))
	for _, r := range available {
		if !inRange(c, r) {
			continue
		}
		st.TouchImpression(r.ID)
		scores = append(scores, scoredStore{store: r, score: h.score(c, r, st.Impressions[r.ID], meanImpressions)})
	}
	sortByScore(scores)

	direct := int(float64(n) * harmonyDirectShare)
	for i := 0; i < direct && i < len(scores); i++ {
		display.add(scores[i].store.ID)
	}

	if !display.full() {
		for _, s := range scores {
			if !display.has(s.store.ID) && s.store.Unsold() >= harmonyHighWaste {
				display.add(s.store.ID)
				break
			}
		}
	}

	if !display.full() {
		for _, s := range scores {
			r := s.store
			if display.has(r.ID) || !neverReserved(c, r) {
				continue
			}
			if r.Rating() >= harmonyDiscoveryScore && r.EstimatedBags >= harmonyDiscoveryBags {
				display.add(r.ID)
				break
			}
		}
	}

	display.fill(scores)
	st.RecordImpressions(display.ids)
	return display.ids
}

func (h *HarmonyStrategy) score(c *models.Customer, r *models.Restaurant, impressions int, meanImpressions float64) float64 {
	satisfaction := 0.0
	switch {
	case c.Segment == models.SegmentPremium && r.Rating() >= 4.0:
		satisfaction = 0.5
	case c.Segment == models.SegmentBudget && r.PricePerBag <= c.WillingnessToPay:
		satisfaction = 0.4
	case c.Segment == models.SegmentRegular && r.Rating() >= 3.8:
		satisfaction = 0.3
	}
	if si, ok := c.History.Interaction(r.ID); ok && si.Successes > 0 {
		satisfaction += si.SuccessRate() * 0.3
	}

	unsold := r.Unsold()
	waste := float64(unsold) * 0.08
	if unsold > 12 {
		waste += 0.6
	}

	fairness := 0.0
	switch {
	case float64(impressions) < meanImpressions*0.5:
		fairness = 0.8
	case float64(impressions) > meanImpressions*1.5:
		fairness = -0.4
	}

	revenue := (r.PricePerBag / 100.0) * inventorySafety(r, 10.0) * 0.3

	quality := 0.0
	if r.EstimatedBags < 5 {
		quality = -1.5
	}

	return c.StoreScore(r) + satisfaction + waste + fairness + revenue + quality
}
