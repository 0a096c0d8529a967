package ranking

import (
	"github.com/chrisdamba/bagsim/internal/market"
	"github.com/chrisdamba/bagsim/internal/models"
)

const (
	nearestPricePenalty    = 0.01
	nearestDistancePenalty = 20.0
)

// NearestFirstStrategy pins the closest reachable store to the first slot and
// ranks the rest by utility, penalising price and distance.
type NearestFirstStrategy struct{}

func (nf *NearestFirstStrategy) Name() string { return NearestFirst }

func (nf *NearestFirstStrategy) Select(c *models.Customer, st *market.State, n int) []int {
	display := newDisplaySet(n)
	available := st.AvailableRestaurants()
	if len(available) == 0 || n <= 0 {
		return display.ids
	}

	var closest *models.Restaurant
	closestDistance := 0.0
	for _, r := range available {
		d := c.DistanceTo(r)
		if d > models.MaxTravelDistance {
			continue
		}
		if closest == nil || d < closestDistance {
			closest = r
			closestDistance = d
		}
	}
	if closest != nil {
		display.add(closest.ID)
	}

	scores := make([]scoredStore, 0, len(available))
	for _, r := range available {
		if display.has(r.ID) {
			continue
		}
		d := c.DistanceTo(r)
		if d > models.MaxTravelDistance {
			continue
		}
		score := c.StoreScore(r) - r.PricePerBag*nearestPricePenalty - d*nearestDistancePenalty
		scores = append(scores, scoredStore{store: r, score: score})
	}
	sortByScore(scores)
	display.fill(scores)
	return display.ids
}
