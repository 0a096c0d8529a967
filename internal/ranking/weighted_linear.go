package ranking

import (
	"github.com/chrisdamba/bagsim/internal/market"
	"github.com/chrisdamba/bagsim/internal/models"
)

const (
	linearPriceWeight  = -0.01
	linearRatingWeight = 1.5
	linearUnsoldWeight = 0.1

	// maxLinearDisplay caps the display width whatever n is.
	maxLinearDisplay = 5
)

// WeightedLinearStrategy scores reachable stores on price, rating and unsold
// inventory alone.
type WeightedLinearStrategy struct{}

func (w *WeightedLinearStrategy) Name() string { return WeightedLinear }

func (w *WeightedLinearStrategy) Select(c *models.Customer, st *market.State, n int) []int {
	available := st.AvailableRestaurants()
	scores := make([]scoredStore, 0, len(available))
	for _, r := range available {
		if !inRange(c, r) {
			continue
		}
		score := linearPriceWeight*r.PricePerBag +
			linearRatingWeight*r.Rating() +
			linearUnsoldWeight*float64(r.Unsold())
		scores = append(scores, scoredStore{store: r, score: score})
	}
	sortByScore(scores)
	return topIDs(scores, min(n, maxLinearDisplay))
}
