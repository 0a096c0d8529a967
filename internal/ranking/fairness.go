package ranking

import (
	"math"

	"github.com/chrisdamba/bagsim/internal/market"
	"github.com/chrisdamba/bagsim/internal/models"
)

// FairnessStrategy damps a store's utility by how often it was already shown.
type FairnessStrategy struct{}

func (f *FairnessStrategy) Name() string { return Fairness }

func (f *FairnessStrategy) Select(c *models.Customer, st *market.State, n int) []int {
	available := st.AvailableRestaurants()
	scores := make([]scoredStore, 0, len(available))
	for _, r := range available {
		damping := math.Log(float64(st.Impressions[r.ID])+1.0) + 1.0
		scores = append(scores, scoredStore{store: r, score: c.StoreScore(r) / damping})
	}
	sortByScore(scores)
	return topIDs(scores, n)
}
