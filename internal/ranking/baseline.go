package ranking

import (
	"github.com/chrisdamba/bagsim/internal/market"
	"github.com/chrisdamba/bagsim/internal/models"
)

// BaselineStrategy shows the highest rated stores regardless of who is asking.
type BaselineStrategy struct{}

func (b *BaselineStrategy) Name() string { return Baseline }

func (b *BaselineStrategy) Select(c *models.Customer, st *market.State, n int) []int {
	available := st.AvailableRestaurants()
	scores := make([]scoredStore, 0, len(available))
	for _, r := range available {
		scores = append(scores, scoredStore{store: r, score: r.Rating()})
	}
	sortByScore(scores)
	return topIDs(scores, n)
}
