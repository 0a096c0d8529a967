// Package ranking decides which stores an arriving customer is shown.
package ranking

import (
	"errors"
	"fmt"
	"sort"

	"github.com/chrisdamba/bagsim/internal/market"
	"github.com/chrisdamba/bagsim/internal/models"
)

const (
	Baseline       = "baseline"
	MultiObjective = "multi_objective"
	Fairness       = "fairness"
	NearestFirst   = "nearest_first"
	WeightedLinear = "weighted_linear"
	Harmony        = "harmony"
)

var ErrUnknownStrategy = errors.New("unknown ranking strategy")

// validStrategies is ordered the way comparison reports list strategies.
var validStrategies = []string{Baseline, MultiObjective, Fairness, NearestFirst, WeightedLinear, Harmony}

// Strategy maps a customer and the current market to an ordered display set.
// Implementations only return stores that can still accept a reservation and
// never return more than n ids.
type Strategy interface {
	Name() string
	Select(c *models.Customer, st *market.State, n int) []int
}

// Names returns every registered strategy name.
func Names() []string {
	out := make([]string, len(validStrategies))
	copy(out, validStrategies)
	return out
}

func IsValid(name string) bool {
	for _, s := range validStrategies {
		if s == name {
			return true
		}
	}
	return false
}

// New creates a strategy by name. The empty name selects Baseline.
func New(name string) (Strategy, error) {
	switch name {
	case "", Baseline:
		return &BaselineStrategy{}, nil
	case MultiObjective:
		return &MultiObjectiveStrategy{}, nil
	case Fairness:
		return &FairnessStrategy{}, nil
	case NearestFirst:
		return &NearestFirstStrategy{}, nil
	case WeightedLinear:
		return &WeightedLinearStrategy{}, nil
	case Harmony:
		return &HarmonyStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w %q (valid: %v)", ErrUnknownStrategy, name, validStrategies)
	}
}

type scoredStore struct {
	store *models.Restaurant
	score float64
}

// sortByScore orders descending and keeps insertion order among equal scores.
func sortByScore(scores []scoredStore) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})
}

func topIDs(scores []scoredStore, n int) []int {
	count := min(n, len(scores))
	if count < 0 {
		count = 0
	}
	out := make([]int, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, scores[i].store.ID)
	}
	return out
}

// displaySet accumulates a display in slot order without duplicates.
type displaySet struct {
	ids      []int
	selected map[int]bool
	limit    int
}

func newDisplaySet(limit int) *displaySet {
	return &displaySet{
		ids:      make([]int, 0, max(limit, 0)),
		selected: make(map[int]bool),
		limit:    limit,
	}
}

func (d *displaySet) full() bool {
	return len(d.ids) >= d.limit
}

func (d *displaySet) has(id int) bool {
	return d.selected[id]
}

func (d *displaySet) add(id int) {
	if d.full() || d.selected[id] {
		return
	}
	d.ids = append(d.ids, id)
	d.selected[id] = true
}

// fill appends the best not-yet-selected stores until the display is full.
func (d *displaySet) fill(scores []scoredStore) {
	for _, s := range scores {
		if d.full() {
			return
		}
		d.add(s.store.ID)
	}
}

// bestOf returns the highest scoring candidate; ties go to the earliest.
func bestOf(candidates []scoredStore) (scoredStore, bool) {
	if len(candidates) == 0 {
		return scoredStore{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.score > best.score {
			best = c
		}
	}
	return best, true
}

func inRange(c *models.Customer, r *models.Restaurant) bool {
	return c.DistanceTo(r) <= models.MaxTravelDistance
}

// neverReserved reports whether c has no reservation on record at r.
func neverReserved(c *models.Customer, r *models.Restaurant) bool {
	return !c.HasReserved(r.ID)
}

// inventorySafety saturates at 1 once a store forecasts div bags.
func inventorySafety(r *models.Restaurant, div float64) float64 {
	return min(1.0, float64(r.EstimatedBags)/div)
}
