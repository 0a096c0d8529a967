package models

import (
	"errors"
	"fmt"
	"math"
)

const (
	DefaultMaxBagsPerCustomer = 3
	MinRating                 = 1.0
	MaxRating                 = 5.0
	ConfirmationRatingStep    = 0.01
	CancellationRatingStep    = 0.05
)

var ErrInvalidRestaurant = errors.New("invalid store")

// Restaurant is a store offering surprise bags. EstimatedBags drives display
// decisions during the day; ActualBags is only known at settlement.
type Restaurant struct {
	ID                 int      `json:"business_id"`
	Name               string   `json:"business_name"`
	Branch             string   `json:"branch"`
	BusinessType       string   `json:"business_type"`
	EstimatedBags      int      `json:"estimated_bags"`
	ActualBags         int      `json:"actual_bags"`
	PricePerBag        float64  `json:"price_per_bag"`
	Location           Location `json:"location"`
	GeneralRanking     float64  `json:"general_ranking"`
	ReservedCount      int      `json:"reserved_count"`
	HasInventory       bool     `json:"has_inventory"`
	MaxBagsPerCustomer int      `json:"max_bags_per_customer"`

	TotalOrdersConfirmed int     `json:"total_orders_confirmed"`
	TotalOrdersCancelled int     `json:"total_orders_cancelled"`
	DailyOrdersConfirmed int     `json:"daily_orders_confirmed"`
	DailyOrdersCancelled int     `json:"daily_orders_cancelled"`
	InitialRating        float64 `json:"initial_rating"`
	RatingAtDayStart     float64 `json:"rating_at_day_start"`
}

func NewRestaurant(id int, name, branch, businessType string, estimatedBags int, rating, price float64, location Location) *Restaurant {
	return &Restaurant{
		ID:                 id,
		Name:               name,
		Branch:             branch,
		BusinessType:       businessType,
		EstimatedBags:      estimatedBags,
		PricePerBag:        price,
		Location:           location,
		GeneralRanking:     rating,
		HasInventory:       true,
		MaxBagsPerCustomer: DefaultMaxBagsPerCustomer,
		InitialRating:      rating,
		RatingAtDayStart:   rating,
	}
}

func (r *Restaurant) Rating() float64 {
	return r.GeneralRanking
}

// DisplayName joins name and branch the way reports show a store.
func (r *Restaurant) DisplayName() string {
	if r.Branch == "" {
		return r.Name
	}
	return r.Name + " - " + r.Branch
}

// CanAcceptReservation checks the forecast, not the realized inventory.
func (r *Restaurant) CanAcceptReservation() bool {
	return r.HasInventory && r.ReservedCount < r.EstimatedBags
}

// Unsold is the forecast inventory nobody has reserved yet, never negative.
func (r *Restaurant) Unsold() int {
	return max(0, r.EstimatedBags-r.ReservedCount)
}

func (r *Restaurant) SetActualInventory(bags int) {
	r.ActualBags = max(0, bags)
}

func (r *Restaurant) UpdateRatingOnConfirmation() {
	r.TotalOrdersConfirmed++
	r.DailyOrdersConfirmed++
	r.GeneralRanking = min(MaxRating, r.GeneralRanking+ConfirmationRatingStep)
}

func (r *Restaurant) UpdateRatingOnCancellation() {
	r.TotalOrdersCancelled++
	r.DailyOrdersCancelled++
	r.GeneralRanking = max(MinRating, r.GeneralRanking-CancellationRatingStep)
}

// MarkRunStart pins the rating a run's rating drift is reported against.
func (r *Restaurant) MarkRunStart() {
	r.InitialRating = r.GeneralRanking
}

// ResetDaily clears per-day counters; ActualBags is sampled separately.
func (r *Restaurant) ResetDaily() {
	r.RatingAtDayStart = r.GeneralRanking
	r.DailyOrdersConfirmed = 0
	r.DailyOrdersCancelled = 0
	r.ReservedCount = 0
	r.HasInventory = true
}

func (r *Restaurant) Clone() *Restaurant {
	out := *r
	return &out
}

// Validate rejects stores no run could use, whichever source they came from.
func (r *Restaurant) Validate() error {
	var problem string
	switch {
	case !r.Location.IsFinite():
		problem = "non-finite coordinates"
	case r.EstimatedBags < 0:
		problem = fmt.Sprintf("negative bag estimate %d", r.EstimatedBags)
	case math.IsNaN(r.PricePerBag) || math.IsInf(r.PricePerBag, 0) || r.PricePerBag <= 0:
		problem = fmt.Sprintf("non-positive price %g", r.PricePerBag)
	case math.IsNaN(r.GeneralRanking) || r.GeneralRanking < MinRating || r.GeneralRanking > MaxRating:
		problem = fmt.Sprintf("rating %g outside [%g, %g]", r.GeneralRanking, MinRating, MaxRating)
	default:
		return nil
	}
	return fmt.Errorf("%w %d: %s", ErrInvalidRestaurant, r.ID, problem)
}
