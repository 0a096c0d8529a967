package models

import (
	"errors"
	"fmt"
	"strings"
)

type Segment string

const (
	SegmentBudget  Segment = "budget"
	SegmentRegular Segment = "regular"
	SegmentPremium Segment = "premium"
)

var ErrUnknownSegment = errors.New("unknown customer segment")

// Segments lists the known segments in a stable order.
var Segments = []Segment{SegmentBudget, SegmentRegular, SegmentPremium}

// ParseSegment normalises s and rejects anything that is not a known segment.
func ParseSegment(s string) (Segment, error) {
	seg := Segment(strings.ToLower(strings.TrimSpace(s)))
	if !seg.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSegment, s)
	}
	return seg, nil
}

func (s Segment) Valid() bool {
	switch s {
	case SegmentBudget, SegmentRegular, SegmentPremium:
		return true
	}
	return false
}

const (
	DefaultLoyalty             = 0.8
	LoyaltyCancellationPenalty = 0.1
	LoyaltyConfirmationReward  = 0.05
	CategoryPreferenceStep     = 0.1

	// TooFarScore is returned by StoreScore for stores outside the pickup radius.
	TooFarScore = -100.0

	// distanceScoreWeight scales the closeness term of the utility.
	distanceScoreWeight = 1.5
)

// DefaultCategories seeds every new customer's category preferences.
var DefaultCategories = []string{CategoryBakery, CategoryCafe, CategoryRestaurant}

// Weights controls how a customer trades rating, price and novelty off.
type Weights struct {
	Rating  float64 `json:"rating_w"`
	Price   float64 `json:"price_w"`
	Novelty float64 `json:"novelty_w"`
}

// StoreInteraction aggregates one customer's dealings with one store.
type StoreInteraction struct {
	Reservations  int `json:"reservations"`
	Successes     int `json:"successes"`
	Cancellations int `json:"cancellations"`
}

func (si StoreInteraction) SuccessRate() float64 {
	if si.Reservations == 0 {
		return 0
	}
	return float64(si.Successes) / float64(si.Reservations)
}

func (si StoreInteraction) CancellationRate() float64 {
	if si.Reservations == 0 {
		return 0
	}
	return float64(si.Cancellations) / float64(si.Reservations)
}

type CustomerHistory struct {
	Visits              int                       `json:"visits"`
	Reservations        int                       `json:"reservations"`
	Successes           int                       `json:"successes"`
	Cancellations       int                       `json:"cancellations"`
	LastReservationTime Timestamp                 `json:"last_reservation_time"`
	CategoriesReserved  map[string]int            `json:"categories_reserved"`
	StoreInteractions   map[int]*StoreInteraction `json:"store_interactions"`
}

func NewCustomerHistory() CustomerHistory {
	return CustomerHistory{
		CategoriesReserved: make(map[string]int),
		StoreInteractions:  make(map[int]*StoreInteraction),
	}
}

// Interaction returns a copy of the record for storeID; ok is false when the
// customer never interacted with the store.
func (h *CustomerHistory) Interaction(storeID int) (StoreInteraction, bool) {
	si, ok := h.StoreInteractions[storeID]
	if !ok {
		return StoreInteraction{}, false
	}
	return *si, true
}

func (h *CustomerHistory) interaction(storeID int) *StoreInteraction {
	if h.StoreInteractions == nil {
		h.StoreInteractions = make(map[int]*StoreInteraction)
	}
	si, ok := h.StoreInteractions[storeID]
	if !ok {
		si = &StoreInteraction{}
		h.StoreInteractions[storeID] = si
	}
	return si
}

func (h CustomerHistory) clone() CustomerHistory {
	out := h
	out.CategoriesReserved = make(map[string]int, len(h.CategoriesReserved))
	for k, v := range h.CategoriesReserved {
		out.CategoriesReserved[k] = v
	}
	out.StoreInteractions = make(map[int]*StoreInteraction, len(h.StoreInteractions))
	for k, v := range h.StoreInteractions {
		si := *v
		out.StoreInteractions[k] = &si
	}
	return out
}

type Customer struct {
	ID                 int                `json:"id"`
	Name               string             `json:"name"`
	Location           Location           `json:"location"`
	Segment            Segment            `json:"segment"`
	WillingnessToPay   float64            `json:"willingness_to_pay"`
	Weights            Weights            `json:"weights"`
	Loyalty            float64            `json:"loyalty"`
	InitialLoyalty     float64            `json:"initial_loyalty"`
	LeavingThreshold   float64            `json:"leaving_threshold"`
	History            CustomerHistory    `json:"history"`
	Churned            bool               `json:"churned"`
	CategoryPreference map[string]float64 `json:"category_preference"`
	StoreValuations    map[int]float64    `json:"store_valuations,omitempty"`
}

func NewCustomer(id int, location Location, name string, segment Segment, wtp float64, weights Weights, leavingThreshold float64) *Customer {
	c := &Customer{
		ID:                 id,
		Name:               name,
		Location:           location,
		Segment:            segment,
		WillingnessToPay:   wtp,
		Weights:            weights,
		Loyalty:            DefaultLoyalty,
		InitialLoyalty:     DefaultLoyalty,
		LeavingThreshold:   leavingThreshold,
		History:            NewCustomerHistory(),
		CategoryPreference: make(map[string]float64, len(DefaultCategories)),
		StoreValuations:    make(map[int]float64),
	}
	for _, category := range DefaultCategories {
		c.CategoryPreference[category] = 1.0
	}
	return c
}

func (c *Customer) DistanceTo(r *Restaurant) float64 {
	return c.Location.Distance(r.Location)
}

// StoreScore is the customer's personal utility for a store. Stores outside
// the pickup radius score TooFarScore. The price term goes negative when the
// bag costs more than the customer is willing to pay.
func (c *Customer) StoreScore(r *Restaurant) float64 {
	distance := c.DistanceTo(r)
	if distance > MaxTravelDistance {
		return TooFarScore
	}

	ratingScore := c.Weights.Rating * r.Rating()
	priceScore := c.Weights.Price * (c.WillingnessToPay - r.PricePerBag) / c.WillingnessToPay

	noveltyScore := c.Weights.Novelty
	if count, ok := c.History.CategoriesReserved[r.BusinessType]; ok {
		noveltyScore = c.Weights.Novelty * (1.0 / (1.0 + float64(count)))
	}

	distanceScore := (1.0 - distance/MaxTravelDistance) * distanceScoreWeight

	return ratingScore + priceScore + noveltyScore + distanceScore
}

// DecisionThreshold is the minimum utility the customer needs to transact.
// Less loyal customers are harder to convert.
func (c *Customer) DecisionThreshold() float64 {
	return c.LeavingThreshold + (1.0-c.Loyalty)*2.0
}

// HasReserved reports whether the customer ever reserved at storeID.
func (c *Customer) HasReserved(storeID int) bool {
	si, ok := c.History.Interaction(storeID)
	return ok && si.Reservations > 0
}

func (c *Customer) UpdateLoyalty(cancelled bool) {
	if cancelled {
		c.Loyalty = max(0.0, c.Loyalty-LoyaltyCancellationPenalty)
		return
	}
	c.Loyalty = min(1.0, c.Loyalty+LoyaltyConfirmationReward)
}

func (c *Customer) UpdateCategoryPreference(category string) {
	if c.CategoryPreference == nil {
		c.CategoryPreference = make(map[string]float64)
	}
	c.CategoryPreference[category] += CategoryPreferenceStep
}

func (c *Customer) RecordVisit() {
	c.History.Visits++
}

func (c *Customer) RecordReservationAttempt(storeID int, category string, t Timestamp) {
	c.History.Reservations++
	c.History.LastReservationTime = t
	if c.History.CategoriesReserved == nil {
		c.History.CategoriesReserved = make(map[string]int)
	}
	c.History.CategoriesReserved[category]++
	c.History.interaction(storeID).Reservations++
}

func (c *Customer) RecordReservationSuccess(storeID int, category string) {
	c.History.Successes++
	c.History.interaction(storeID).Successes++
	c.UpdateCategoryPreference(category)
}

// RecordReservationCancellation also costs the customer loyalty.
func (c *Customer) RecordReservationCancellation(storeID int) {
	c.History.Cancellations++
	c.History.interaction(storeID).Cancellations++
	c.UpdateLoyalty(true)
}

// SetInitialLoyalty sets the loyalty the customer starts every run with.
func (c *Customer) SetInitialLoyalty(loyalty float64) {
	c.InitialLoyalty = loyalty
	c.Loyalty = loyalty
}

// ResetForRun clears everything a previous run accumulated on the customer
// and restores its starting loyalty.
func (c *Customer) ResetForRun() {
	c.Churned = false
	c.History = NewCustomerHistory()
	c.Loyalty = c.InitialLoyalty
}

// Clone returns a deep copy, so independent runs never share mutable state.
func (c *Customer) Clone() *Customer {
	out := *c
	out.History = c.History.clone()
	out.CategoryPreference = make(map[string]float64, len(c.CategoryPreference))
	for k, v := range c.CategoryPreference {
		out.CategoryPreference[k] = v
	}
	out.StoreValuations = make(map[int]float64, len(c.StoreValuations))
	for k, v := range c.StoreValuations {
		out.StoreValuations[k] = v
	}
	return &out
}
