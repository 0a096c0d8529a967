// Package market holds the mutable world a single simulation run operates on.
package market

import (
	"github.com/chrisdamba/bagsim/internal/models"
)

// State is one run's market. It is not safe for concurrent use; parallel
// runs each own a separate State.
type State struct {
	Restaurants       []*models.Restaurant
	Customers         map[int]*models.Customer
	Reservations      []*models.Reservation
	CurrentTime       models.Timestamp
	NextReservationID int
	// Impressions counts how often each store was displayed. It survives day
	// resets and is only cleared by ResetImpressions.
	Impressions map[int]int

	byID map[int]*models.Restaurant
}

func NewState(restaurants []*models.Restaurant) *State {
	st := &State{
		Restaurants:       restaurants,
		Customers:         make(map[int]*models.Customer),
		CurrentTime:       models.MarketOpen,
		NextReservationID: 1,
		Impressions:       make(map[int]int),
	}
	st.RebuildIndex()
	return st
}

// RebuildIndex refreshes the id lookup after the store slice changes.
func (s *State) RebuildIndex() {
	s.byID = make(map[int]*models.Restaurant, len(s.Restaurants))
	for _, r := range s.Restaurants {
		s.byID[r.ID] = r
	}
}

// Restaurant returns the store with id, or nil.
func (s *State) Restaurant(id int) *models.Restaurant {
	return s.byID[id]
}

func (s *State) Customer(id int) *models.Customer {
	return s.Customers[id]
}

func (s *State) AddCustomer(c *models.Customer) {
	s.Customers[c.ID] = c
}

// AvailableRestaurants returns the stores that can still take a reservation,
// in insertion order.
func (s *State) AvailableRestaurants() []*models.Restaurant {
	out := make([]*models.Restaurant, 0, len(s.Restaurants))
	for _, r := range s.Restaurants {
		if r.CanAcceptReservation() {
			out = append(out, r)
		}
	}
	return out
}

// AllocateReservationID hands out the next id of the day.
func (s *State) AllocateReservationID() int {
	id := s.NextReservationID
	s.NextReservationID++
	return id
}

func (s *State) AppendReservation(r *models.Reservation) {
	s.Reservations = append(s.Reservations, r)
}

// RecordImpressions counts one display for every id.
func (s *State) RecordImpressions(ids []int) {
	for _, id := range ids {
		s.Impressions[id]++
	}
}

// TouchImpression registers id in the impression table without counting a
// display.
func (s *State) TouchImpression(id int) {
	if _, ok := s.Impressions[id]; !ok {
		s.Impressions[id] = 0
	}
}

// MeanImpressions averages over the stores present in the impression table
// and is 1.0 while the table is empty.
func (s *State) MeanImpressions() float64 {
	if len(s.Impressions) == 0 {
		return 1.0
	}
	total := 0
	for _, n := range s.Impressions {
		total += n
	}
	return float64(total) / float64(len(s.Impressions))
}

// ResetDay clears the reservation log and rewinds the clock. Impressions
// persist.
func (s *State) ResetDay() {
	s.Reservations = nil
	s.CurrentTime = models.MarketOpen
	s.NextReservationID = 1
	s.Customers = make(map[int]*models.Customer)
	s.RebuildIndex()
}

func (s *State) ResetImpressions() {
	s.Impressions = make(map[int]int)
}

// ReservationsFor returns the day's reservations at one store, in log order.
func (s *State) ReservationsFor(restaurantID int) []*models.Reservation {
	var out []*models.Reservation
	for _, r := range s.Reservations {
		if r.RestaurantID == restaurantID {
			out = append(out, r)
		}
	}
	return out
}
