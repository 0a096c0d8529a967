package models

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
)

// Reservation is created PENDING during the day and resolved exactly once at
// settlement.
type Reservation struct {
	ID              int               `json:"reservation_id"`
	CustomerID      int               `json:"customer_id"`
	RestaurantID    int               `json:"restaurant_id"`
	ReservationTime Timestamp         `json:"reservation_time"`
	Status          ReservationStatus `json:"status"`
	BagsReceived    int               `json:"bags_received"`
}

func NewReservation(id, customerID, restaurantID int, t Timestamp) *Reservation {
	return &Reservation{
		ID:              id,
		CustomerID:      customerID,
		RestaurantID:    restaurantID,
		ReservationTime: t,
		Status:          StatusPending,
	}
}

func (r *Reservation) Pending() bool {
	return r.Status == StatusPending
}

func (r *Reservation) Confirm(bags int) {
	if !r.Pending() {
		return
	}
	r.Status = StatusConfirmed
	r.BagsReceived = bags
}

func (r *Reservation) Cancel() {
	if !r.Pending() {
		return
	}
	r.Status = StatusCancelled
	r.BagsReceived = 0
}
