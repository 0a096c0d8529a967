package models

const (
	CategoryBakery     = "bakery"
	CategoryCafe       = "cafe"
	CategoryRestaurant = "restaurant"

	EventReservationCreated = "reservation_created"
	EventReservationSettled = "reservation_settled"
	EventDaySummary         = "day_summary"

	ChurnNoStores        = "no_stores_displayed"
	ChurnBelowThreshold  = "below_threshold"
	ChurnNoEligibleStore = "no_eligible_store"
	ChurnStoreFull       = "store_full"
)
