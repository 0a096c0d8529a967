package models

import "fmt"

// Timestamp is a minute-resolution time of day.
type Timestamp struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// MarketOpen is the time every simulated day starts at.
var MarketOpen = Timestamp{Hour: 8, Minute: 0}

func NewTimestamp(hour, minute int) Timestamp {
	return Timestamp{Hour: hour, Minute: minute}
}

// Minutes returns the number of minutes since midnight.
func (t Timestamp) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t Timestamp) Before(other Timestamp) bool {
	return t.Minutes() < other.Minutes()
}

func (t Timestamp) String() string {
	return fmt.Sprintf("%d:%02d", t.Hour, t.Minute)
}
