package simulator

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xitongsys/parquet-go/schema"

	"github.com/chrisdamba/bagsim/internal/metrics"
	"github.com/chrisdamba/bagsim/internal/models"
)

const (
	TopicReservationCreated = models.EventReservationCreated + "_events"
	TopicReservationSettled = models.EventReservationSettled + "_events"
	TopicDaySummary         = models.EventDaySummary + "_events"
)

// EventHeader identifies the run, day and simulated time an event belongs to.
// Events copy it into their own fields so the parquet schema stays flat.
type EventHeader struct {
	RunID     string
	Strategy  string
	Day       int
	EventType string
	SimTime   models.Timestamp
}

// ReservationCreatedEvent represents a customer reserving a bag
type ReservationCreatedEvent struct {
	RunID         string  `json:"runId" parquet:"name=runId,type=BYTE_ARRAY,convertedtype=UTF8"`
	Strategy      string  `json:"strategy" parquet:"name=strategy,type=BYTE_ARRAY,convertedtype=UTF8"`
	Day           int64   `json:"day" parquet:"name=day,type=INT64"`
	EventType     string  `json:"eventType" parquet:"name=eventType,type=BYTE_ARRAY,convertedtype=UTF8"`
	SimTime       string  `json:"simTime" parquet:"name=simTime,type=BYTE_ARRAY,convertedtype=UTF8"`
	ReservationID int64   `json:"reservationId" parquet:"name=reservationId,type=INT64"`
	CustomerID    int64   `json:"customerId" parquet:"name=customerId,type=INT64"`
	RestaurantID  int64   `json:"restaurantId" parquet:"name=restaurantId,type=INT64"`
	PricePerBag   float64 `json:"pricePerBag" parquet:"name=pricePerBag,type=DOUBLE"`
	Displayed     string  `json:"displayed" parquet:"name=displayed,type=BYTE_ARRAY,convertedtype=UTF8"`
}

// ReservationSettledEvent represents a reservation resolved at end of day
type ReservationSettledEvent struct {
	RunID         string  `json:"runId" parquet:"name=runId,type=BYTE_ARRAY,convertedtype=UTF8"`
	Strategy      string  `json:"strategy" parquet:"name=strategy,type=BYTE_ARRAY,convertedtype=UTF8"`
	Day           int64   `json:"day" parquet:"name=day,type=INT64"`
	EventType     string  `json:"eventType" parquet:"name=eventType,type=BYTE_ARRAY,convertedtype=UTF8"`
	SimTime       string  `json:"simTime" parquet:"name=simTime,type=BYTE_ARRAY,convertedtype=UTF8"`
	ReservationID int64   `json:"reservationId" parquet:"name=reservationId,type=INT64"`
	CustomerID    int64   `json:"customerId" parquet:"name=customerId,type=INT64"`
	RestaurantID  int64   `json:"restaurantId" parquet:"name=restaurantId,type=INT64"`
	Status        string  `json:"status" parquet:"name=status,type=BYTE_ARRAY,convertedtype=UTF8"`
	BagsReceived  int64   `json:"bagsReceived" parquet:"name=bagsReceived,type=INT64"`
	Revenue       float64 `json:"revenue" parquet:"name=revenue,type=DOUBLE"`
}

// DaySummaryEvent carries one day's aggregate outcome
type DaySummaryEvent struct {
	RunID            string  `json:"runId" parquet:"name=runId,type=BYTE_ARRAY,convertedtype=UTF8"`
	Strategy         string  `json:"strategy" parquet:"name=strategy,type=BYTE_ARRAY,convertedtype=UTF8"`
	Day              int64   `json:"day" parquet:"name=day,type=INT64"`
	EventType        string  `json:"eventType" parquet:"name=eventType,type=BYTE_ARRAY,convertedtype=UTF8"`
	SimTime          string  `json:"simTime" parquet:"name=simTime,type=BYTE_ARRAY,convertedtype=UTF8"`
	Arrivals         int64   `json:"arrivals" parquet:"name=arrivals,type=INT64"`
	CustomersWhoLeft int64   `json:"customersWhoLeft" parquet:"name=customersWhoLeft,type=INT64"`
	BagsSold         int64   `json:"bagsSold" parquet:"name=bagsSold,type=INT64"`
	BagsCancelled    int64   `json:"bagsCancelled" parquet:"name=bagsCancelled,type=INT64"`
	BagsUnsold       int64   `json:"bagsUnsold" parquet:"name=bagsUnsold,type=INT64"`
	RevenueGenerated float64 `json:"revenueGenerated" parquet:"name=revenueGenerated,type=DOUBLE"`
	RevenueLost      float64 `json:"revenueLost" parquet:"name=revenueLost,type=DOUBLE"`
	GiniExposure     float64 `json:"giniExposure" parquet:"name=giniExposure,type=DOUBLE"`
}

func newReservationCreatedEvent(h EventHeader, res *models.Reservation, price float64, displayed []int) *ReservationCreatedEvent {
	ids := make([]string, len(displayed))
	for i, id := range displayed {
		ids[i] = strconv.Itoa(id)
	}
	return &ReservationCreatedEvent{
		RunID:         h.RunID,
		Strategy:      h.Strategy,
		Day:           int64(h.Day),
		EventType:     h.EventType,
		SimTime:       h.SimTime.String(),
		ReservationID: int64(res.ID),
		CustomerID:    int64(res.CustomerID),
		RestaurantID:  int64(res.RestaurantID),
		PricePerBag:   price,
		Displayed:     strings.Join(ids, ","),
	}
}

func newReservationSettledEvent(h EventHeader, res *models.Reservation, price float64) *ReservationSettledEvent {
	return &ReservationSettledEvent{
		RunID:         h.RunID,
		Strategy:      h.Strategy,
		Day:           int64(h.Day),
		EventType:     h.EventType,
		SimTime:       h.SimTime.String(),
		ReservationID: int64(res.ID),
		CustomerID:    int64(res.CustomerID),
		RestaurantID:  int64(res.RestaurantID),
		Status:        string(res.Status),
		BagsReceived:  int64(res.BagsReceived),
		Revenue:       price * float64(res.BagsReceived),
	}
}

func newDaySummaryEvent(h EventHeader, m *metrics.Metrics) *DaySummaryEvent {
	return &DaySummaryEvent{
		RunID:            h.RunID,
		Strategy:         h.Strategy,
		Day:              int64(h.Day),
		EventType:        h.EventType,
		SimTime:          h.SimTime.String(),
		Arrivals:         int64(m.TotalArrivals),
		CustomersWhoLeft: int64(m.CustomersWhoLeft),
		BagsSold:         int64(m.TotalBagsSold),
		BagsCancelled:    int64(m.TotalBagsCancelled),
		BagsUnsold:       int64(m.TotalBagsUnsold),
		RevenueGenerated: m.TotalRevenueGenerated,
		RevenueLost:      m.TotalRevenueLost,
		GiniExposure:     m.GiniExposure,
	}
}

// newEventForTopic returns an empty event of the type published on topic.
func newEventForTopic(topic string) (interface{}, error) {
	switch topic {
	case TopicReservationCreated:
		return new(ReservationCreatedEvent), nil
	case TopicReservationSettled:
		return new(ReservationSettledEvent), nil
	case TopicDaySummary:
		return new(DaySummaryEvent), nil
	default:
		return nil, fmt.Errorf("unknown event topic: %s", topic)
	}
}

// decodeEvent turns a published message back into its typed event.
func decodeEvent(topic string, msg []byte) (interface{}, error) {
	ev, err := newEventForTopic(topic)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(msg, ev); err != nil {
		return nil, fmt.Errorf("failed to decode %s event: %w", topic, err)
	}
	return ev, nil
}

func GetSchema(topic string) (*schema.SchemaHandler, error) {
	ev, err := newEventForTopic(topic)
	if err != nil {
		return nil, err
	}
	sh, err := schema.NewSchemaHandlerFromStruct(ev)
	if err != nil {
		return nil, fmt.Errorf("error creating schema for %s: %w", topic, err)
	}
	return sh, nil
}
