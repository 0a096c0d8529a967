package factories

import (
	"math/rand"

	"github.com/jaswdr/faker"

	"github.com/chrisdamba/bagsim/internal/models"
)

// Synthetic customers are spread over this box, which covers the default
// catalogue.
const (
	minCustomerLon = 31.2
	maxCustomerLon = 31.3
	minCustomerLat = 30.0
	maxCustomerLat = 30.1

	maxStoreValuation = 5.0
)

// CustomerFactory produces customers for a run. With a template pool it
// recycles the templates cyclically; otherwise it generates random ones.
type CustomerFactory struct {
	rng  *rand.Rand
	fake faker.Faker
	pool []*models.Customer
}

func NewCustomerFactory(rng *rand.Rand, pool []*models.Customer) *CustomerFactory {
	return &CustomerFactory{
		rng:  rng,
		fake: faker.NewWithSeed(rng),
		pool: pool,
	}
}

// CreateCustomer returns customer id. Store valuations are drawn for every
// given store when the customer is synthetic.
func (cf *CustomerFactory) CreateCustomer(id int, restaurants []*models.Restaurant) *models.Customer {
	if len(cf.pool) > 0 {
		c := cf.pool[id%len(cf.pool)].Clone()
		c.ID = id
		c.ResetForRun()
		return c
	}

	segment := models.Segments[cf.rng.Intn(len(models.Segments))]
	var wtp, leaving float64
	var w models.Weights
	switch segment {
	case models.SegmentBudget:
		wtp = 80.0 + float64(cf.rng.Intn(40))
		w.Rating = 0.5 + float64(cf.rng.Intn(100))/200.0
		w.Price = 1.5 + float64(cf.rng.Intn(100))/200.0
		w.Novelty = 0.3 + float64(cf.rng.Intn(100))/200.0
		leaving = 2.0 + float64(cf.rng.Intn(30))/10.0
	case models.SegmentRegular:
		wtp = 120.0 + float64(cf.rng.Intn(60))
		w.Rating = 1.0 + float64(cf.rng.Intn(100))/200.0
		w.Price = 1.0 + float64(cf.rng.Intn(100))/200.0
		w.Novelty = 0.5 + float64(cf.rng.Intn(100))/200.0
		leaving = 3.0 + float64(cf.rng.Intn(40))/10.0
	default:
		wtp = 180.0 + float64(cf.rng.Intn(80))
		w.Rating = 1.5 + float64(cf.rng.Intn(100))/200.0
		w.Price = 0.5 + float64(cf.rng.Intn(100))/200.0
		w.Novelty = 0.8 + float64(cf.rng.Intn(100))/200.0
		leaving = 4.0 + float64(cf.rng.Intn(40))/10.0
	}

	location := models.Location{
		Lon: minCustomerLon + cf.rng.Float64()*(maxCustomerLon-minCustomerLon),
		Lat: minCustomerLat + cf.rng.Float64()*(maxCustomerLat-minCustomerLat),
	}
	c := models.NewCustomer(id, location, cf.fake.Person().Name(), segment, wtp, w, leaving)
	for _, r := range restaurants {
		c.StoreValuations[r.ID] = cf.rng.Float64() * maxStoreValuation
	}
	return c
}

// CSVDefaults fills the profile fields a customer file may leave out.
type CSVDefaults struct {
	WillingnessToPay float64
	Weights          models.Weights
	LeavingThreshold float64
}

// DefaultSegment draws a segment uniformly.
func DefaultSegment(rng *rand.Rand) models.Segment {
	return models.Segments[rng.Intn(len(models.Segments))]
}

// NewCSVDefaults draws the per-segment defaults for a customer row.
func NewCSVDefaults(rng *rand.Rand, segment models.Segment) CSVDefaults {
	var d CSVDefaults
	switch segment {
	case models.SegmentBudget:
		d.WillingnessToPay = 80.0 + float64(rng.Intn(40))
		d.Weights.Rating = 0.5 + float64(rng.Intn(100))/200.0
		d.Weights.Price = 1.5 + float64(rng.Intn(100))/200.0
		d.Weights.Novelty = 0.2 + float64(rng.Intn(60))/200.0
		d.LeavingThreshold = 1.5 + float64(rng.Intn(20))/20.0
	case models.SegmentRegular:
		d.WillingnessToPay = 120.0 + float64(rng.Intn(60))
		d.Weights.Rating = 1.0 + float64(rng.Intn(100))/200.0
		d.Weights.Price = 0.8 + float64(rng.Intn(80))/200.0
		d.Weights.Novelty = 0.4 + float64(rng.Intn(60))/200.0
		d.LeavingThreshold = 2.5 + float64(rng.Intn(20))/20.0
	default:
		d.WillingnessToPay = 180.0 + float64(rng.Intn(80))
		d.Weights.Rating = 1.5 + float64(rng.Intn(100))/200.0
		d.Weights.Price = 0.3 + float64(rng.Intn(80))/200.0
		d.Weights.Novelty = 0.6 + float64(rng.Intn(80))/200.0
		d.LeavingThreshold = 3.5 + float64(rng.Intn(20))/20.0
	}
	return d
}
