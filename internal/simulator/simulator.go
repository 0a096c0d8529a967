package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lucsky/cuid"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/chrisdamba/bagsim/internal/decision"
	"github.com/chrisdamba/bagsim/internal/factories"
	"github.com/chrisdamba/bagsim/internal/market"
	"github.com/chrisdamba/bagsim/internal/metrics"
	"github.com/chrisdamba/bagsim/internal/models"
	"github.com/chrisdamba/bagsim/internal/ranking"
	"github.com/chrisdamba/bagsim/internal/settlement"
)

// MarketClose stamps everything that happens at settlement.
var MarketClose = models.NewTimestamp(22, 0)

// DayResult is what one simulated day produced. Reservations carry their
// final status and bag counts.
type DayResult struct {
	Day          int
	Metrics      *metrics.Metrics
	Reservations []*models.Reservation
	Settlements  []settlement.StoreSettlement
}

// Result aggregates a multi-day run.
type Result struct {
	RunID       string
	Strategy    string
	Seed        int64
	Metrics     *metrics.Metrics
	Days        []*DayResult
	Restaurants []*models.Restaurant
}

// LastDay returns the final day, or nil for an empty run.
func (r *Result) LastDay() *DayResult {
	if len(r.Days) == 0 {
		return nil
	}
	return r.Days[len(r.Days)-1]
}

// Simulator drives one run: its own market, random streams, metrics and
// event sink. Runs never share a Simulator.
type Simulator struct {
	Config *models.Config
	RunID  string
	State  *market.State
	Rng    *PartitionedRNG

	engine     *decision.Engine
	reconciler *settlement.Reconciler
	collector  *metrics.Collector
	customers  *factories.CustomerFactory
	output     OutputDestination
	logger     *logrus.Entry
	progress   io.Writer

	suppliedPool   []*models.Customer
	arrivalTable   [][]models.Timestamp
	pool           []*models.Customer
	nextCustomerID int
	day            int
}

// NewSimulator builds a run over copies of restaurants. A nil output discards
// events.
func NewSimulator(cfg *models.Config, restaurants []*models.Restaurant, output OutputDestination, logger *logrus.Entry) (*Simulator, error) {
	if len(restaurants) == 0 {
		return nil, errors.New("simulation needs at least one store")
	}
	strategy, err := ranking.New(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	if output == nil {
		output = NoopOutput{}
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	stores := make([]*models.Restaurant, len(restaurants))
	for i, r := range restaurants {
		stores[i] = r.Clone()
	}

	runID := cuid.New()
	logger = logger.WithFields(logrus.Fields{"run_id": runID, "strategy": strategy.Name()})
	rng := NewPartitionedRNG(cfg.Seed)

	return &Simulator{
		Config:     cfg,
		RunID:      runID,
		State:      market.NewState(stores),
		Rng:        rng,
		engine:     decision.NewEngine(strategy, cfg.NDisplayed, rng.ForSubsystem(SubsystemDecision), logger),
		reconciler: settlement.NewReconciler(cfg.LoyaltyRewardOnConfirm, logger),
		collector:  metrics.NewCollector(),
		customers:  factories.NewCustomerFactory(rng.ForSubsystem(SubsystemCustomers), nil),
		output:     output,
		logger:     logger,
		progress:   os.Stderr,
	}, nil
}

// SetCustomerTemplates makes generated customers cyclic copies of templates,
// as loaded from a customer file.
func (s *Simulator) SetCustomerTemplates(templates []*models.Customer) {
	s.customers = factories.NewCustomerFactory(s.Rng.ForSubsystem(SubsystemCustomers), templates)
}

// SetCustomerPool supplies the starting population for RunMultiDay. Each run
// starts from fresh copies, so the same pool can feed several runs.
func (s *Simulator) SetCustomerPool(pool []*models.Customer) {
	s.suppliedPool = pool
}

// SetArrivalTable supplies one ascending arrival sequence per day. Days
// without an entry get generated arrivals.
func (s *Simulator) SetArrivalTable(table [][]models.Timestamp) {
	s.arrivalTable = table
}

func (s *Simulator) SetProgressWriter(w io.Writer) {
	s.progress = w
}

func (s *Simulator) Strategy() string {
	return s.engine.Strategy().Name()
}

func (s *Simulator) Close() error {
	return s.output.Close()
}

// RunDay processes one day: every customer arrives at the matching time,
// arrivals are handled in time order, then all reservations are settled.
// The caller resets the market and samples inventory beforehand.
func (s *Simulator) RunDay(day int, customers []*models.Customer, arrivals []models.Timestamp) (*DayResult, error) {
	if len(arrivals) != len(customers) {
		return nil, fmt.Errorf("day %d has %d arrival times for %d customers", day, len(arrivals), len(customers))
	}
	s.day = day
	s.collector.Reset()

	queue := models.NewArrivalQueue()
	for i, c := range customers {
		s.State.AddCustomer(c)
		queue.Enqueue(&models.Arrival{Time: arrivals[i], CustomerID: c.ID})
	}

	for !queue.IsEmpty() {
		arrival := queue.Dequeue()
		s.State.CurrentTime = arrival.Time

		c := s.State.Customer(arrival.CustomerID)
		if c == nil || c.Churned {
			continue
		}
		s.collector.RecordArrival()

		out := s.engine.ProcessArrival(c, s.State)
		s.collector.RecordDisplayed(out.Displayed)
		if !out.Reserved() {
			s.collector.RecordCustomerLeft()
			continue
		}

		r := s.State.Restaurant(out.StoreID)
		s.emit(TopicReservationCreated, newReservationCreatedEvent(
			s.header(models.EventReservationCreated), out.Reservation, r.PricePerBag, out.Displayed))
	}

	s.State.CurrentTime = MarketClose
	settlements := s.reconciler.Settle(s.State)
	for _, res := range s.State.Reservations {
		price := 0.0
		if r := s.State.Restaurant(res.RestaurantID); r != nil {
			price = r.PricePerBag
		}
		s.emit(TopicReservationSettled, newReservationSettledEvent(
			s.header(models.EventReservationSettled), res, price))
	}

	s.collector.EndOfDay(s.State)
	dayMetrics := s.collector.Metrics()
	s.emit(TopicDaySummary, newDaySummaryEvent(s.header(models.EventDaySummary), dayMetrics))

	s.logger.WithFields(logrus.Fields{
		"day":          day,
		"arrivals":     dayMetrics.TotalArrivals,
		"reservations": len(s.State.Reservations),
		"bags_sold":    dayMetrics.TotalBagsSold,
		"waste":        dayMetrics.TotalBagsUnsold,
		"revenue":      fmt.Sprintf("%.2f", dayMetrics.TotalRevenueGenerated),
	}).Info("day completed")

	settled := make([]*models.Reservation, len(s.State.Reservations))
	for i, res := range s.State.Reservations {
		cp := *res
		settled[i] = &cp
	}
	return &DayResult{
		Day:          day,
		Metrics:      dayMetrics,
		Reservations: settled,
		Settlements:  settlements,
	}, nil
}

// RunMultiDay runs Config.NumDays consecutive days. Customer history, loyalty
// and churn carry over between days; churned customers are replaced.
func (s *Simulator) RunMultiDay(ctx context.Context) (*Result, error) {
	numDays := s.Config.NumDays
	perDay := s.Config.CustomersPerDay

	for _, r := range s.State.Restaurants {
		r.MarkRunStart()
	}
	s.State.ResetImpressions()
	s.initPool()

	s.logger.WithFields(logrus.Fields{
		"days":              numDays,
		"customers_per_day": perDay,
		"stores":            len(s.State.Restaurants),
		"seed":              s.Config.Seed,
	}).Info("simulation starts")

	bar := s.newProgressBar(numDays)
	result := &Result{
		RunID:    s.RunID,
		Strategy: s.Strategy(),
		Seed:     s.Config.Seed,
		Metrics:  metrics.New(),
	}

	for day := 1; day <= numDays; day++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s.State.ResetDay()
		s.replenish(perDay)
		s.sampleInventory()

		dr, err := s.RunDay(day, s.pool[:perDay], s.arrivalsFor(day, perDay))
		if err != nil {
			return nil, err
		}
		result.Days = append(result.Days, dr)
		result.Metrics.Merge(dr.Metrics)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	result.Metrics.ComputeFairness(s.State.Restaurants)
	result.Restaurants = make([]*models.Restaurant, len(s.State.Restaurants))
	for i, r := range s.State.Restaurants {
		result.Restaurants[i] = r.Clone()
	}

	s.logger.WithFields(logrus.Fields{
		"bags_sold":     result.Metrics.TotalBagsSold,
		"waste":         result.Metrics.TotalBagsUnsold,
		"revenue":       fmt.Sprintf("%.2f", result.Metrics.TotalRevenueGenerated),
		"gini_exposure": fmt.Sprintf("%.4f", result.Metrics.GiniExposure),
	}).Info("simulation completed")
	return result, nil
}

func (s *Simulator) initPool() {
	s.pool = nil
	s.nextCustomerID = 0

	if len(s.suppliedPool) > 0 {
		for _, c := range s.suppliedPool {
			fresh := c.Clone()
			fresh.ResetForRun()
			s.pool = append(s.pool, fresh)
			s.nextCustomerID = max(s.nextCustomerID, c.ID+1)
		}
		return
	}

	n := s.Config.PoolMultiplier * s.Config.CustomersPerDay
	for i := 0; i < n; i++ {
		s.pool = append(s.pool, s.newCustomer())
	}
}

// replenish drops churned customers and tops the pool up to n.
func (s *Simulator) replenish(n int) {
	active := make([]*models.Customer, 0, max(n, len(s.pool)))
	for _, c := range s.pool {
		if !c.Churned {
			active = append(active, c)
		}
	}
	for len(active) < n {
		active = append(active, s.newCustomer())
	}
	s.pool = active
}

func (s *Simulator) newCustomer() *models.Customer {
	c := s.customers.CreateCustomer(s.nextCustomerID, s.State.Restaurants)
	s.nextCustomerID++
	return c
}

// sampleInventory resets each store's day and draws its realized bags as
// the estimate scaled by a uniform variance factor.
func (s *Simulator) sampleInventory() {
	rng := s.Rng.ForSubsystem(SubsystemInventory)
	lo, hi := s.Config.InventoryVarianceMin, s.Config.InventoryVarianceMax
	for _, r := range s.State.Restaurants {
		r.ResetDaily()
		variance := lo + rng.Float64()*(hi-lo)
		r.SetActualInventory(int(float64(r.EstimatedBags) * variance))
	}
}

func (s *Simulator) arrivalsFor(day, n int) []models.Timestamp {
	if i := day - 1; i < len(s.arrivalTable) && s.arrivalTable[i] != nil {
		out := make([]models.Timestamp, len(s.arrivalTable[i]))
		copy(out, s.arrivalTable[i])
		return out
	}
	return GenerateArrivalTimes(s.Rng.ForSubsystem(SubsystemArrivals), n)
}

func (s *Simulator) newProgressBar(days int) *progressbar.ProgressBar {
	if !s.Config.Progress || s.progress == nil {
		return progressbar.DefaultSilent(int64(days))
	}
	return progressbar.NewOptions(days,
		progressbar.OptionSetWriter(s.progress),
		progressbar.OptionSetDescription(fmt.Sprintf("[%s] simulating", s.Strategy())),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (s *Simulator) header(eventType string) EventHeader {
	return EventHeader{
		RunID:     s.RunID,
		Strategy:  s.Strategy(),
		Day:       s.day,
		EventType: eventType,
		SimTime:   s.State.CurrentTime,
	}
}

// emit serializes event onto topic. Sink failures are logged and never stop
// the run.
func (s *Simulator) emit(topic string, event interface{}) {
	msg, err := json.Marshal(event)
	if err != nil {
		s.logger.WithError(err).WithField("topic", topic).Warn("error serializing event")
		return
	}
	if err := s.output.WriteMessage(topic, msg); err != nil {
		s.logger.WithError(err).WithField("topic", topic).Warn("failed to write message")
	}
}
