// Package decision turns a displayed set of stores into a reservation or a
// churned customer.
package decision

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/chrisdamba/bagsim/internal/market"
	"github.com/chrisdamba/bagsim/internal/models"
	"github.com/chrisdamba/bagsim/internal/ranking"
)

const (
	// NoStore is returned when the customer leaves without choosing.
	NoStore = -1

	// IneligibleFloor drops too-far stores after score adjustment. It is
	// deliberately looser than models.TooFarScore.
	IneligibleFloor = -50.0

	Temperature = 2.0

	successRateBonus      = 1.5
	cancellationPenalty   = 2.0
	inventorySafetyBags   = 12.0
	inventorySafetyWeight = 0.3
)

// Source is the random stream selection draws from. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Outcome describes what one arrival did.
type Outcome struct {
	Displayed   []int
	StoreID     int
	Reservation *models.Reservation
	ChurnReason string
}

func (o Outcome) Reserved() bool {
	return o.Reservation != nil
}

type Engine struct {
	strategy   ranking.Strategy
	nDisplayed int
	rng        Source
	logger     *logrus.Entry
}

func NewEngine(strategy ranking.Strategy, nDisplayed int, rng Source, logger *logrus.Entry) *Engine {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Engine{
		strategy:   strategy,
		nDisplayed: nDisplayed,
		rng:        rng,
		logger:     logger,
	}
}

func (e *Engine) Strategy() ranking.Strategy {
	return e.strategy
}

// ProcessArrival runs one customer through display, choice and reservation.
// Any outcome other than a reservation marks the customer churned.
func (e *Engine) ProcessArrival(c *models.Customer, st *market.State) Outcome {
	c.RecordVisit()
	displayed := e.strategy.Select(c, st, e.nDisplayed)
	st.RecordImpressions(displayed)

	out := Outcome{Displayed: displayed, StoreID: NoStore}
	if len(displayed) == 0 {
		return e.churn(c, out, models.ChurnNoStores)
	}

	scores := ScoreStores(c, displayed, st)
	storeID, reason := e.SelectStore(c, displayed, scores, st)
	if storeID == NoStore {
		return e.churn(c, out, reason)
	}

	res, ok := CreateReservation(c, storeID, st)
	if !ok {
		return e.churn(c, out, models.ChurnStoreFull)
	}

	out.StoreID = storeID
	out.Reservation = res
	e.logger.WithFields(logrus.Fields{
		"customer_id":    c.ID,
		"restaurant_id":  storeID,
		"reservation_id": res.ID,
		"time":           res.ReservationTime.String(),
	}).Debug("reservation created")
	return out
}

func (e *Engine) churn(c *models.Customer, out Outcome, reason string) Outcome {
	c.Churned = true
	out.ChurnReason = reason
	e.logger.WithFields(logrus.Fields{
		"customer_id": c.ID,
		"reason":      reason,
		"displayed":   len(out.Displayed),
	}).Debug("customer left")
	return out
}

// ScoreStores returns the customer's raw utility for each displayed id.
// Unknown ids score models.TooFarScore.
func ScoreStores(c *models.Customer, displayed []int, st *market.State) []float64 {
	scores := make([]float64, len(displayed))
	for i, id := range displayed {
		r := st.Restaurant(id)
		if r == nil {
			scores[i] = models.TooFarScore
			continue
		}
		scores[i] = c.StoreScore(r)
	}
	return scores
}

// SelectStore applies the leave decision and, if the customer stays, draws
// one store. The second return value explains a NoStore result.
func (e *Engine) SelectStore(c *models.Customer, displayed []int, scores []float64, st *market.State) (int, string) {
	if len(scores) == 0 {
		return NoStore, models.ChurnNoStores
	}

	threshold := c.DecisionThreshold()
	best := math.Inf(-1)
	for _, s := range scores {
		best = max(best, s)
	}
	if best < threshold {
		return NoStore, models.ChurnBelowThreshold
	}

	adjusted := AdjustScores(c, displayed, scores, st)

	var ids []int
	var retained []float64
	for i, s := range adjusted {
		if s >= threshold && s > IneligibleFloor {
			ids = append(ids, displayed[i])
			retained = append(retained, s)
		}
	}
	if len(retained) == 0 {
		return NoStore, models.ChurnNoEligibleStore
	}

	return SoftmaxSelect(ids, retained, e.rng.Float64()), ""
}

// AdjustScores adds the customer's history with each store and an inventory
// safety bonus to the raw scores.
func AdjustScores(c *models.Customer, displayed []int, scores []float64, st *market.State) []float64 {
	adjusted := make([]float64, len(scores))
	copy(adjusted, scores)
	for i, id := range displayed {
		if si, ok := c.History.Interaction(id); ok && si.Reservations > 0 {
			adjusted[i] += si.SuccessRate() * successRateBonus
			adjusted[i] -= si.CancellationRate() * cancellationPenalty
		}
		if r := st.Restaurant(id); r != nil {
			adjusted[i] += min(1.0, float64(r.EstimatedBags)/inventorySafetyBags) * inventorySafetyWeight
		}
	}
	return adjusted
}

// SoftmaxSelect picks the first id whose cumulative softmax mass reaches u.
// Scores are shifted so the lowest maps to 1 before exponentiation, which
// leaves the probabilities unchanged.
func SoftmaxSelect(ids []int, scores []float64, u float64) int {
	if len(ids) == 0 {
		return NoStore
	}
	minScore := scores[0]
	for _, s := range scores[1:] {
		minScore = min(minScore, s)
	}

	weights := make([]float64, len(scores))
	sum := 0.0
	for i, s := range scores {
		weights[i] = math.Exp((s - minScore + 1.0) / Temperature)
		sum += weights[i]
	}

	cumulative := 0.0
	for i, w := range weights {
		cumulative += w / sum
		if u <= cumulative {
			return ids[i]
		}
	}
	return ids[len(ids)-1]
}

// CreateReservation appends a PENDING reservation if the store still has
// forecast inventory left.
func CreateReservation(c *models.Customer, storeID int, st *market.State) (*models.Reservation, bool) {
	r := st.Restaurant(storeID)
	if r == nil || !r.CanAcceptReservation() {
		return nil, false
	}

	res := models.NewReservation(st.AllocateReservationID(), c.ID, storeID, st.CurrentTime)
	c.RecordReservationAttempt(storeID, r.BusinessType, st.CurrentTime)
	r.ReservedCount++
	st.AppendReservation(res)
	return res, true
}
