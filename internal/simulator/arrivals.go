package simulator

import (
	"math/rand"
	"sort"

	"github.com/chrisdamba/bagsim/internal/models"
)

// Customers arrive between 8:00 and 21:59.
const (
	firstArrivalHour = 8
	lastArrivalHour  = 21
)

// GenerateArrivalTimes draws n arrival times and returns them in ascending
// order.
func GenerateArrivalTimes(rng *rand.Rand, n int) []models.Timestamp {
	times := make([]models.Timestamp, n)
	for i := range times {
		hour := firstArrivalHour + rng.Intn(lastArrivalHour-firstArrivalHour+1)
		minute := rng.Intn(60)
		times[i] = models.NewTimestamp(hour, minute)
	}
	sort.SliceStable(times, func(i, j int) bool {
		return times[i].Before(times[j])
	})
	return times
}

// GenerateArrivalTable draws one ascending arrival sequence per day.
func GenerateArrivalTable(rng *rand.Rand, days, perDay int) [][]models.Timestamp {
	table := make([][]models.Timestamp, days)
	for d := range table {
		table[d] = GenerateArrivalTimes(rng, perDay)
	}
	return table
}
