package simulator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateArrivalTimes(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	times := GenerateArrivalTimes(rng, 500)
	require.Len(t, times, 500)

	for i, ts := range times {
		assert.GreaterOrEqual(t, ts.Hour, 8)
		assert.LessOrEqual(t, ts.Hour, 21)
		assert.GreaterOrEqual(t, ts.Minute, 0)
		assert.Less(t, ts.Minute, 60)
		if i > 0 {
			assert.False(t, ts.Before(times[i-1]), "arrivals must be ascending")
		}
	}
}

func TestGenerateArrivalTimesEmpty(t *testing.T) {
	assert.Empty(t, GenerateArrivalTimes(rand.New(rand.NewSource(1)), 0))
}

func TestGenerateArrivalTable(t *testing.T) {
	table := GenerateArrivalTable(rand.New(rand.NewSource(3)), 4, 10)
	require.Len(t, table, 4)
	for _, day := range table {
		assert.Len(t, day, 10)
	}
	assert.NotEqual(t, table[0], table[1])
}
