package simulator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionedRNGDeterministic(t *testing.T) {
	a := NewPartitionedRNG(42)
	b := NewPartitionedRNG(42)

	for _, name := range []string{SubsystemDecision, SubsystemArrivals, SubsystemInventory} {
		for i := 0; i < 5; i++ {
			assert.Equal(t, a.ForSubsystem(name).Int63(), b.ForSubsystem(name).Int63(), name)
		}
	}
}

func TestPartitionedRNGIsolation(t *testing.T) {
	p := NewPartitionedRNG(7)
	q := NewPartitionedRNG(7)

	// drawing from one subsystem must not shift another
	for i := 0; i < 100; i++ {
		p.ForSubsystem(SubsystemArrivals).Float64()
	}
	assert.Equal(t, q.ForSubsystem(SubsystemDecision).Float64(), p.ForSubsystem(SubsystemDecision).Float64())

	assert.NotEqual(t,
		NewPartitionedRNG(7).ForSubsystem(SubsystemDecision).Int63(),
		NewPartitionedRNG(7).ForSubsystem(SubsystemInventory).Int63())
}

func TestPartitionedRNGCustomersUseMasterSeed(t *testing.T) {
	p := NewPartitionedRNG(99)
	assert.Equal(t, rand.New(rand.NewSource(99)).Int63(), p.ForSubsystem(SubsystemCustomers).Int63())
	assert.Equal(t, int64(99), p.Seed())
}

func TestPartitionedRNGCachesStreams(t *testing.T) {
	p := NewPartitionedRNG(1)
	assert.Same(t, p.ForSubsystem(SubsystemDecision), p.ForSubsystem(SubsystemDecision))
}
