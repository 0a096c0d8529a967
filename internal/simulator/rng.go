package simulator

import (
	"hash/fnv"
	"math/rand"
)

const (
	// SubsystemCustomers generates synthetic customers. It uses the master
	// seed directly so a seed reproduces the same population everywhere.
	SubsystemCustomers = "customers"
	SubsystemArrivals  = "arrivals"
	SubsystemInventory = "inventory"
	SubsystemDecision  = "decision"

	// SubsystemPopulation pre-generates the shared inputs of a comparison.
	SubsystemPopulation = "population"
	// SubsystemIngest fills fields a customer file leaves out.
	SubsystemIngest = "ingest"
	// SubsystemStores generates a synthetic store catalogue.
	SubsystemStores = "stores"
)

// PartitionedRNG hands each subsystem its own deterministic stream, so
// drawing more arrivals never shifts the decision stream.
//
// Not safe for concurrent use; every run owns one.
type PartitionedRNG struct {
	seed       int64
	subsystems map[string]*rand.Rand
}

func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{
		seed:       seed,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the cached stream for name, creating it seeded with
// seed XOR fnv1a64(name).
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	derived := p.seed
	if name != SubsystemCustomers {
		derived = p.seed ^ fnv1a64(name)
	}
	rng := rand.New(rand.NewSource(derived))
	p.subsystems[name] = rng
	return rng
}

func (p *PartitionedRNG) Seed() int64 {
	return p.seed
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
