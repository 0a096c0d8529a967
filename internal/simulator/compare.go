package simulator

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/chrisdamba/bagsim/internal/factories"
	"github.com/chrisdamba/bagsim/internal/models"
	"github.com/chrisdamba/bagsim/internal/ranking"
)

// OutputFactory opens the event sink for one strategy's run.
type OutputFactory func(strategy string) (OutputDestination, error)

// Inputs are the customers and arrival times every compared run shares.
type Inputs struct {
	Pool     []*models.Customer
	Arrivals [][]models.Timestamp
}

// GenerateInputs draws the shared population and arrival table from the
// population stream of seed. Templates, if any, are recycled cyclically.
func GenerateInputs(cfg *models.Config, restaurants []*models.Restaurant, templates []*models.Customer) Inputs {
	rng := NewPartitionedRNG(cfg.Seed).ForSubsystem(SubsystemPopulation)
	factory := factories.NewCustomerFactory(rng, templates)

	n := cfg.PoolMultiplier * cfg.CustomersPerDay
	pool := make([]*models.Customer, n)
	for i := range pool {
		pool[i] = factory.CreateCustomer(i, restaurants)
	}
	return Inputs{
		Pool:     pool,
		Arrivals: GenerateArrivalTable(rng, cfg.NumDays, cfg.CustomersPerDay),
	}
}

// Compare runs every registered strategy over identical inputs in parallel.
// Each run owns its stores, customers, random streams and sink. Results
// follow ranking.Names order.
func Compare(ctx context.Context, cfg *models.Config, restaurants []*models.Restaurant, inputs Inputs, newOutput OutputFactory, logger *logrus.Entry) ([]*Result, error) {
	names := ranking.Names()
	results := make([]*Result, len(names))

	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			runCfg := *cfg
			runCfg.Strategy = name
			runCfg.Progress = false

			var output OutputDestination = NoopOutput{}
			if newOutput != nil {
				out, err := newOutput(name)
				if err != nil {
					return fmt.Errorf("%s: failed to open output: %w", name, err)
				}
				output = out
			}

			sim, err := NewSimulator(&runCfg, restaurants, output, logger)
			if err != nil {
				_ = output.Close()
				return fmt.Errorf("%s: %w", name, err)
			}
			sim.SetCustomerPool(inputs.Pool)
			sim.SetArrivalTable(inputs.Arrivals)

			res, err := sim.RunMultiDay(ctx)
			if cerr := sim.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close output: %w", cerr)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
