package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/chrisdamba/bagsim/internal/factories"
	"github.com/chrisdamba/bagsim/internal/loader"
	"github.com/chrisdamba/bagsim/internal/models"
	"github.com/chrisdamba/bagsim/internal/repositories/postgres"
	"github.com/chrisdamba/bagsim/internal/simulator"
)

// loadRestaurants returns the store catalogue selected by store_source.
func loadRestaurants(ctx context.Context, cfg *models.Config, logger *logrus.Entry) ([]*models.Restaurant, error) {
	switch cfg.StoreSource {
	case models.StoreSourceCSV:
		return loader.LoadRestaurants(cfg.StoresCSV, logger)
	case models.StoreSourcePostgres:
		pool, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		restaurants, err := postgres.NewRestaurantRepository(pool).GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("error loading stores from postgres: %w", err)
		}
		logger.WithField("stores", len(restaurants)).Info("loaded store catalogue from postgres")
		return restaurants, nil
	case models.StoreSourceSynthetic:
		rng := simulator.NewPartitionedRNG(cfg.Seed).ForSubsystem(simulator.SubsystemStores)
		restaurants := factories.NewRestaurantFactory(rng).CreateRestaurants(1, cfg.SyntheticStores)
		logger.WithField("stores", len(restaurants)).Info("generated synthetic store catalogue")
		return restaurants, nil
	default:
		return factories.DefaultRestaurants(), nil
	}
}

// loadCustomerTemplates reads customers_csv when set. A nil result means
// customers are generated.
func loadCustomerTemplates(cfg *models.Config, logger *logrus.Entry) ([]*models.Customer, error) {
	if cfg.CustomersCSV == "" {
		return nil, nil
	}
	rng := simulator.NewPartitionedRNG(cfg.Seed).ForSubsystem(simulator.SubsystemIngest)
	return loader.LoadCustomers(cfg.CustomersCSV, rng, logger)
}

func prepareOutput(cfg *models.Config) error {
	if cfg.OutputFormat != models.OutputParquet || cfg.OutputDestination != models.DestinationLocal {
		return nil
	}
	if err := simulator.CleanupParquet(cfg.OutputPath, cfg.OutputFolder); err != nil {
		return fmt.Errorf("error cleaning parquet output: %w", err)
	}
	return nil
}
