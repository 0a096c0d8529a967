package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrisdamba/bagsim/internal/models"
	"github.com/chrisdamba/bagsim/internal/repositories/postgres"
)

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "Manage the store catalogue",
}

var storesSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the Postgres store catalogue with the configured source",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.URL == "" {
			return fmt.Errorf("%w: database.url is required", models.ErrInvalidConfig)
		}
		if cfg.StoreSource == models.StoreSourcePostgres {
			return fmt.Errorf("%w: cannot seed postgres from itself", models.ErrInvalidConfig)
		}
		ctx := cmd.Context()

		restaurants, err := loadRestaurants(ctx, cfg, logger)
		if err != nil {
			return err
		}

		pool, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			return err
		}

		repo := postgres.NewRestaurantRepository(pool)
		if err := repo.DeleteAll(ctx); err != nil {
			return err
		}
		if err := repo.BulkCreate(ctx, restaurants); err != nil {
			return err
		}
		count, err := repo.Count(ctx)
		if err != nil {
			return err
		}
		logger.WithField("stores", count).Info("seeded store catalogue")
		return nil
	},
}

func init() {
	storesCmd.AddCommand(storesSeedCmd)
}
