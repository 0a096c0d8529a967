package cmd

import (
	"github.com/spf13/cobra"

	"github.com/chrisdamba/bagsim/internal/simulator"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a multi-day simulation with one ranking strategy",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		restaurants, err := loadRestaurants(ctx, cfg, logger)
		if err != nil {
			return err
		}
		templates, err := loadCustomerTemplates(cfg, logger)
		if err != nil {
			return err
		}
		if err := prepareOutput(cfg); err != nil {
			return err
		}

		output, err := simulator.NewOutputDestination(ctx, cfg)
		if err != nil {
			return err
		}
		sim, err := simulator.NewSimulator(cfg, restaurants, output, logger)
		if err != nil {
			_ = output.Close()
			return err
		}
		sim.SetCustomerTemplates(templates)

		result, err := sim.RunMultiDay(ctx)
		if cerr := sim.Close(); cerr != nil {
			logger.WithError(cerr).Warn("error closing output")
		}
		if err != nil {
			return err
		}
		return publishResults(ctx, cmd.OutOrStdout(), cfg, []*simulator.Result{result}, logger)
	},
}
