package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chrisdamba/bagsim/internal/simulator"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run every ranking strategy on identical customers and arrivals",
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

		inputs := simulator.GenerateInputs(cfg, restaurants, templates)
		logger.WithFields(logrus.Fields{
			"customers": len(inputs.Pool),
			"days":      len(inputs.Arrivals),
		}).Info("generated shared customers and arrival times")

		newOutput := func(string) (simulator.OutputDestination, error) {
			return simulator.NewOutputDestination(ctx, cfg)
		}
		results, err := simulator.Compare(ctx, cfg, restaurants, inputs, newOutput, logger)
		if err != nil {
			return err
		}
		return publishResults(ctx, cmd.OutOrStdout(), cfg, results, logger)
	},
}
