package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/chrisdamba/bagsim/internal/models"
	"github.com/chrisdamba/bagsim/internal/ranking"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "bagsim",
	Short: "Simulates a surplus-food surprise bag marketplace",
	Long: `bagsim simulates customers reserving surprise bags from stores over one or more days.
Each arriving customer is shown a handful of stores picked by a ranking strategy, decides
whether to reserve, and reservations are settled against each store's real inventory at the
end of the day. Strategies can be run alone or compared side by side on identical inputs.`,
	SilenceUsage: true,
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"seed":               "seed",
	"customers-per-day":  "customers_per_day",
	"n-displayed":        "n_displayed",
	"num-days":           "num_days",
	"strategy":           "strategy",
	"stores-csv":         "stores_csv",
	"customers-csv":      "customers_csv",
	"store-source":       "store_source",
	"synthetic-stores":   "synthetic_stores",
	"variance-min":       "inventory_variance_min",
	"variance-max":       "inventory_variance_max",
	"pool-multiplier":    "pool_multiplier",
	"loyalty-reward":     "loyalty_reward_on_confirm",
	"output-format":      "output_format",
	"output-path":        "output_path",
	"output-folder":      "output_folder",
	"output-destination": "output_destination",
	"kafka-broker-list":  "kafka_broker_list",
	"database-url":       "database.url",
	"persist-results":    "persist_results",
	"report-file":        "report_file",
	"report-format":      "report_format",
	"results-dir":        "results_dir",
	"progress":           "progress",
	"log-level":          "log_level",
	"cloud-bucket":       "cloud_storage.bucket_name",
	"cloud-region":       "cloud_storage.region",
}

func init() {
	d := models.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "config file (yaml or json)")
	flags.Int64("seed", d.Seed, "Random seed for simulation")
	flags.Int("customers-per-day", d.CustomersPerDay, "Customers arriving each day")
	flags.Int("n-displayed", d.NDisplayed, "Stores shown to each customer")
	flags.Int("num-days", d.NumDays, "Number of simulated days")
	flags.String("strategy", d.Strategy, "Ranking strategy for the run command")
	flags.String("stores-csv", "", "Store catalogue CSV")
	flags.String("customers-csv", "", "Customer pool CSV")
	flags.String("store-source", d.StoreSource, "Store source: default, csv, postgres or synthetic")
	flags.Int("synthetic-stores", d.SyntheticStores, "Stores to generate for the synthetic source")
	flags.Float64("variance-min", d.InventoryVarianceMin, "Lower bound of the daily inventory variance factor")
	flags.Float64("variance-max", d.InventoryVarianceMax, "Upper bound of the daily inventory variance factor")
	flags.Int("pool-multiplier", d.PoolMultiplier, "Generated pool size as a multiple of customers per day")
	flags.Bool("loyalty-reward", d.LoyaltyRewardOnConfirm, "Raise customer loyalty on confirmed reservations")
	flags.String("output-format", d.OutputFormat, "Event output: none, console, json, csv, parquet or kafka")
	flags.String("output-path", "", "Base path for file outputs")
	flags.String("output-folder", d.OutputFolder, "Folder under the output path for events")
	flags.String("output-destination", d.OutputDestination, "Where file outputs go: local or s3")
	flags.String("kafka-broker-list", d.KafkaBrokerList, "Kafka broker list")
	flags.String("database-url", "", "Postgres connection URL")
	flags.Bool("persist-results", false, "Store reservation logs in Postgres")
	flags.String("report-file", "", "Write the report here instead of stdout")
	flags.String("report-format", d.ReportFormat, "Report format: text or yaml")
	flags.String("results-dir", d.ResultsDir, "Directory for per-strategy store CSVs")
	flags.Bool("progress", d.Progress, "Show a progress bar")
	flags.String("log-level", d.LogLevel, "Log level: debug, info, warn or error")
	flags.String("cloud-bucket", "", "S3 bucket for cloud outputs")
	flags.String("cloud-region", "", "S3 region")

	flags.VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			cobra.CheckErr(viper.BindPFlag(key, f))
		}
	})

	rootCmd.AddCommand(runCmd, compareCmd, strategiesCmd, storesCmd)
}

// loadConfig resolves flags, environment and the optional config file, then
// configures logging from the result.
func loadConfig() (*models.Config, *logrus.Entry, error) {
	cfg, err := models.LoadConfig(viper.GetViper(), cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}

	if !ranking.IsValid(cfg.Strategy) {
		return nil, nil, fmt.Errorf("%w: unknown strategy %q", models.ErrInvalidConfig, cfg.Strategy)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if cfgFile != "" {
		logger.WithField("file", cfgFile).Info("using config file")
	}
	return cfg, logrus.NewEntry(logger), nil
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
