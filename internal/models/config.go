package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	OutputNone    = "none"
	OutputConsole = "console"
	OutputJSON    = "json"
	OutputCSV     = "csv"
	OutputParquet = "parquet"
	OutputKafka   = "kafka"

	DestinationLocal = "local"
	DestinationS3    = "s3"

	StoreSourceDefault   = "default"
	StoreSourceCSV       = "csv"
	StoreSourcePostgres  = "postgres"
	StoreSourceSynthetic = "synthetic"

	ReportText = "text"
	ReportYAML = "yaml"
)

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	Region     string `mapstructure:"region"`
	BucketName string `mapstructure:"bucket_name"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type Config struct {
	Seed            int64  `mapstructure:"seed"`
	CustomersPerDay int    `mapstructure:"customers_per_day"`
	NDisplayed      int    `mapstructure:"n_displayed"`
	NumDays         int    `mapstructure:"num_days"`
	Strategy        string `mapstructure:"strategy"`

	StoresCSV    string `mapstructure:"stores_csv"`
	CustomersCSV string `mapstructure:"customers_csv"`
	StoreSource  string `mapstructure:"store_source"`

	SyntheticStores int `mapstructure:"synthetic_stores"`

	InventoryVarianceMin   float64 `mapstructure:"inventory_variance_min"`
	InventoryVarianceMax   float64 `mapstructure:"inventory_variance_max"`
	PoolMultiplier         int     `mapstructure:"pool_multiplier"`
	LoyaltyRewardOnConfirm bool    `mapstructure:"loyalty_reward_on_confirm"`

	OutputFormat      string             `mapstructure:"output_format"`
	OutputPath        string             `mapstructure:"output_path"`
	OutputFolder      string             `mapstructure:"output_folder"`
	OutputDestination string             `mapstructure:"output_destination"`
	CloudStorage      CloudStorageConfig `mapstructure:"cloud_storage"`
	KafkaBrokerList   string             `mapstructure:"kafka_broker_list"`
	SessionTimeoutMs  int                `mapstructure:"session_timeout_ms"`
	Database          DatabaseConfig     `mapstructure:"database"`
	PersistResults    bool               `mapstructure:"persist_results"`

	ReportFile   string `mapstructure:"report_file"`
	ReportFormat string `mapstructure:"report_format"`
	ResultsDir   string `mapstructure:"results_dir"`
	Progress     bool   `mapstructure:"progress"`
	LogLevel     string `mapstructure:"log_level"`
}

var defaults = map[string]interface{}{
	"seed":                      int64(42),
	"customers_per_day":         100,
	"n_displayed":               5,
	"num_days":                  7,
	"strategy":                  "baseline",
	"store_source":              StoreSourceDefault,
	"synthetic_stores":          15,
	"inventory_variance_min":    0.8,
	"inventory_variance_max":    1.2,
	"pool_multiplier":           2,
	"loyalty_reward_on_confirm": false,
	"output_format":             OutputNone,
	"output_folder":             "output",
	"output_destination":        DestinationLocal,
	"kafka_broker_list":         "localhost:9092",
	"session_timeout_ms":        6000,
	"report_format":             ReportText,
	"results_dir":               "results",
	"progress":                  true,
	"log_level":                 "info",
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		Seed:                 42,
		CustomersPerDay:      100,
		NDisplayed:           5,
		NumDays:              7,
		Strategy:             "baseline",
		StoreSource:          StoreSourceDefault,
		SyntheticStores:      15,
		InventoryVarianceMin: 0.8,
		InventoryVarianceMax: 1.2,
		PoolMultiplier:       2,
		OutputFormat:         OutputNone,
		OutputFolder:         "output",
		OutputDestination:    DestinationLocal,
		KafkaBrokerList:      "localhost:9092",
		SessionTimeoutMs:     6000,
		ReportFormat:         ReportText,
		ResultsDir:           "results",
		Progress:             true,
		LogLevel:             "info",
	}
}

// SetDefaults registers every default on v so flags, env and file values
// layer over them.
func SetDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// LoadConfig reads the optional config file and environment into a Config.
// Environment variables use the BAGSIM_ prefix, e.g. BAGSIM_NUM_DAYS.
func LoadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix("bagsim")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.WeaklyTypedInput = true
		config.ErrorUnused = false
	})
	if err := v.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

var ErrInvalidConfig = errors.New("invalid configuration")

func (cfg *Config) Validate() error {
	var errs []error
	if cfg.CustomersPerDay <= 0 {
		errs = append(errs, fmt.Errorf("customers_per_day must be positive, got %d", cfg.CustomersPerDay))
	}
	if cfg.NDisplayed <= 0 {
		errs = append(errs, fmt.Errorf("n_displayed must be positive, got %d", cfg.NDisplayed))
	}
	if cfg.NumDays <= 0 {
		errs = append(errs, fmt.Errorf("num_days must be positive, got %d", cfg.NumDays))
	}
	if cfg.PoolMultiplier <= 0 {
		errs = append(errs, fmt.Errorf("pool_multiplier must be positive, got %d", cfg.PoolMultiplier))
	}
	if cfg.InventoryVarianceMin < 0 || cfg.InventoryVarianceMax < cfg.InventoryVarianceMin {
		errs = append(errs, fmt.Errorf("inventory variance range [%g, %g] is invalid",
			cfg.InventoryVarianceMin, cfg.InventoryVarianceMax))
	}
	switch cfg.StoreSource {
	case StoreSourceDefault, StoreSourcePostgres:
	case StoreSourceCSV:
		if cfg.StoresCSV == "" {
			errs = append(errs, errors.New("store_source csv requires stores_csv"))
		}
	case StoreSourceSynthetic:
		if cfg.SyntheticStores <= 0 {
			errs = append(errs, fmt.Errorf("synthetic_stores must be positive, got %d", cfg.SyntheticStores))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store_source %q", cfg.StoreSource))
	}
	switch cfg.OutputFormat {
	case OutputNone, OutputConsole, OutputJSON, OutputCSV, OutputParquet, OutputKafka:
	default:
		errs = append(errs, fmt.Errorf("unknown output_format %q", cfg.OutputFormat))
	}
	switch cfg.OutputDestination {
	case DestinationLocal:
	case DestinationS3:
		if cfg.CloudStorage.BucketName == "" {
			errs = append(errs, errors.New("output_destination s3 requires cloud_storage.bucket_name"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown output_destination %q", cfg.OutputDestination))
	}
	switch cfg.ReportFormat {
	case ReportText, ReportYAML:
	default:
		errs = append(errs, fmt.Errorf("unknown report_format %q", cfg.ReportFormat))
	}
	if (cfg.StoreSource == StoreSourcePostgres || cfg.PersistResults) && cfg.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required for postgres store source or persist_results"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
