package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no customers", func(c *Config) { c.CustomersPerDay = 0 }},
		{"no display", func(c *Config) { c.NDisplayed = 0 }},
		{"no days", func(c *Config) { c.NumDays = -1 }},
		{"inverted variance", func(c *Config) { c.InventoryVarianceMin, c.InventoryVarianceMax = 1.2, 0.8 }},
		{"csv without file", func(c *Config) { c.StoreSource = StoreSourceCSV }},
		{"postgres without url", func(c *Config) { c.StoreSource = StoreSourcePostgres }},
		{"unknown source", func(c *Config) { c.StoreSource = "ftp" }},
		{"unknown output", func(c *Config) { c.OutputFormat = "xml" }},
		{"s3 without bucket", func(c *Config) { c.OutputDestination = DestinationS3 }},
		{"unknown report", func(c *Config) { c.ReportFormat = "html" }},
		{"no synthetic stores", func(c *Config) { c.StoreSource, c.SyntheticStores = StoreSourceSynthetic, 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bagsim.yaml")
	content := `
seed: 7
num_days: 2
strategy: harmony
cloud_storage:
  bucket_name: bags
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 2, cfg.NumDays)
	assert.Equal(t, "harmony", cfg.Strategy)
	assert.Equal(t, "bags", cfg.CloudStorage.BucketName)
	assert.Equal(t, 100, cfg.CustomersPerDay)
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("BAGSIM_CUSTOMERS_PER_DAY", "250")
	cfg, err := LoadConfig(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.CustomersPerDay)
}

func TestLoadConfigInvalid(t *testing.T) {
	v := viper.New()
	v.Set("num_days", 0)
	_, err := LoadConfig(v, "")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
