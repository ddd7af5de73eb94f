package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// StorageConfig selects and parameterizes the ledger persistence backend.
type StorageConfig struct {
	Type string     `json:"type" mapstructure:"type"`
	File FileConfig `json:"file" mapstructure:"file"`
}

// FileConfig holds file backend settings.
type FileConfig struct {
	Path     string `json:"path" mapstructure:"path"`
	Compress bool   `json:"compress" mapstructure:"compress"`
}

// OTelConfig holds OpenTelemetry metrics settings.
type OTelConfig struct {
	Enabled     bool
	ServiceName string
	Interval    time.Duration
	Endpoint    string
	Insecure    bool
}

// RelayConfig holds swap relay settings.
type RelayConfig struct {
	Enabled bool
	URL     string
	Secret  string
}

// FeatureConfig holds the feature flags the host may toggle.
type FeatureConfig struct {
	// Unrestricted is the developer escape hatch: eligibility and tuning
	// verification pass unconditionally while it is set.
	Unrestricted bool
	// LogEngines enables per-application debug logging.
	LogEngines bool
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./swaplogs")

	viper.SetDefault("catalog.url", "http://localhost:5000")
	viper.SetDefault("catalog.apiKey", "")

	viper.SetDefault("gate.featureKey", "swaps")

	viper.SetDefault("storage.type", "file")
	viper.SetDefault("storage.file.path", "./swaps.json")
	viper.SetDefault("storage.file.compress", true)

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "swaps")
	viper.SetDefault("db.sqlitePath", "./swaps.db")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "swap-metrics")

	viper.SetDefault("relay.enabled", false)
	viper.SetDefault("relay.url", "ws://localhost:8080/relay")
	viper.SetDefault("relay.secret", "")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "swaps-extension")
	viper.SetDefault("otel.interval", "15s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("features.unrestricted", false)
	viper.SetDefault("features.logEngines", false)

	viper.SetConfigName("swaps.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStorageConfig returns the typed storage section.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		File: FileConfig{
			Path:     viper.GetString("storage.file.path"),
			Compress: viper.GetBool("storage.file.compress"),
		},
	}
}

// GetOTelConfig returns the typed otel section.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:     viper.GetBool("otel.enabled"),
		ServiceName: viper.GetString("otel.serviceName"),
		Interval:    viper.GetDuration("otel.interval"),
		Endpoint:    viper.GetString("otel.endpoint"),
		Insecure:    viper.GetBool("otel.insecure"),
	}
}

// GetRelayConfig returns the typed relay section.
func GetRelayConfig() RelayConfig {
	return RelayConfig{
		Enabled: viper.GetBool("relay.enabled"),
		URL:     viper.GetString("relay.url"),
		Secret:  viper.GetString("relay.secret"),
	}
}

// GetFeatureConfig returns the typed feature flag section.
func GetFeatureConfig() FeatureConfig {
	return FeatureConfig{
		Unrestricted: viper.GetBool("features.unrestricted"),
		LogEngines:   viper.GetBool("features.logEngines"),
	}
}
