package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const envAPIKey = "ALPHAVANTAGE_API_KEY"

// ParseConfig attempts to read and parse configuration from the given file
// path. An error is returned if reading or parsing the config fails.
func ParseConfig(configPath string) (Config, error) {
	var cfg Config

	if configPath == "" {
		return cfg, ErrEmptyConfigPath
	}

	v := viper.New()
	v.AutomaticEnv()
	// Allow nested env vars to be read with underscore separators.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.Market.APIKey == "" {
		cfg.Market.APIKey = os.Getenv(envAPIKey)
	}
	if cfg.History.DSN == "" {
		cfg.History.DSN = os.Getenv("DATABASE_URL")
	}

	cfg.setDefaults()

	return cfg, cfg.Validate()
}

// DefaultConfig returns a config with every default applied, suitable for
// running without a config file.
func DefaultConfig() Config {
	var cfg Config
	cfg.Market.APIKey = os.Getenv(envAPIKey)
	cfg.History.DSN = os.Getenv("DATABASE_URL")
	cfg.setDefaults()
	return cfg
}

// decodeHook converts "15s" style strings into durations and comma lists
// into slices during viper unmarshalling.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}
