package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	defaultListenAddr      = "0.0.0.0:7272"
	defaultSrvWriteTimeout = 15 * time.Second
	defaultSrvReadTimeout  = 15 * time.Second
	defaultPrecision       = 4
	defaultHistoryLimit    = 100
	defaultMarketInterval  = time.Minute
	defaultMarketTimeout   = 10 * time.Second

	// HistoryBackendMemory keeps results in process memory.
	HistoryBackendMemory = "memory"
	// HistoryBackendPostgres persists results to PostgreSQL.
	HistoryBackendPostgres = "postgres"
)

var (
	validate = validator.New()

	// ErrEmptyConfigPath defines a sentinel error for an empty config path.
	ErrEmptyConfigPath = errors.New("empty configuration file path")
)

type (
	// Config defines all statify service configuration parameters.
	Config struct {
		Server         Server  `mapstructure:"server"`
		History        History `mapstructure:"history"`
		Market         Market  `mapstructure:"market"`
		Precision      int     `mapstructure:"precision" validate:"gte=0,lte=10"`
		DefaultClasses int     `mapstructure:"default_classes" validate:"gte=0"`
	}

	// Server defines the API server configuration.
	Server struct {
		ListenAddr     string        `mapstructure:"listen_addr"`
		WriteTimeout   time.Duration `mapstructure:"write_timeout"`
		ReadTimeout    time.Duration `mapstructure:"read_timeout"`
		VerboseCORS    bool          `mapstructure:"verbose_cors"`
		AllowedOrigins []string      `mapstructure:"allowed_origins"`
	}

	// History defines where computed results are persisted.
	History struct {
		Backend string `mapstructure:"backend" validate:"omitempty,oneof=memory postgres"`
		DSN     string `mapstructure:"dsn"`
		Limit   int    `mapstructure:"limit" validate:"gte=0"`
	}

	// Market defines the stock-quote source and the symbols the watcher
	// keeps statistics for.
	Market struct {
		Enabled  bool          `mapstructure:"enabled"`
		Endpoint string        `mapstructure:"endpoint"`
		APIKey   string        `mapstructure:"api_key"`
		Symbols  []string      `mapstructure:"symbols"`
		Interval time.Duration `mapstructure:"interval"`
		Timeout  time.Duration `mapstructure:"timeout"`
	}
)

// Validate returns an error if the Config object is invalid.
func (c Config) Validate() error {
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateMarket(); err != nil {
		return err
	}
	return validate.Struct(c)
}

func (c Config) validateHistory() error {
	if c.History.Backend == HistoryBackendPostgres && c.History.DSN == "" {
		return fmt.Errorf("postgres history backend requires a dsn")
	}
	return nil
}

func (c Config) validateMarket() error {
	if !c.Market.Enabled {
		return nil
	}
	if len(c.Market.Symbols) == 0 {
		return fmt.Errorf("market watcher enabled with no symbols")
	}
	for _, symbol := range c.Market.Symbols {
		if symbol == "" {
			return fmt.Errorf("market symbol cannot be empty")
		}
	}
	if c.Market.APIKey == "" {
		return fmt.Errorf("market watcher requires an api key")
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = defaultListenAddr
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = defaultSrvWriteTimeout
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = defaultSrvReadTimeout
	}
	if c.Precision == 0 {
		c.Precision = defaultPrecision
	}
	if c.History.Backend == "" {
		c.History.Backend = HistoryBackendMemory
	}
	if c.History.Limit == 0 {
		c.History.Limit = defaultHistoryLimit
	}
	if c.Market.Interval == 0 {
		c.Market.Interval = defaultMarketInterval
	}
	if c.Market.Timeout == 0 {
		c.Market.Timeout = defaultMarketTimeout
	}
}
