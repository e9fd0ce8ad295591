// Package config defines all configuration for the core engine. Config
// is loaded from a YAML file (default: configs/config.yaml) with
// sensitive and operational fields overridable via CORE_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration. Maps directly to the YAML file
// structure.
type Config struct {
	Bus       BusConfig       `mapstructure:"bus"`
	Exchanges []ExchangeConfig `mapstructure:"exchanges"`
	Strategy  StrategyConfig  `mapstructure:"strategy"`
	Risk      RiskConfig      `mapstructure:"risk"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// BusConfig tunes the event bus's per-channel capacities and default
// publish timeout (spec.md §4.4).
type BusConfig struct {
	MarketCapacity    int           `mapstructure:"market_capacity"`
	SignalCapacity    int           `mapstructure:"signal_capacity"`
	OrderCapacity     int           `mapstructure:"order_capacity"`
	ExecutionCapacity int           `mapstructure:"execution_capacity"`
	RiskCapacity      int           `mapstructure:"risk_capacity"`
	PublishTimeout    time.Duration `mapstructure:"publish_timeout"`
}

// ExchangeConfig names one exchange connection to ingest and the
// symbols to subscribe to on it.
type ExchangeConfig struct {
	Exchange   string        `mapstructure:"exchange"`
	URL        string        `mapstructure:"url"`
	Symbols    []string      `mapstructure:"symbols"`
	Heartbeat  time.Duration `mapstructure:"heartbeat"`
}

// StrategyConfig tunes the built-in momentum strategy and the
// indicator state every strategy runner owns.
type StrategyConfig struct {
	AccountID          string  `mapstructure:"account_id"`
	LookbackPeriods    int     `mapstructure:"lookback_periods"`
	MomentumThreshold  float64 `mapstructure:"momentum_threshold"`
	BaseSize           float64 `mapstructure:"base_size"`
	TargetExchange     string  `mapstructure:"target_exchange"`
	IndicatorBufferLen int     `mapstructure:"indicator_buffer_len"`

	ArbitrageMinProfitPct float64 `mapstructure:"arbitrage_min_profit_pct"`
	ArbitrageFeePct       float64 `mapstructure:"arbitrage_fee_pct"`
}

// RiskConfig sets hard limits that trigger a risk event (spec.md §4.8).
type RiskConfig struct {
	MaxExposurePerSymbol float64       `mapstructure:"max_exposure_per_symbol"`
	MaxGlobalExposure    float64       `mapstructure:"max_global_exposure"`
	MaxSymbolsActive     int           `mapstructure:"max_symbols_active"`
	KillSwitchDropPct    float64       `mapstructure:"kill_switch_drop_pct"`
	KillSwitchWindowSec  int           `mapstructure:"kill_switch_window_sec"`
	MaxDailyLoss         float64       `mapstructure:"max_daily_loss"`
	CooldownAfterKill    time.Duration `mapstructure:"cooldown_after_kill"`
}

// LoggingConfig controls the slog handler used across the engine.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config from a YAML file with env var overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("CORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if level := os.Getenv("CORE_LOGGING_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	return &cfg, nil
}

// Validate checks all required fields and value ranges.
func (c *Config) Validate() error {
	if len(c.Exchanges) == 0 {
		return fmt.Errorf("at least one entry under exchanges is required")
	}
	for i, ex := range c.Exchanges {
		if ex.Exchange == "" {
			return fmt.Errorf("exchanges[%d].exchange is required", i)
		}
		if len(ex.Symbols) == 0 {
			return fmt.Errorf("exchanges[%d].symbols must be non-empty", i)
		}
	}
	if c.Strategy.AccountID == "" {
		return fmt.Errorf("strategy.account_id is required")
	}
	if c.Strategy.LookbackPeriods <= 0 {
		return fmt.Errorf("strategy.lookback_periods must be > 0")
	}
	if c.Strategy.MomentumThreshold <= 0 {
		return fmt.Errorf("strategy.momentum_threshold must be > 0")
	}
	if c.Risk.MaxExposurePerSymbol <= 0 {
		return fmt.Errorf("risk.max_exposure_per_symbol must be > 0")
	}
	if c.Risk.MaxGlobalExposure <= 0 {
		return fmt.Errorf("risk.max_global_exposure must be > 0")
	}
	if c.Risk.MaxSymbolsActive <= 0 {
		return fmt.Errorf("risk.max_symbols_active must be > 0")
	}
	return nil
}
