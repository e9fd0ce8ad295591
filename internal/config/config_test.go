package config

import "testing"

func validConfig() Config {
	return Config{
		Exchanges: []ExchangeConfig{{Exchange: "kraken", Symbols: []string{"BTC-USD"}}},
		Strategy: StrategyConfig{
			AccountID:         "acct-1",
			LookbackPeriods:   5,
			MomentumThreshold: 0.01,
		},
		Risk: RiskConfig{
			MaxExposurePerSymbol: 1000,
			MaxGlobalExposure:    5000,
			MaxSymbolsActive:     10,
		},
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidateRejectsNoExchanges(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Exchanges = nil
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for empty exchanges")
	}
}

func TestValidateRejectsExchangeWithoutSymbols(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Exchanges = []ExchangeConfig{{Exchange: "kraken"}}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for exchange with no symbols")
	}
}

func TestValidateRejectsMissingAccountID(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Strategy.AccountID = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for missing account_id")
	}
}

func TestValidateRejectsZeroRiskLimits(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Risk.MaxGlobalExposure = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for zero max_global_exposure")
	}
}
