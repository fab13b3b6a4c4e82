package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	General  GeneralConfig  `toml:"general"`
	Server   ServerConfig   `toml:"server"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Oracle   OracleConfig   `toml:"oracle"`
	Market   MarketConfig   `toml:"market"`
	Registry RegistryConfig `toml:"registry"`
}

type GeneralConfig struct {
	DBPath   string `toml:"db_path"`
	LogLevel string `toml:"log_level"`
}

type ServerConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

type PipelineConfig struct {
	StrategySet        string   `toml:"strategy_set"`
	MinCreditScore     float64  `toml:"min_credit_score"`
	MaxBuyersListed    int      `toml:"max_buyers_listed"`
	MaxBuyersContacted int      `toml:"max_buyers_contacted"`
	MinProfitMargin    float64  `toml:"min_profit_margin"` // advisory input only
	FallbackConfidence float64  `toml:"fallback_confidence"`
	OpTimeout          Duration `toml:"op_timeout"`
}

type OracleConfig struct {
	Endpoint         string   `toml:"endpoint"`
	InsightsEndpoint string   `toml:"insights_endpoint"`
	Timeout          Duration `toml:"timeout"`
}

type MarketConfig struct {
	SignalTTL  Duration                  `toml:"signal_ttl"`
	Categories map[string]CategoryConfig `toml:"categories"`
}

// CategoryConfig is the static signal table for one product category.
type CategoryConfig struct {
	Demand      float64 `toml:"demand"`
	Competition float64 `toml:"competition"`
	Trend       string  `toml:"trend"`
	AvgPrice    float64 `toml:"avg_price"`
}

type RegistryConfig struct {
	Counterparties []CounterpartyConfig `toml:"counterparties"`
}

// CounterpartyConfig is one registry seed entry.
type CounterpartyConfig struct {
	Name          string   `toml:"name"`
	Contact       string   `toml:"contact"`
	CreditScore   float64  `toml:"credit_score"`
	PastPurchases int      `toml:"past_purchases"`
	Categories    []string `toml:"categories"`
}

// Duration wraps time.Duration for TOML unmarshaling.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			DBPath:   "./data/trustflow.db",
			LogLevel: "info",
		},
		Server: ServerConfig{
			ListenAddr: ":8080",
		},
		Pipeline: PipelineConfig{
			StrategySet:        "sales",
			MinCreditScore:     7.5,
			MaxBuyersListed:    5,
			MaxBuyersContacted: 3,
			MinProfitMargin:    0.15,
			FallbackConfidence: 0.5,
			OpTimeout:          Duration{30 * time.Second},
		},
		Oracle: OracleConfig{
			Timeout: Duration{15 * time.Second},
		},
		Market: MarketConfig{
			SignalTTL: Duration{10 * time.Minute},
			Categories: map[string]CategoryConfig{
				"Electronics": {Demand: 0.8, Competition: 0.6, Trend: "increasing"},
				"Clothing":    {Demand: 0.6, Competition: 0.8, Trend: "stable"},
				"Home":        {Demand: 0.7, Competition: 0.5, Trend: "increasing"},
				"Books":       {Demand: 0.4, Competition: 0.9, Trend: "decreasing"},
			},
		},
	}
}
