package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// DefaultSupportedChains lists the chain ids the Odos router serves
var DefaultSupportedChains = []uint64{
	1,     // Ethereum
	42161, // Arbitrum
	10,    // Optimism
	56,    // Bsc
	137,   // Polygon
	250,   // Fantom
	324,   // ZkSync Era
	5000,  // Mantle
	8453,  // Base
	34443, // Mode
	43114, // Avalanche
	59144, // Linea
}

// ChainNames maps supported chain ids to display names
var ChainNames = map[uint64]string{
	1:     "Ethereum",
	42161: "Arbitrum",
	10:    "Optimism",
	56:    "BNB Smart Chain",
	137:   "Polygon",
	250:   "Fantom",
	324:   "zkSync Era",
	5000:  "Mantle",
	8453:  "Base",
	34443: "Mode",
	43114: "Avalanche",
	59144: "Linea",
}

// Config holds the application configuration
type Config struct {
	PrivateKey string
	LogLevel   string
	Odos       OdosConfig
	Chains     ChainsConfig
	Allowance  AllowanceConfig
	Metrics    MetricsConfig
}

// OdosConfig holds routing service settings and the fixed quote policy
type OdosConfig struct {
	BaseURL         string
	SlippagePercent float64
	ReferralCode    uint64
	Compact         bool
	Timeout         time.Duration
}

// ChainsConfig holds the chain allow-list
type ChainsConfig struct {
	Supported []uint64
}

// AllowanceConfig controls how the guard waits after an approval.
// A zero PollTimeout selects the fixed SettleDelay.
type AllowanceConfig struct {
	SettleDelay  time.Duration
	PollTimeout  time.Duration
	PollInterval time.Duration
}

// MetricsConfig controls metrics export
type MetricsConfig struct {
	Textfile string
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".odos-swap")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")

	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("ODOS_SWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}

	globalConfig = cfg
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("odos.base_url", "https://api.odos.xyz")
	v.SetDefault("odos.slippage_percent", 1)
	v.SetDefault("odos.referral_code", 0)
	v.SetDefault("odos.compact", true)
	v.SetDefault("odos.timeout", 30*time.Second)
	v.SetDefault("chains.supported", DefaultSupportedChains)
	v.SetDefault("allowance.settle_delay", 500*time.Millisecond)
	v.SetDefault("allowance.poll_timeout", time.Duration(0))
	v.SetDefault("allowance.poll_interval", 250*time.Millisecond)
	v.SetDefault("metrics.textfile", "")
}

func fromViper(v *viper.Viper) (*Config, error) {
	chains, err := chainList(v.Get("chains.supported"))
	if err != nil {
		return nil, fmt.Errorf("invalid chains.supported: %w", err)
	}

	cfg := &Config{
		PrivateKey: v.GetString("private_key"),
		LogLevel:   v.GetString("log.level"),
		Odos: OdosConfig{
			BaseURL:         strings.TrimRight(v.GetString("odos.base_url"), "/"),
			SlippagePercent: v.GetFloat64("odos.slippage_percent"),
			ReferralCode:    v.GetUint64("odos.referral_code"),
			Compact:         v.GetBool("odos.compact"),
			Timeout:         v.GetDuration("odos.timeout"),
		},
		Chains: ChainsConfig{
			Supported: chains,
		},
		Allowance: AllowanceConfig{
			SettleDelay:  v.GetDuration("allowance.settle_delay"),
			PollTimeout:  v.GetDuration("allowance.poll_timeout"),
			PollInterval: v.GetDuration("allowance.poll_interval"),
		},
		Metrics: MetricsConfig{
			Textfile: v.GetString("metrics.textfile"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// chainList accepts a yaml list or a comma/space separated env value
func chainList(raw interface{}) ([]uint64, error) {
	var items []interface{}
	switch v := raw.(type) {
	case []uint64:
		return v, nil
	case string:
		for _, f := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
			items = append(items, f)
		}
	default:
		var err error
		items, err = cast.ToSliceE(raw)
		if err != nil {
			return nil, err
		}
	}

	ids := make([]uint64, 0, len(items))
	for _, item := range items {
		id, err := cast.ToUint64E(item)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	if c.Odos.BaseURL == "" {
		return fmt.Errorf("odos.base_url must not be empty")
	}
	if c.Odos.SlippagePercent <= 0 || c.Odos.SlippagePercent >= 100 {
		return fmt.Errorf("odos.slippage_percent must be between 0 and 100")
	}
	if len(c.Chains.Supported) == 0 {
		return fmt.Errorf("chains.supported must list at least one chain id")
	}
	if c.Allowance.SettleDelay < 0 || c.Allowance.PollTimeout < 0 {
		return fmt.Errorf("allowance durations must not be negative")
	}
	if c.Allowance.PollTimeout > 0 && c.Allowance.PollInterval <= 0 {
		return fmt.Errorf("allowance.poll_interval must be positive when polling is enabled")
	}
	return nil
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := fromViper(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}
