package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at an empty directory so a developer's own
// .odos-swap.yaml does not leak into the test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "https://api.odos.xyz", cfg.Odos.BaseURL)
	assert.Equal(t, 1.0, cfg.Odos.SlippagePercent)
	assert.Equal(t, uint64(0), cfg.Odos.ReferralCode)
	assert.True(t, cfg.Odos.Compact)
	assert.Equal(t, 30*time.Second, cfg.Odos.Timeout)
	assert.Equal(t, DefaultSupportedChains, cfg.Chains.Supported)
	assert.Equal(t, 500*time.Millisecond, cfg.Allowance.SettleDelay)
	assert.Zero(t, cfg.Allowance.PollTimeout)
	assert.Empty(t, cfg.Metrics.Textfile)
	assert.Same(t, cfg, Get())
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("ODOS_SWAP_PRIVATE_KEY", "0xabc")
	t.Setenv("ODOS_SWAP_ODOS_BASE_URL", "http://localhost:9999/")
	t.Setenv("ODOS_SWAP_ODOS_SLIPPAGE_PERCENT", "0.5")
	t.Setenv("ODOS_SWAP_CHAINS_SUPPORTED", "1, 8453")
	t.Setenv("ODOS_SWAP_ALLOWANCE_POLL_TIMEOUT", "10s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0xabc", cfg.PrivateKey)
	assert.Equal(t, "http://localhost:9999", cfg.Odos.BaseURL)
	assert.Equal(t, 0.5, cfg.Odos.SlippagePercent)
	assert.Equal(t, []uint64{1, 8453}, cfg.Chains.Supported)
	assert.Equal(t, 10*time.Second, cfg.Allowance.PollTimeout)
}

func TestLoadFromFile(t *testing.T) {
	home := isolate(t)

	content := `
log:
  level: debug
chains:
  supported: [8453, 42161]
allowance:
  settle_delay: 1s
metrics:
  textfile: /tmp/odos_swap.prom
`
	require.NoError(t, os.WriteFile(filepath.Join(home, ".odos-swap.yaml"), []byte(content), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []uint64{8453, 42161}, cfg.Chains.Supported)
	assert.Equal(t, time.Second, cfg.Allowance.SettleDelay)
	assert.Equal(t, "/tmp/odos_swap.prom", cfg.Metrics.Textfile)
}

func TestLoadRejectsInvalid(t *testing.T) {
	isolate(t)
	t.Setenv("ODOS_SWAP_ODOS_SLIPPAGE_PERCENT", "150")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slippage_percent")
}

func TestChainList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     interface{}
		want    []uint64
		wantErr bool
	}{
		{name: "typed", raw: []uint64{1, 10}, want: []uint64{1, 10}},
		{name: "yaml list", raw: []interface{}{1, "137"}, want: []uint64{1, 137}},
		{name: "comma separated", raw: "1,56,137", want: []uint64{1, 56, 137}},
		{name: "space separated", raw: "1 56", want: []uint64{1, 56}},
		{name: "empty string", raw: "", want: []uint64{}},
		{name: "garbage", raw: "1,eth", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := chainList(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{name: "empty base url", mutate: func(c *Config) { c.Odos.BaseURL = "" }, want: "base_url"},
		{name: "zero slippage", mutate: func(c *Config) { c.Odos.SlippagePercent = 0 }, want: "slippage_percent"},
		{name: "no chains", mutate: func(c *Config) { c.Chains.Supported = nil }, want: "chains.supported"},
		{name: "negative delay", mutate: func(c *Config) { c.Allowance.SettleDelay = -time.Second }, want: "negative"},
		{
			name: "polling without interval",
			mutate: func(c *Config) {
				c.Allowance.PollTimeout = time.Second
				c.Allowance.PollInterval = 0
			},
			want: "poll_interval",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	require.NoError(t, Default().Validate())
}
