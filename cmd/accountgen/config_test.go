package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollupstate/internal/account"
)

func TestDefaultConfigValidates(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())

	components, err := config.BuildComponents()
	require.NoError(t, err)
	require.Len(t, components, 1)
	assert.Len(t, components[0].StorageSlots(), 2)
	assert.Len(t, components[0].Library().Roots(), 2)
	for _, typ := range account.AllAccountTypes {
		assert.True(t, components[0].SupportsType(typ), typ.String())
	}
}

func TestLoadConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "accountgen.json")

	created, err := LoadConfig(path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, created, loaded)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accountgen.json")

	config := DefaultConfig()
	config.AccountType = account.FungibleFaucet.String()
	config.StorageMode = account.StoragePrivate.String()
	config.AnchorBlock = 2 << account.EpochLengthExponent
	config.InitSeed = "0x" + strings.Repeat("ab", 32)
	config.Components[0].SupportedTypes = []string{"fungible-faucet"}

	require.NoError(t, SaveConfig(config, path))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)
	require.NoError(t, loaded.Validate())

	anchor, err := loaded.Anchor()
	require.NoError(t, err)
	assert.Equal(t, uint16(2), anchor.Epoch())

	seed, err := loaded.Seed()
	require.NoError(t, err)
	assert.Equal(t, byte(0xab), seed[31])

	components, err := loaded.BuildComponents()
	require.NoError(t, err)
	assert.True(t, components[0].SupportsType(account.FungibleFaucet))
	assert.False(t, components[0].SupportsType(account.RegularAccountImmutableCode))
}

func TestRandomSeedWhenUnset(t *testing.T) {
	config := DefaultConfig()
	a, err := config.Seed()
	require.NoError(t, err)
	b, err := config.Seed()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestConfigValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown account type", func(c *Config) { c.AccountType = "vault" }},
		{"unknown storage mode", func(c *Config) { c.StorageMode = "network" }},
		{"anchor not at epoch start", func(c *Config) { c.AnchorBlock = 1 }},
		{"bad anchor hash", func(c *Config) { c.AnchorBlockHash = "0x1234" }},
		{"short seed", func(c *Config) { c.InitSeed = "0x0102" }},
		{"no components", func(c *Config) { c.Components = nil }},
		{"bad procedure root", func(c *Config) { c.Components[0].Procedures = []string{"zz"} }},
		{"duplicate procedure root", func(c *Config) {
			c.Components[0].Procedures = []string{c.Components[0].Procedures[0], c.Components[0].Procedures[0]}
		}},
		{"unknown slot type", func(c *Config) { c.Components[0].Slots = []SlotConfig{{Type: "list"}} }},
		{"unknown supported type", func(c *Config) { c.Components[0].SupportedTypes = []string{"wallet"} }},
		{"no workers", func(c *Config) { c.Workers = 0 }},
		{"negative timeout", func(c *Config) { c.TimeoutSeconds = -1 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestMetricsSummary(t *testing.T) {
	mc := NewMetricsCollector()
	mc.RecordAccount("fungible-faucet", 10, 0)
	mc.RecordAccount("fungible-faucet", 30, 0)
	mc.RecordError("prove_id")

	summary := mc.Summary()
	assert.Equal(t, uint64(2), summary.Counters["accounts_created_type_fungible-faucet"])
	assert.Equal(t, uint64(40), summary.Counters["seed_attempts_type_fungible-faucet"])
	assert.Equal(t, uint64(1), summary.Counters["error_count_type_prove_id"])
	assert.Equal(t, 2, summary.Histograms["seed_grind_time_type_fungible-faucet"].Count)
}
