// config.go - Configuration for account generation
package main

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog"

	"rollupstate/internal/account"
	"rollupstate/internal/felt"
)

// Config represents the account generation configuration
type Config struct {
	// Account settings
	AccountType     string            `json:"account_type"`
	StorageMode     string            `json:"storage_mode"`
	AnchorBlock     uint32            `json:"anchor_block"`
	AnchorBlockHash string            `json:"anchor_block_hash,omitempty"`
	InitSeed        string            `json:"init_seed,omitempty"`
	Components      []ComponentConfig `json:"components"`

	// Seed grinding
	Workers        int    `json:"workers"`
	MaxAttempts    uint64 `json:"max_attempts"`
	TimeoutSeconds int    `json:"timeout_seconds"`

	// Logging
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
	LogFile   string `json:"log_file,omitempty"`
}

// ComponentConfig describes one account component: its exported procedure roots as hex
// digests and the storage slots it brings.
type ComponentConfig struct {
	Name           string       `json:"name"`
	Procedures     []string     `json:"procedures"`
	Slots          []SlotConfig `json:"slots,omitempty"`
	SupportedTypes []string     `json:"supported_types,omitempty"`
}

// SlotConfig describes a storage slot. Map slots start empty.
type SlotConfig struct {
	Type  string    `json:"type"`
	Value [4]uint64 `json:"value"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		AccountType: account.RegularAccountUpdatableCode.String(),
		StorageMode: account.StoragePublic.String(),
		Components: []ComponentConfig{{
			Name: "basic-wallet",
			Procedures: []string{
				felt.HashElements([]felt.Felt{1}).Hex(),
				felt.HashElements([]felt.Felt{2}).Hex(),
			},
			Slots: []SlotConfig{{Type: "value"}, {Type: "map"}},
		}},
		Workers:        4,
		MaxAttempts:    1 << 24,
		TimeoutSeconds: 60,
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

// LoadConfig loads configuration from file or creates default
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()

		var config Config
		if err := json.NewDecoder(file).Decode(&config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
		return &config, nil
	}

	config := DefaultConfig()
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save default config: %w", err)
	}
	return config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := account.ParseAccountType(c.AccountType); err != nil {
		return fmt.Errorf("account_type: %w", err)
	}
	if _, err := account.ParseStorageMode(c.StorageMode); err != nil {
		return fmt.Errorf("storage_mode: %w", err)
	}
	if _, err := c.Anchor(); err != nil {
		return fmt.Errorf("anchor: %w", err)
	}
	if c.InitSeed != "" {
		if _, err := c.Seed(); err != nil {
			return fmt.Errorf("init_seed: %w", err)
		}
	}
	if len(c.Components) == 0 {
		return fmt.Errorf("at least one component is required")
	}
	if _, err := c.BuildComponents(); err != nil {
		return err
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// Type returns the parsed account type.
func (c *Config) Type() (account.AccountType, error) {
	return account.ParseAccountType(c.AccountType)
}

// Mode returns the parsed storage mode.
func (c *Config) Mode() (account.StorageMode, error) {
	return account.ParseStorageMode(c.StorageMode)
}

// Anchor returns the anchor block. An empty hash is the zero digest.
func (c *Config) Anchor() (account.Anchor, error) {
	var hash felt.Digest
	if c.AnchorBlockHash != "" {
		h, err := felt.DigestFromHex(c.AnchorBlockHash)
		if err != nil {
			return account.Anchor{}, err
		}
		hash = h
	}
	return account.NewAnchor(c.AnchorBlock, hash)
}

// Seed returns the configured initial seed, or 32 random bytes if none is set.
func (c *Config) Seed() ([32]byte, error) {
	var seed [32]byte
	if c.InitSeed == "" {
		_, err := rand.Read(seed[:])
		return seed, err
	}
	b, err := hexutil.Decode(c.InitSeed)
	if err != nil {
		return seed, err
	}
	if len(b) != len(seed) {
		return seed, fmt.Errorf("seed must be %d bytes, got %d", len(seed), len(b))
	}
	copy(seed[:], b)
	return seed, nil
}

// BuildComponents turns the component descriptions into account components. A component
// without supported_types supports every account type.
func (c *Config) BuildComponents() ([]*account.Component, error) {
	out := make([]*account.Component, 0, len(c.Components))
	for i, cc := range c.Components {
		roots := make([]felt.Digest, len(cc.Procedures))
		for j, p := range cc.Procedures {
			root, err := felt.DigestFromHex(p)
			if err != nil {
				return nil, fmt.Errorf("component %d (%s) procedure %d: %w", i, cc.Name, j, err)
			}
			roots[j] = root
		}
		lib, err := account.NewLibrary(cc.Name, roots...)
		if err != nil {
			return nil, fmt.Errorf("component %d (%s): %w", i, cc.Name, err)
		}

		slots := make([]account.StorageSlot, len(cc.Slots))
		for j, s := range cc.Slots {
			switch strings.ToLower(s.Type) {
			case "value":
				slots[j] = account.ValueSlot(felt.NewWord(s.Value[0], s.Value[1], s.Value[2], s.Value[3]))
			case "map":
				slots[j] = account.EmptyMapSlot()
			default:
				return nil, fmt.Errorf("component %d (%s) slot %d: unknown slot type %q", i, cc.Name, j, s.Type)
			}
		}

		comp := account.NewComponent(lib, slots...)
		if len(cc.SupportedTypes) == 0 {
			comp.WithSupportsAllTypes()
		}
		for _, name := range cc.SupportedTypes {
			t, err := account.ParseAccountType(name)
			if err != nil {
				return nil, fmt.Errorf("component %d (%s): %w", i, cc.Name, err)
			}
			comp.WithSupportedType(t)
		}
		out = append(out, comp)
	}
	return out, nil
}
