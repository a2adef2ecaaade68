// main.go - Command-line tool for creating and inspecting rollup accounts.
//
// Usage:
//   accountgen init-config --config accountgen.json
//   accountgen new --config accountgen.json [--prove-dir out/]
//   accountgen inspect 0x...
//   accountgen verify-id 0x... --proof out/id.proof --vk out/id.vk

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"rollupstate/internal/account"
	"rollupstate/internal/idcircuit"
)

// Build-time variables
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "accountgen",
		Short:        "Create and inspect rollup accounts",
		Version:      fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "accountgen.json", "path to the configuration file")

	rootCmd.AddCommand(
		initConfigCmd(&configPath),
		newAccountCmd(&configPath),
		inspectCmd(),
		verifyIDCmd(),
	)
	return rootCmd
}

func initConfigCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(*configPath); err == nil {
				return fmt.Errorf("config file %s already exists", *configPath)
			}
			if err := SaveConfig(DefaultConfig(), *configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", *configPath)
			return nil
		},
	}
}

func newAccountCmd(configPath *string) *cobra.Command {
	var proveDir string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Grind a seed and create a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig(*configPath)
			if err != nil {
				return err
			}
			if err := config.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger, closeLog, err := NewLogger(config.LogLevel, config.LogFormat, config.LogFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			metrics := NewMetricsCollector()
			defer func() {
				logger.Debug().Interface("metrics", metrics.Summary()).Msg("run finished")
			}()

			acct, seed, err := createAccount(cmd.Context(), config, logger, metrics)
			if err != nil {
				metrics.RecordError("create_account")
				return err
			}

			headerBytes, err := acct.Header().MarshalBinary()
			if err != nil {
				return fmt.Errorf("encode account header: %w", err)
			}

			out := cmd.OutOrStdout()
			id := acct.ID()
			fmt.Fprintf(out, "id:                 %s\n", id)
			fmt.Fprintf(out, "type:               %s\n", id.AccountType())
			fmt.Fprintf(out, "storage mode:       %s\n", id.StorageMode())
			fmt.Fprintf(out, "anchor epoch:       %d\n", id.AnchorEpoch())
			fmt.Fprintf(out, "seed:               %s\n", seed)
			fmt.Fprintf(out, "code commitment:    %s\n", acct.Code().Commitment())
			fmt.Fprintf(out, "storage commitment: %s\n", acct.Storage().Commitment())
			fmt.Fprintf(out, "commitment:         %s\n", acct.Commitment())
			fmt.Fprintf(out, "header:             0x%x\n", headerBytes)

			if proveDir != "" {
				if err := proveID(id, proveDir, logger, metrics); err != nil {
					metrics.RecordError("prove_id")
					return err
				}
				fmt.Fprintf(out, "proof:              %s\n", filepath.Join(proveDir, "id.proof"))
			}

			return nil
		},
	}
	cmd.Flags().StringVar(&proveDir, "prove-dir", "", "write a Groth16 proof of ID validity and its verifying key to this directory")
	return cmd
}

func createAccount(ctx context.Context, config *Config, logger zerolog.Logger, metrics *MetricsCollector) (*account.Account, string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if config.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(config.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	accountType, err := config.Type()
	if err != nil {
		return nil, "", err
	}
	mode, err := config.Mode()
	if err != nil {
		return nil, "", err
	}
	anchor, err := config.Anchor()
	if err != nil {
		return nil, "", err
	}
	initSeed, err := config.Seed()
	if err != nil {
		return nil, "", fmt.Errorf("init seed: %w", err)
	}
	components, err := config.BuildComponents()
	if err != nil {
		return nil, "", err
	}

	var attempts atomic.Uint64
	builder := account.NewAccountBuilder(initSeed).
		Anchor(anchor).
		AccountType(accountType).
		StorageMode(mode).
		WithSeedOptions(
			account.WithWorkers(config.Workers),
			account.WithMaxAttempts(config.MaxAttempts),
			account.WithAttemptCounter(&attempts),
		)
	for _, c := range components {
		builder.WithComponent(c)
	}

	logger.Info().
		Str("type", accountType.String()).
		Str("storage_mode", mode.String()).
		Uint16("anchor_epoch", anchor.Epoch()).
		Int("workers", config.Workers).
		Msg("grinding account seed")

	start := time.Now()
	acct, seed, err := builder.Build(ctx)
	elapsed := time.Since(start)
	if err != nil {
		logger.Error().Err(err).Uint64("attempts", attempts.Load()).Dur("elapsed", elapsed).Msg("seed grinding failed")
		return nil, "", err
	}
	metrics.RecordAccount(accountType.String(), attempts.Load(), elapsed)

	logger.Info().
		Str("id", acct.ID().Hex()).
		Uint64("attempts", attempts.Load()).
		Dur("elapsed", elapsed).
		Msg("account created")

	return acct, fmt.Sprintf("[%s, %s, %s, %s]", seed[0], seed[1], seed[2], seed[3]), nil
}

func proveID(id account.ID, dir string, logger zerolog.Logger, metrics *MetricsCollector) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create proof directory: %w", err)
	}

	start := time.Now()
	ccs, err := idcircuit.Compile()
	if err != nil {
		return err
	}
	logger.Debug().Int("constraints", ccs.GetNbConstraints()).Dur("elapsed", time.Since(start)).Msg("id circuit compiled")

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return fmt.Errorf("groth16 setup failed: %w", err)
	}
	proof, err := idcircuit.Prove(ccs, pk, id)
	if err != nil {
		return err
	}
	metrics.RecordProof(time.Since(start))

	if err := os.WriteFile(filepath.Join(dir, "id.proof"), proof, 0644); err != nil {
		return fmt.Errorf("failed to write proof: %w", err)
	}
	if err := idcircuit.SaveVerifyingKey(filepath.Join(dir, "id.vk"), vk); err != nil {
		return fmt.Errorf("failed to write verifying key: %w", err)
	}
	logger.Info().Str("dir", dir).Msg("id proof written")
	return nil
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <account-id>",
		Short: "Decode an account ID and print its metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := account.IDFromHex(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:           %s\n", id)
			fmt.Fprintf(out, "prefix:       %s\n", id.Prefix())
			fmt.Fprintf(out, "suffix:       %s\n", id.Suffix())
			fmt.Fprintf(out, "integer:      %s\n", id.Int().Dec())
			fmt.Fprintf(out, "version:      %s\n", id.Version())
			fmt.Fprintf(out, "type:         %s\n", id.AccountType())
			fmt.Fprintf(out, "faucet:       %t\n", id.IsFaucet())
			fmt.Fprintf(out, "storage mode: %s\n", id.StorageMode())
			fmt.Fprintf(out, "anchor epoch: %d\n", id.AnchorEpoch())
			return nil
		},
	}
}

func verifyIDCmd() *cobra.Command {
	var proofPath, vkPath string

	cmd := &cobra.Command{
		Use:   "verify-id <account-id>",
		Short: "Verify a Groth16 proof of ID validity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := account.IDFromHex(args[0])
			if err != nil {
				return err
			}
			proof, err := os.ReadFile(proofPath)
			if err != nil {
				return fmt.Errorf("failed to read proof: %w", err)
			}
			vk, err := idcircuit.LoadVerifyingKey(vkPath)
			if err != nil {
				return fmt.Errorf("failed to read verifying key: %w", err)
			}
			if err := idcircuit.Verify(proof, vk, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "proof valid")
			return nil
		},
	}
	cmd.Flags().StringVar(&proofPath, "proof", "id.proof", "path to the proof")
	cmd.Flags().StringVar(&vkPath, "vk", "id.vk", "path to the verifying key")
	return cmd
}
