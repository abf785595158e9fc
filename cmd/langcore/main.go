// Package main implements the langcore CLI: a single binary delivering the
// Unified Index builder, the Semantic Analyzer, and the LSP/Tool-Call
// servers as cobra subcommands.
//
// # File Index
//
//   - main.go           - entry point, rootCmd, global flags, exit-code plumbing
//   - cmd_analyze.go    - analyzeCmd: parse + full semantic analysis of source files
//   - cmd_check.go      - checkCmd: parse-only syntax check
//   - cmd_validate.go   - validateCmd: build the index and report Build-level errors
//   - cmd_index.go      - indexCmd: build and persist the Unified Index
//   - cmd_find.go       - findCmd: one-shot find_type lookup against a persisted index
//   - cmd_compat.go     - compatCmd: one-shot check_type_compatibility lookup
//   - cmd_stats.go      - statsCmd: entity/method/property counts for a project
//   - cmd_lsp.go        - lspCmd: start the LSP façade over stdio
//   - cmd_toolserver.go - toolServerCmd: start the Tool-Call Server over stdio
//   - shared.go         - loadSnapshot, exitError, diagnostic text rendering
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"langcore/internal/config"
	"langcore/internal/logging"
)

var (
	cacheRoot       string
	profilePath     string
	platformVersion string
	logLevel        string
	verbose         bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "langcore",
	Short: "Static analysis engine for the Language",
	Long: `langcore indexes platform and configuration entities into a Unified
Index, parses and semantically analyzes source files against it, and
exposes both as an LSP façade and a Tool-Call Server for external agents.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(os.Getenv("LANGCORE_CONFIG"))
		if err != nil {
			return usageError(err)
		}
		loaded.ApplyFlags(cacheRoot, profilePath, platformVersion, logLevel, verbose)
		cfg = loaded

		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zapCfg.Build()
		if err != nil {
			return usageError(fmt.Errorf("initialize logger: %w", err))
		}

		if err := logging.Initialize(cfg.CacheRoot, cfg.LogLevel); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cacheRoot, "cache-root", "", "Cache root (default: $LANGCORE_HOME or $HOME/.langcore)")
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "", "Rule-configuration document (TOML or YAML)")
	rootCmd.PersistentFlags().StringVar(&platformVersion, "platform-version", "", "Platform version to index/load")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		analyzeCmd,
		checkCmd,
		validateCmd,
		indexCmd,
		findCmd,
		compatCmd,
		statsCmd,
		lspCmd,
		toolServerCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, ee.err)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
