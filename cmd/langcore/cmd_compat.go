package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"langcore/internal/toolserver"
)

var (
	compatFrom      string
	compatTo        string
	compatConfigDir string
)

var compatCmd = &cobra.Command{
	Use:   "compat",
	Short: "One-shot check_type_compatibility lookup against a loaded Unified Index",
	Args:  cobra.NoArgs,
	RunE:  runCompat,
}

func init() {
	compatCmd.Flags().StringVar(&compatFrom, "from", "", "Source type's qualified name")
	compatCmd.Flags().StringVar(&compatTo, "to", "", "Target type's qualified name")
	compatCmd.Flags().StringVar(&compatConfigDir, "config-dir", "", "Application configuration root backing the index")
	compatCmd.MarkFlagRequired("from")
	compatCmd.MarkFlagRequired("to")
}

func runCompat(cmd *cobra.Command, args []string) error {
	logger.Debug("check_type_compatibility lookup", zap.String("from", compatFrom), zap.String("to", compatTo))
	snap, err := loadSnapshot(cfg, compatConfigDir, compatConfigDir)
	if err != nil {
		return err
	}

	compatible, rationale, err := toolserver.CheckTypeCompatibility(context.Background(), snap, compatFrom, compatTo)
	if err != nil {
		return usageError(err)
	}

	if compatible {
		logger.Info("types compatible", zap.String("from", compatFrom), zap.String("to", compatTo), zap.String("rationale", rationale))
		fmt.Printf("compatible: %s -> %s (%s)\n", compatFrom, compatTo, rationale)
		return nil
	}
	logger.Warn("types incompatible", zap.String("from", compatFrom), zap.String("to", compatTo))
	fmt.Printf("incompatible: %s -> %s\n", compatFrom, compatTo)
	return &exitError{code: 1, err: fmt.Errorf("%s is not compatible with %s", compatFrom, compatTo)}
}
