package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"langcore/internal/toolserver"
)

var findConfigDir string

var findCmd = &cobra.Command{
	Use:   "find <type-name>",
	Short: "One-shot find_type lookup against a loaded Unified Index",
	Args:  cobra.ExactArgs(1),
	RunE:  runFind,
}

func init() {
	findCmd.Flags().StringVar(&findConfigDir, "config-dir", "", "Application configuration root backing the index")
}

func runFind(cmd *cobra.Command, args []string) error {
	logger.Debug("find_type lookup", zap.String("name", args[0]))
	snap, err := loadSnapshot(cfg, findConfigDir, findConfigDir)
	if err != nil {
		return err
	}

	entity, suggestions, err := toolserver.FindType(snap, args[0])
	if err != nil {
		return usageError(err)
	}
	if entity != nil {
		logger.Info("find_type matched", zap.String("name", args[0]), zap.String("qualifiedName", entity.QualifiedName))
		fmt.Printf("%s (%s %s)\n", entity.QualifiedName, entity.Type, entity.Kind)
		if entity.Constructible {
			fmt.Println("constructible: yes")
		}
		if len(entity.Parents) > 0 {
			fmt.Printf("parents: %v\n", entity.Parents)
		}
		return nil
	}

	logger.Warn("find_type no match", zap.String("name", args[0]), zap.Int("suggestions", len(suggestions)))
	fmt.Printf("no exact match for %q\n", args[0])
	for _, s := range suggestions {
		fmt.Printf("  did you mean: %s\n", s)
	}
	return &exitError{code: 1, err: fmt.Errorf("no match for %q", args[0])}
}
