package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"langcore/internal/entity"
)

var statsConfigDir string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print entity counts by type and kind for a loaded Unified Index",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsConfigDir, "config-dir", "", "Application configuration root backing the index")
}

func runStats(cmd *cobra.Command, args []string) error {
	snap, err := loadSnapshot(cfg, statsConfigDir, statsConfigDir)
	if err != nil {
		return err
	}

	byType := map[entity.Type]int{}
	byKind := map[entity.Kind]int{}
	methods, props, constructible := 0, 0, 0

	for _, e := range snap.All() {
		byType[e.Type]++
		byKind[e.Kind]++
		methods += len(e.Methods)
		props += len(e.Properties)
		if e.Constructible {
			constructible++
		}
	}

	logger.Info("stats computed", zap.Int("entities", snap.Len()), zap.Int("constructible", constructible), zap.Int("methods", methods), zap.Int("properties", props))
	fmt.Printf("entities: %d (%d constructible)\n", snap.Len(), constructible)
	fmt.Printf("methods: %d, properties: %d\n", methods, props)

	fmt.Println("by type:")
	printCounts(typeKeys(byType), func(k entity.Type) int { return byType[k] })
	fmt.Println("by kind:")
	printCounts(kindKeys(byKind), func(k entity.Kind) int { return byKind[k] })
	return nil
}

func typeKeys(m map[entity.Type]int) []entity.Type {
	out := make([]entity.Type, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func kindKeys(m map[entity.Kind]int) []entity.Kind {
	out := make([]entity.Kind, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func printCounts[K ~string](keys []K, count func(K) int) {
	for _, k := range keys {
		fmt.Printf("  %s: %d\n", k, count(k))
	}
}
