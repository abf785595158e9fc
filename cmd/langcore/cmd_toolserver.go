package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"langcore/internal/entity"
	"langcore/internal/index"
	"langcore/internal/logging"
	"langcore/internal/toolserver"
)

var (
	toolServerConfigDir string
	toolServerExecCtx   string
)

var toolServerCmd = &cobra.Command{
	Use:   "tool-server",
	Short: "Start the Tool-Call Server, answering newline-delimited JSON requests over stdio",
	Args:  cobra.NoArgs,
	RunE:  runToolServer,
}

func init() {
	toolServerCmd.Flags().StringVar(&toolServerConfigDir, "config-dir", "", "Application configuration root to index before serving")
	toolServerCmd.Flags().StringVar(&toolServerExecCtx, "context", string(entity.AvailabilityServer), "Execution context: Client|Server|MobileApp")
}

func runToolServer(cmd *cobra.Command, args []string) error {
	snap, err := loadSnapshot(cfg, toolServerConfigDir, toolServerConfigDir)
	if err != nil {
		return err
	}
	live := &index.Live{}
	live.Swap(snap)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logging.Get(logging.CategoryToolServer).Info("received shutdown signal, stopping tool server")
		cancel()
	}()

	server := toolserver.NewServer(live, entity.Availability(toolServerExecCtx), os.Stdout)

	logging.Get(logging.CategoryToolServer).Info("tool server ready, listening on stdin/stdout")
	if err := server.ServeStdio(ctx, os.Stdin); err != nil {
		if err == context.Canceled {
			return nil
		}
		return fmt.Errorf("tool server error: %w", err)
	}
	return nil
}
