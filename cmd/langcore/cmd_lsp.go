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
	"langcore/internal/lsp"
	"langcore/internal/logging"
)

var (
	lspConfigDir string
	lspExecCtx   string
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Start the LSP façade, serving editor requests over stdio",
	Args:  cobra.NoArgs,
	RunE:  runLSP,
}

func init() {
	lspCmd.Flags().StringVar(&lspConfigDir, "config-dir", "", "Application configuration root to index before serving")
	lspCmd.Flags().StringVar(&lspExecCtx, "context", string(entity.AvailabilityServer), "Execution context: Client|Server|MobileApp")
}

func runLSP(cmd *cobra.Command, args []string) error {
	snap, err := loadSnapshot(cfg, lspConfigDir, lspConfigDir)
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
		logging.Get(logging.CategoryLSP).Info("received shutdown signal, stopping LSP server")
		cancel()
	}()

	manager := lsp.NewManager(live, entity.Availability(lspExecCtx))
	server := lsp.NewServer(manager, os.Stdout)

	logging.Get(logging.CategoryLSP).Info("LSP server ready, listening on stdin/stdout")
	if err := server.ServeStdio(ctx, os.Stdin); err != nil {
		if err == context.Canceled {
			return nil
		}
		return fmt.Errorf("lsp server error: %w", err)
	}
	return nil
}
