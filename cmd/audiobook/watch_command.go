package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/audiobook-flow/internal/config"
	"github.com/nguyentantai21042004/audiobook-flow/internal/watcher"
)

func newWatchCommand(appCtx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the input directory and process manifests as they arrive",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, proc, log, err := appCtx.buildProcessor()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			log.Info(ctx, "========================================")
			log.Info(ctx, "Audiobook Composition Pipeline")
			log.Info(ctx, "========================================")
			log.Info(ctx, "TTS engine: %s (voice %s)", cfg.TTS.Engine, cfg.TTS.Voice)
			log.Info(ctx, "Configuration loaded successfully")

			if err := ensureDirectories(cfg); err != nil {
				return fmt.Errorf("create directories: %w", err)
			}

			w, err := watcher.New(cfg.Paths.Input, proc.Process, log, 1)
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer w.Stop()

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			errChan := make(chan error, 1)
			go func() {
				if err := w.Start(ctx); err != nil && err != context.Canceled {
					errChan <- err
				}
			}()

			log.Info(ctx, "========================================")
			log.Info(ctx, "Pipeline is ready!")
			log.Info(ctx, "Monitoring: %s", cfg.Paths.Input)
			log.Info(ctx, "Output: %s", cfg.Paths.Output)
			log.Info(ctx, "Press Ctrl+C to stop")
			log.Info(ctx, "========================================")

			select {
			case <-sigChan:
				log.Info(ctx, "Shutdown signal received")
			case err := <-errChan:
				log.Error(ctx, "Watcher error: %v", err)
			}

			log.Info(ctx, "Shutting down gracefully...")
			cancel()

			log.Info(ctx, "Pipeline stopped")
			return nil
		},
	}
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Input,
		cfg.Paths.Output,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
