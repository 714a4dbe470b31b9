package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRunCommand(ctx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run <manifest.yaml>",
		Short: "Process one chapter manifest into a finished audiobook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, proc, _, err := ctx.buildProcessor()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return proc.Process(runCtx, args[0])
		},
	}
}
