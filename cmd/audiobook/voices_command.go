package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/audiobook-flow/internal/tts"
)

func newVoicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List the known narration voices",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, v := range tts.Voices() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", v.Name, v.ID)
			}
			return nil
		},
	}
}
