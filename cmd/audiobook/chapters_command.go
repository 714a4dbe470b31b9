package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/audiobook-flow/internal/id3"
)

func newChaptersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chapters <audiobook.mp3>",
		Short: "Print the chapter markers embedded in an MP3",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chapters, err := id3.ReadChapters(args[0])
			if err != nil {
				return err
			}
			if len(chapters) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No chapter markers found")
				return nil
			}

			for i, ch := range chapters {
				start := time.Duration(ch.StartMs) * time.Millisecond
				end := time.Duration(ch.EndMs) * time.Millisecond
				fmt.Fprintf(cmd.OutOrStdout(), "%3d. %-40s %v - %v\n", i+1, ch.Title, start, end)
			}
			return nil
		},
	}
}
