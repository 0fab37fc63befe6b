package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wagiedev/lspbridge/internal/frame"
)

var frameCmd = &cobra.Command{
	Use:   "frame",
	Short: "Wrap stdin in a Content-Length header",
	Long:  "Read stdin to the end and write it to stdout as a single frame. Useful for hand-feeding a server.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		body, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}

		return frame.NewWriter(cmd.OutOrStdout()).WriteFrame(string(body))
	},
}

func init() {
	rootCmd.AddCommand(frameCmd)
}
