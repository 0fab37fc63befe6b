package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wagiedev/lspbridge/internal/fsops"
)

var fsJSON bool

var fsCmd = &cobra.Command{
	Use:   "fs",
	Short: "Read, write, and list files",
}

var fsReadCmd = &cobra.Command{
	Use:   "read <path>",
	Short: "Print a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := fsops.ReadFile(args[0])
		if err != nil {
			return err
		}

		_, err = io.WriteString(cmd.OutOrStdout(), content)

		return err
	},
}

var fsWriteCmd = &cobra.Command{
	Use:   "write <path>",
	Short: "Replace a file with stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}

		return fsops.WriteFile(args[0], string(data))
	},
}

var fsListCmd = &cobra.Command{
	Use:     "ls [path]",
	Short:   "List a directory, directories first",
	Aliases: []string{"list"},
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		entries, err := fsops.ReadDir(dir)
		if err != nil {
			return err
		}

		if fsJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(entries)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, e := range entries {
			kind := "file"
			if e.IsDir {
				kind = "dir"
			}

			fmt.Fprintf(w, "%s\t%s\n", kind, e.Name)
		}

		return w.Flush()
	},
}

func init() {
	fsListCmd.Flags().BoolVar(&fsJSON, "json", false, "print entries as JSON")
	fsCmd.AddCommand(fsReadCmd, fsWriteCmd, fsListCmd)
	rootCmd.AddCommand(fsCmd)
}

