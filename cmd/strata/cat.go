package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:   "cat [path]",
	Short: "Print a document's content",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, _ := openRepo(true)
		ctx := context.Background()

		data, err := resolveObject(ctx, c, args[0])
		if err != nil {
			fatal("Failed to resolve object", err)
		}
		stream, err := c.GetContentStream(ctx, caller, data.Object.Core().ID)
		if err != nil {
			fatal("Failed to read content", err)
		}
		if _, err := io.Copy(os.Stdout, stream.Reader); err != nil {
			fatal("Failed to write content", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}
