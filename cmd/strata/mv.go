package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var mvCmd = &cobra.Command{
	Use:   "mv [source] [target-folder]",
	Short: "Move an object to another folder",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		c, file := openRepo(true)
		ctx := context.Background()

		sourceParent, _, err := splitRepoPath(args[0])
		if err != nil {
			fatal("Invalid source path", err)
		}
		data, err := resolveObject(ctx, c, args[0])
		if err != nil {
			fatal("Failed to resolve source", err)
		}
		sourceID, err := resolveFolderID(ctx, c, sourceParent)
		if err != nil {
			fatal("Failed to resolve source folder", err)
		}
		targetID, err := resolveFolderID(ctx, c, args[1])
		if err != nil {
			fatal("Failed to resolve target folder", err)
		}

		if err := c.MoveObject(ctx, caller, data.Object.Core().ID, targetID, sourceID); err != nil {
			fatal("Failed to move object", err)
		}
		saveRepo(c, file)

		fmt.Printf("Moved %s to %s\n", args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(mvCmd)
}
