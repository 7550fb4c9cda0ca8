package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/strata/pkg/conn"
)

var rmTree bool

var rmCmd = &cobra.Command{
	Use:   "rm [path]",
	Short: "Delete an object",
	Long:  `Delete an object by path. Folders with children need --tree.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, file := openRepo(true)
		ctx := context.Background()

		data, err := resolveObject(ctx, c, args[0])
		if err != nil {
			fatal("Failed to resolve object", err)
		}
		id := data.Object.Core().ID

		if rmTree {
			failed, err := c.DeleteTree(ctx, caller, conn.DeleteTreeRequest{FolderID: id})
			if err != nil {
				fatal("Failed to delete tree", err)
			}
			if len(failed) > 0 {
				fatal("Tree partially deleted", fmt.Errorf("%d objects remain", len(failed)))
			}
		} else {
			if err := c.DeleteObject(ctx, caller, id, nil); err != nil {
				fatal("Failed to delete object", err)
			}
		}
		saveRepo(c, file)

		fmt.Printf("Deleted %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
	rmCmd.Flags().BoolVar(&rmTree, "tree", false, "Delete a folder and everything under it")
}
