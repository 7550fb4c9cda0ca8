package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/strata/pkg/conn"
	"github.com/aretw0/strata/pkg/core"
)

var mkdirType string

var mkdirCmd = &cobra.Command{
	Use:   "mkdir [path]",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, file := openRepo(true)
		ctx := context.Background()

		parentPath, name, err := splitRepoPath(args[0])
		if err != nil {
			fatal("Invalid path", err)
		}
		parentID, err := resolveFolderID(ctx, c, parentPath)
		if err != nil {
			fatal("Failed to resolve parent folder", err)
		}

		props := make(core.Properties)
		props.SetID(core.PropObjectTypeID, mkdirType)
		props.SetString(core.PropName, name)

		id, err := c.CreateFolder(ctx, caller, conn.CreateFolderRequest{
			ParentID:   parentID,
			Properties: props,
		})
		if err != nil {
			fatal("Failed to create folder", err)
		}
		saveRepo(c, file)

		fmt.Printf("Created folder %s at %s\n", id, args[0])
	},
}

func init() {
	rootCmd.AddCommand(mkdirCmd)
	mkdirCmd.Flags().StringVarP(&mkdirType, "type", "t", "cmis:folder", "Folder type id")
}
