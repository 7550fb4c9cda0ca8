package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/strata/pkg/conn"
	"github.com/aretw0/strata/pkg/core"
)

var (
	lsJSON bool
	lsTree bool
)

var folderStyle = color.New(color.FgBlue, color.Bold)
var pwcStyle = color.New(color.FgYellow)

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a folder",
	Long:  `List the children of a folder (the root when no path is given).`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, _ := openRepo(true)
		ctx := context.Background()

		path := "/"
		if len(args) == 1 {
			path = args[0]
		}
		folderID, err := resolveFolderID(ctx, c, path)
		if err != nil {
			fatal("Failed to resolve folder", err)
		}

		if lsTree {
			nodes, err := c.GetFolderTree(ctx, caller, folderID, -1, conn.ProjectionOptions{})
			if err != nil {
				fatal("Failed to list tree", err)
			}
			printTree(nodes, "")
			return
		}

		list, err := c.GetChildren(ctx, caller, folderID, conn.ProjectionOptions{}, conn.Unbounded)
		if err != nil {
			fatal("Failed to list folder", err)
		}

		if lsJSON {
			rows := make([]map[string]any, 0, len(list.Objects))
			for _, data := range list.Objects {
				entry := data.Object.Core()
				rows = append(rows, map[string]any{
					"id":   entry.ID,
					"name": entry.Name,
					"type": entry.TypeID,
					"base": data.Object.BaseType(),
				})
			}
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(rows); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		for _, data := range list.Objects {
			fmt.Println(displayName(data))
		}
	},
}

func displayName(data *conn.ObjectData) string {
	entry := data.Object.Core()
	switch o := data.Object.(type) {
	case *core.Folder:
		return folderStyle.Sprint(entry.Name + "/")
	case *core.Document:
		if o.PWC {
			return pwcStyle.Sprintf("%s (checked out by %s)", entry.Name, o.CheckedOutBy)
		}
		return fmt.Sprintf("%s (v%s)", entry.Name, o.VersionLabel)
	default:
		return entry.Name
	}
}

func printTree(nodes []*conn.ObjectTreeNode, indent string) {
	for _, node := range nodes {
		fmt.Printf("%s%s\n", indent, displayName(node.Data))
		printTree(node.Children, indent+"  ")
	}
}

func init() {
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().BoolVar(&lsJSON, "json", false, "Output in JSON format")
	lsCmd.Flags().BoolVarP(&lsTree, "recursive", "R", false, "Print the whole subtree")
}
