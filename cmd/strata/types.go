package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/conn"
	"github.com/aretw0/strata/pkg/core"
)

var baseStyle = color.New(color.Bold)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "Show the type hierarchy",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c, _ := openRepo(true)
		ctx := context.Background()

		bases, _, err := c.GetTypeChildren(ctx, caller, "", conn.Unbounded)
		if err != nil {
			fatal("Failed to list types", err)
		}
		for _, base := range bases {
			fmt.Println(baseStyle.Sprint(base.ID))
			printSubtypes(ctx, c, base.ID, "  ")
		}
	},
}

func printSubtypes(ctx context.Context, c *strata.Connection, typeID, indent string) {
	children, _, err := c.GetTypeChildren(ctx, caller, typeID, conn.Unbounded)
	if err != nil {
		return
	}
	for _, child := range children {
		fmt.Printf("%s%s%s\n", indent, child.ID, typeFlags(child))
		printSubtypes(ctx, c, child.ID, indent+"  ")
	}
}

func typeFlags(def *core.TypeDefinition) string {
	flags := ""
	if def.Versionable {
		flags += " [versionable]"
	}
	if def.ContentStream == core.ContentRequired {
		flags += " [content required]"
	}
	return flags
}

func init() {
	rootCmd.AddCommand(typesCmd)
}
