package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	logSince string
	logMax   int
)

var kindStyle = map[string]*color.Color{
	"created":  color.New(color.FgGreen),
	"updated":  color.New(color.FgCyan),
	"deleted":  color.New(color.FgRed),
	"security": color.New(color.FgMagenta),
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the change log",
	Long:  `Print change log entries, oldest first. Resume from a token with --since.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c, _ := openRepo(true)
		ctx := context.Background()

		list, err := c.GetContentChanges(ctx, caller, logSince, logMax)
		if err != nil {
			fatal("Failed to read change log", err)
		}

		for _, e := range list.Events {
			// Pad before colorizing so escape codes don't skew the column.
			kind := fmt.Sprintf("%-8s", e.Kind)
			if style, ok := kindStyle[string(e.Kind)]; ok {
				kind = style.Sprint(kind)
			}
			fmt.Printf("%s  %s %s  %s\n", e.Token, kind, e.Time.Format("2006-01-02 15:04:05"), e.ObjectID)
		}
		if list.HasMore {
			fmt.Printf("more entries, resume with --since %s\n", list.NextToken)
		}
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().StringVar(&logSince, "since", "", "Change token to resume from")
	logCmd.Flags().IntVar(&logMax, "max", -1, "Maximum entries (-1 for all)")
}
