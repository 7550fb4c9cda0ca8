package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/strata/pkg/conn"
	"github.com/aretw0/strata/pkg/core"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout [path]",
	Short: "Check out a document",
	Long:  `Create a private working copy of a versionable document.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, file := openRepo(true)
		ctx := context.Background()

		data, err := resolveObject(ctx, c, args[0])
		if err != nil {
			fatal("Failed to resolve document", err)
		}
		pwc, err := c.Checkout(ctx, caller, data.Object.Core().ID)
		if err != nil {
			fatal("Failed to check out", err)
		}
		saveRepo(c, file)

		fmt.Printf("Checked out %s (working copy %s)\n", args[0], pwc.ID)
	},
}

var (
	checkinMessage string
	checkinMajor   bool
	checkinContent string
)

var checkinCmd = &cobra.Command{
	Use:   "checkin [path]",
	Short: "Check in a document",
	Long:  `Turn the private working copy of a document's series into the new version.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, file := openRepo(true)
		ctx := context.Background()

		data, err := resolveObject(ctx, c, args[0])
		if err != nil {
			fatal("Failed to resolve document", err)
		}
		doc, ok := data.Object.(*core.Document)
		if !ok {
			fatal("Not a document", fmt.Errorf("%s", args[0]))
		}

		// The path usually names the latest version; find the series PWC.
		pwcID := doc.ID
		if !doc.PWC {
			versions, err := c.GetAllVersions(ctx, caller, doc.ID)
			if err != nil {
				fatal("Failed to list versions", err)
			}
			found := false
			for _, v := range versions {
				if v.PWC {
					pwcID = v.ID
					found = true
					break
				}
			}
			if !found {
				fatal("Not checked out", fmt.Errorf("%s has no working copy", args[0]))
			}
		}

		req := conn.CheckinRequest{
			ObjectID: pwcID,
			Major:    checkinMajor,
			Comment:  checkinMessage,
		}
		if checkinContent != "" {
			req.Content = &core.ContentStream{
				FileName: doc.Name,
				MimeType: "text/plain",
				Length:   int64(len(checkinContent)),
				Reader:   strings.NewReader(checkinContent),
			}
		}

		version, err := c.Checkin(ctx, caller, req)
		if err != nil {
			fatal("Failed to check in", err)
		}
		saveRepo(c, file)

		fmt.Printf("Checked in %s as version %s\n", args[0], version.VersionLabel)
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel [path]",
	Short: "Cancel a checkout",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, file := openRepo(true)
		ctx := context.Background()

		data, err := resolveObject(ctx, c, args[0])
		if err != nil {
			fatal("Failed to resolve document", err)
		}
		if err := c.CancelCheckout(ctx, caller, data.Object.Core().ID); err != nil {
			fatal("Failed to cancel checkout", err)
		}
		saveRepo(c, file)

		fmt.Printf("Cancelled checkout of %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(checkinCmd)
	rootCmd.AddCommand(cancelCmd)
	checkinCmd.Flags().StringVarP(&checkinMessage, "message", "m", "", "Checkin comment")
	checkinCmd.Flags().BoolVar(&checkinMajor, "major", true, "Create a major version")
	checkinCmd.Flags().StringVar(&checkinContent, "content", "", "Replacement content")
}
