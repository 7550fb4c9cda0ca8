package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/strata/pkg/conn"
	"github.com/aretw0/strata/pkg/core"
)

var (
	createType    string
	createContent string
	createFrom    string
	createProps   []string
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create [path]",
	Short: "Create a document",
	Long: `Create a document at the given repository path. Content comes from
--content, or from a file via --from. Custom properties are set with
repeated --prop id=value flags.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, file := openRepo(true)
		ctx := context.Background()

		parentPath, name, err := splitRepoPath(args[0])
		if err != nil {
			fatal("Invalid path", err)
		}
		folderID, err := resolveFolderID(ctx, c, parentPath)
		if err != nil {
			fatal("Failed to resolve parent folder", err)
		}

		props := make(core.Properties)
		props.SetID(core.PropObjectTypeID, createType)
		props.SetString(core.PropName, name)
		for _, kv := range createProps {
			id, value, ok := strings.Cut(kv, "=")
			if !ok {
				fatal("Invalid property", fmt.Errorf("%q is not id=value", kv))
			}
			props.SetString(id, value)
		}

		var content *core.ContentStream
		switch {
		case createFrom != "":
			data, err := os.ReadFile(createFrom)
			if err != nil {
				fatal("Failed to read content file", err)
			}
			content = &core.ContentStream{
				FileName: name,
				MimeType: "application/octet-stream",
				Length:   int64(len(data)),
				Reader:   strings.NewReader(string(data)),
			}
		case createContent != "":
			content = &core.ContentStream{
				FileName: name,
				MimeType: "text/plain",
				Length:   int64(len(createContent)),
				Reader:   strings.NewReader(createContent),
			}
		}

		id, err := c.CreateDocument(ctx, caller, conn.CreateDocumentRequest{
			FolderID:   folderID,
			Properties: props,
			Content:    content,
		})
		if err != nil {
			fatal("Failed to create document", err)
		}
		saveRepo(c, file)

		fmt.Printf("Created document %s at %s\n", id, args[0])
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVarP(&createType, "type", "t", "cmis:document", "Document type id")
	createCmd.Flags().StringVar(&createContent, "content", "", "Inline content")
	createCmd.Flags().StringVar(&createFrom, "from", "", "Read content from a file")
	createCmd.Flags().StringArrayVarP(&createProps, "prop", "p", nil, "Custom property (id=value, repeatable)")
}
