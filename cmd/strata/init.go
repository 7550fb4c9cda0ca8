package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/strata"
)

var (
	initName string
	initID   string
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a strata repository",
	Long:  `Create an empty repository snapshot (strata.yaml) in the current directory.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			fatal("Failed to get CWD", err)
		}
		path := repoFile
		if path == "" {
			path = filepath.Join(cwd, "strata.yaml")
		}
		if _, err := os.Stat(path); err == nil {
			fatal("Refusing to overwrite", fmt.Errorf("%s already exists", path))
		}

		c, err := strata.New(
			strata.WithRepositoryID(initID),
			strata.WithName(initName),
			strata.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Failed to initialize repository", err)
		}
		saveRepo(c, path)

		fmt.Println("Initialized empty strata repository in", path)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initName, "name", "", "Repository name")
	initCmd.Flags().StringVar(&initID, "id", "", "Repository id (generated when empty)")
}
