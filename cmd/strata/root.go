package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/aretw0/strata"
)

// Version is the CLI version, overridable at build time via -ldflags.
var Version = "dev"

var (
	verbose  bool
	repoFile string
	caller   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "strata",
	Short: "A typed, versioned, access-controlled content repository in a file",
	Long: `Strata treats a YAML snapshot as a content repository: typed documents
and folders with version series, ACLs and a change log. Every command loads
the snapshot, runs one repository operation and writes the snapshot back.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		handler := tint.NewHandler(os.Stderr, &tint.Options{
			NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
			TimeFormat: time.Kitchen,
			Level:      level,
		})
		slog.SetDefault(slog.New(handler))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&repoFile, "file", "f", "", "Repository snapshot file (default: nearest strata.yaml)")
	rootCmd.PersistentFlags().StringVarP(&caller, "as", "u", defaultCaller(), "Principal to run operations as")
}

func defaultCaller() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "anonymous"
}

// snapshotPath resolves the snapshot file: the --file flag, or the nearest
// strata.yaml above the working directory, or one in the working directory.
func snapshotPath() (string, error) {
	if repoFile != "" {
		return repoFile, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if root, err := strata.FindRepositoryRoot(cwd); err == nil {
		return filepath.Join(root, "strata.yaml"), nil
	}
	return filepath.Join(cwd, "strata.yaml"), nil
}

// openRepo loads the snapshot into a connection.
func openRepo(mustExist bool) (*strata.Connection, string) {
	path, err := snapshotPath()
	if err != nil {
		fatal("Failed to resolve repository file", err)
	}
	c, err := strata.New(
		strata.WithSnapshot(path),
		strata.WithMustExist(mustExist),
		strata.WithLogger(slog.Default()),
	)
	if err != nil {
		fatal("Failed to open repository", err)
	}
	return c, path
}

// saveRepo writes the snapshot back after a mutating command.
func saveRepo(c *strata.Connection, path string) {
	if err := strata.Save(c, path); err != nil {
		fatal("Failed to save repository", err)
	}
}
