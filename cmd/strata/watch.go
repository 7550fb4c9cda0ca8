package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/aretw0/strata"
)

// watchCmd tails the change log across processes: every command rewrites
// the snapshot file, so watching the file and diffing the log by token
// yields the events other invocations produced.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the repository for changes",
	Long: `Follow the repository's change log live. Reloads the snapshot whenever
another command writes it and prints the entries added since.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path, err := snapshotPath()
		if err != nil {
			fatal("Failed to resolve repository file", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Start after the log's current tail; only new entries print.
		cursor := tailLog(ctx, path, "", false)

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			fatal("Failed to start watcher", err)
		}
		defer watcher.Close()

		// Watch the directory: snapshot saves are rename-replaced, which
		// drops a watch placed on the file itself.
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			fatal("Failed to watch repository", err)
		}

		fmt.Printf("Watching %s (ctrl-c to stop)\n", path)
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-watcher.Errors:
				fatal("Watcher failed", err)
			case event := <-watcher.Events:
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				cursor = tailLog(ctx, path, cursor, true)
			}
		}
	},
}

// tailLog reads the change log entries after the cursor, optionally prints
// them, and returns the new cursor.
func tailLog(ctx context.Context, path, cursor string, print bool) string {
	c, err := strata.New(strata.WithSnapshot(path), strata.WithMustExist(true))
	if err != nil {
		fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
		return cursor
	}
	list, err := c.GetContentChanges(ctx, caller, cursor, -1)
	if err != nil {
		// A cursor from before a reload may be unknown to the new log.
		list, err = c.GetContentChanges(ctx, caller, "", -1)
		if err != nil {
			fmt.Fprintf(os.Stderr, "change log read failed: %v\n", err)
			return cursor
		}
	}
	if print {
		for _, e := range list.Events {
			fmt.Println(e.String())
		}
	}
	if list.NextToken != "" {
		return list.NextToken
	}
	return cursor
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
