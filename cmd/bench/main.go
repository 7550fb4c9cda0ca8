// Command bench measures strata's in-memory backend: bulk document
// creation, structured query, and snapshot save/load round trips.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/conn"
	"github.com/aretw0/strata/pkg/core"
)

func main() {
	count := flag.Int("count", 1000, "Number of documents to generate")
	keep := flag.Bool("keep", false, "Keep the snapshot file after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "strata_bench_")
	if err != nil {
		panic(err)
	}
	snapshot := filepath.Join(benchDir, "strata.yaml")
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping snapshot: %s\n", snapshot)
		}
	}()

	c, err := strata.New(strata.WithName("bench"))
	if err != nil {
		panic(err)
	}
	ctx := context.Background()

	info, err := c.RepositoryInfo(ctx, "bench")
	if err != nil {
		panic(err)
	}

	fmt.Printf("Creating %d documents...\n", *count)
	startGen := time.Now()
	for i := 0; i < *count; i++ {
		props := make(core.Properties)
		props.SetID(core.PropObjectTypeID, "cmis:document")
		props.SetString(core.PropName, fmt.Sprintf("doc_%d", i))
		if _, err := c.CreateDocument(ctx, "bench", conn.CreateDocumentRequest{
			FolderID:   info.RootFolderID,
			Properties: props,
		}); err != nil {
			panic(err)
		}
	}
	fmt.Printf("Creation took: %v (%.0f docs/s)\n", time.Since(startGen),
		float64(*count)/time.Since(startGen).Seconds())

	startQuery := time.Now()
	hits, err := c.Query(ctx, "bench", &core.Query{
		TypeID: "cmis:document",
		Where:  []core.Condition{{PropertyID: core.PropName, Op: core.OpLike, Value: "doc_1%"}},
	}, conn.ProjectionOptions{}, conn.Unbounded)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Query took: %v (%d hits)\n", time.Since(startQuery), len(hits.Objects))

	startSave := time.Now()
	if err := strata.Save(c, snapshot); err != nil {
		panic(err)
	}
	fmt.Printf("Snapshot save took: %v\n", time.Since(startSave))

	startLoad := time.Now()
	reloaded, err := strata.New(strata.WithSnapshot(snapshot), strata.WithMustExist(true))
	if err != nil {
		panic(err)
	}
	fmt.Printf("Snapshot load took: %v\n", time.Since(startLoad))

	startList := time.Now()
	list, err := reloaded.GetChildren(ctx, "bench", info.RootFolderID, conn.ProjectionOptions{}, conn.Unbounded)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Listing took: %v (%d children)\n", time.Since(startList), list.NumItems)
}
