package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	lcadapter "github.com/aretw0/strata/pkg/adapters/lifecycle"
	"github.com/aretw0/strata/pkg/adapters/memory"
	"github.com/aretw0/strata/pkg/conn"
	"github.com/aretw0/strata/pkg/core"
)

func TestSourceBridgesChangeFeed(t *testing.T) {
	store := memory.New(memory.Config{RepositoryID: "test-repo"})
	c := conn.New(store)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	info, err := c.RepositoryInfo(ctx, "alice")
	require.NoError(t, err)

	src := lcadapter.NewSource(store)
	require.NoError(t, src.Start(ctx))

	props := make(core.Properties)
	props.SetID(core.PropObjectTypeID, "cmis:document")
	props.SetString(core.PropName, "observed")
	id, err := c.CreateDocument(ctx, "alice", conn.CreateDocumentRequest{
		FolderID:   info.RootFolderID,
		Properties: props,
	})
	require.NoError(t, err)

	select {
	case ev, ok := <-src.Events():
		require.True(t, ok)
		change, isChange := ev.(core.ChangeEvent)
		require.True(t, isChange)
		require.Equal(t, core.ChangeCreated, change.Kind)
		require.Equal(t, id, change.ObjectID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received from lifecycle source")
	}

	// Cancelling the context drains the bridge and closes the outbound
	// channel.
	cancel()
	select {
	case _, ok := <-src.Events():
		if ok {
			// A buffered event may still be in flight; the close follows.
			_, ok = <-src.Events()
			require.False(t, ok)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed after cancel")
	}
}
