package typesys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/strata/pkg/core"
)

func TestRegistrySeedsBaseTypes(t *testing.T) {
	r := NewRegistry(nil)
	ctx := context.Background()

	for _, id := range []string{"cmis:document", "cmis:folder", "cmis:policy", "cmis:relationship"} {
		def, err := r.GetTypeDefinition(ctx, id)
		require.NoError(t, err)
		require.Equal(t, id, def.ID)
	}

	roots, err := r.GetTypeChildren(ctx, "")
	require.NoError(t, err)
	require.Len(t, roots, 4)
}

func TestRegistryAddAndWalk(t *testing.T) {
	r := NewRegistry(nil)
	ctx := context.Background()

	require.NoError(t, r.AddType(ctx, &core.TypeDefinition{ID: "custom:doc", Base: core.BaseDocument}))
	require.NoError(t, r.AddType(ctx, &core.TypeDefinition{ID: "custom:invoice", ParentID: "custom:doc", Base: core.BaseDocument}))

	children, err := r.GetTypeChildren(ctx, "cmis:document")
	require.NoError(t, err)
	require.Len(t, children, 1)
	require.Equal(t, "custom:doc", children[0].ID)

	desc, err := r.GetTypeDescendants(ctx, "cmis:document", -1)
	require.NoError(t, err)
	require.Len(t, desc, 2)

	desc, err = r.GetTypeDescendants(ctx, "cmis:document", 1)
	require.NoError(t, err)
	require.Len(t, desc, 1)

	ok, err := r.IsSubtypeOf(ctx, "custom:invoice", "cmis:document")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.IsSubtypeOf(ctx, "custom:invoice", "cmis:folder")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRegistryAddRejectsBadDefinitions(t *testing.T) {
	r := NewRegistry(nil)
	ctx := context.Background()

	err := r.AddType(ctx, &core.TypeDefinition{ID: "custom:x", Base: "cmis:banana"})
	require.ErrorIs(t, err, core.ErrInvalidArgument)

	err = r.AddType(ctx, &core.TypeDefinition{ID: "custom:x", ParentID: "custom:missing", Base: core.BaseDocument})
	require.ErrorIs(t, err, core.ErrNotFound)

	err = r.AddType(ctx, &core.TypeDefinition{ID: "cmis:document", Base: core.BaseDocument})
	require.ErrorIs(t, err, core.ErrConstraint)

	// Base mismatch with parent.
	require.NoError(t, r.AddType(ctx, &core.TypeDefinition{ID: "custom:doc", Base: core.BaseDocument}))
	err = r.AddType(ctx, &core.TypeDefinition{ID: "custom:f", ParentID: "custom:doc", Base: core.BaseFolder})
	require.ErrorIs(t, err, core.ErrConstraint)
}

func TestRegistryRemoveGuards(t *testing.T) {
	live := map[string]bool{"custom:doc": true}
	r := NewRegistry(func(typeID string) bool { return live[typeID] })
	ctx := context.Background()

	require.NoError(t, r.AddType(ctx, &core.TypeDefinition{ID: "custom:doc", Base: core.BaseDocument}))
	require.NoError(t, r.AddType(ctx, &core.TypeDefinition{ID: "custom:other", Base: core.BaseDocument}))

	err := r.RemoveType(ctx, "cmis:document")
	require.ErrorIs(t, err, core.ErrConstraint, "base types are fixed")

	err = r.RemoveType(ctx, "custom:doc")
	require.ErrorIs(t, err, core.ErrConstraint, "types with instances are immutable")

	require.NoError(t, r.RemoveType(ctx, "custom:other"))
	_, err = r.GetTypeDefinition(ctx, "custom:other")
	require.ErrorIs(t, err, core.ErrNotFound)
}
