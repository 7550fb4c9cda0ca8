package typesys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/strata/pkg/core"
)

func invoiceRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(nil)
	err := r.AddType(context.Background(), &core.TypeDefinition{
		ID:   "custom:invoice",
		Base: core.BaseDocument,
		Properties: map[string]core.PropertyDefinition{
			"custom:number": {
				ID: "custom:number", Type: core.PropertyString,
				Cardinality: core.Single, Required: true, Updatability: core.ReadWrite,
			},
			"custom:tags": {
				ID: "custom:tags", Type: core.PropertyString,
				Cardinality: core.Multi, Updatability: core.ReadWrite,
			},
			"custom:origin": {
				ID: "custom:origin", Type: core.PropertyString,
				Cardinality: core.Single, Updatability: core.OnCreate,
			},
			"custom:total": {
				ID: "custom:total", Type: core.PropertyDecimal,
				Cardinality: core.Single, Updatability: core.ReadOnly,
			},
		},
	})
	require.NoError(t, err)
	return r
}

func props(pairs map[string]any) core.Properties {
	ps := core.Properties{}
	for id, v := range pairs {
		switch val := v.(type) {
		case string:
			ps.SetString(id, val)
		default:
			ps[id] = core.Property{ID: id, Values: []any{v}}
		}
	}
	return ps
}

func TestEffectivePropertiesInherit(t *testing.T) {
	r := invoiceRegistry(t)
	defs, err := EffectiveProperties(context.Background(), r, "custom:invoice")
	require.NoError(t, err)

	// Own definitions plus cmis:name inherited from the document base.
	require.Contains(t, defs, "custom:number")
	require.Contains(t, defs, core.PropName)
}

func TestValidatePropertiesCreate(t *testing.T) {
	r := invoiceRegistry(t)
	ctx := context.Background()

	ok := props(map[string]any{core.PropName: "inv-1", "custom:number": "N-42"})
	require.NoError(t, ValidateProperties(ctx, r, "custom:invoice", ok, PhaseCreate))

	missing := props(map[string]any{core.PropName: "inv-1"})
	err := ValidateProperties(ctx, r, "custom:invoice", missing, PhaseCreate)
	require.ErrorIs(t, err, core.ErrConstraint)

	undefined := props(map[string]any{core.PropName: "x", "custom:number": "N", "custom:bogus": "v"})
	err = ValidateProperties(ctx, r, "custom:invoice", undefined, PhaseCreate)
	require.ErrorIs(t, err, core.ErrConstraint)
}

func TestValidatePropertiesTypeAndCardinality(t *testing.T) {
	r := invoiceRegistry(t)
	ctx := context.Background()

	wrongType := props(map[string]any{core.PropName: "x", "custom:number": 7})
	err := ValidateProperties(ctx, r, "custom:invoice", wrongType, PhaseCreate)
	require.ErrorIs(t, err, core.ErrConstraint)

	tooMany := props(map[string]any{core.PropName: "x", "custom:number": "N"})
	tooMany["custom:origin"] = core.Property{ID: "custom:origin", Values: []any{"a", "b"}}
	err = ValidateProperties(ctx, r, "custom:invoice", tooMany, PhaseCreate)
	require.ErrorIs(t, err, core.ErrConstraint)

	multiOK := props(map[string]any{core.PropName: "x", "custom:number": "N"})
	multiOK["custom:tags"] = core.Property{ID: "custom:tags", Values: []any{"a", "b"}}
	require.NoError(t, ValidateProperties(ctx, r, "custom:invoice", multiOK, PhaseCreate))
}

func TestValidatePropertiesPhases(t *testing.T) {
	r := invoiceRegistry(t)
	ctx := context.Background()

	// Checkin may be partial: required properties are not enforced.
	partial := props(map[string]any{"custom:tags": "x"})
	require.NoError(t, ValidateProperties(ctx, r, "custom:invoice", partial, PhaseVersion))

	// OnCreate properties reject later phases.
	origin := props(map[string]any{"custom:origin": "import"})
	err := ValidateProperties(ctx, r, "custom:invoice", origin, PhaseUpdate)
	require.ErrorIs(t, err, core.ErrConstraint)

	// Read-only properties reject every phase.
	total := core.Properties{"custom:total": {ID: "custom:total", Values: []any{1.5}}}
	err = ValidateProperties(ctx, r, "custom:invoice", total, PhaseUpdate)
	require.ErrorIs(t, err, core.ErrConstraint)
}
