package filter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/strata/pkg/core"
)

func TestParsePropertyFilterWildcard(t *testing.T) {
	for _, s := range []string{"*", "", "   ", " * "} {
		f, err := ParsePropertyFilter(s)
		require.NoError(t, err, "input %q", s)
		require.True(t, f.IsAll())
		require.True(t, f.Accept("anything"))
	}
}

func TestParsePropertyFilterTokens(t *testing.T) {
	f, err := ParsePropertyFilter(" cmis:name , custom:color ")
	require.NoError(t, err)

	require.True(t, f.Accept("cmis:name"))
	require.True(t, f.Accept("custom:color"))
	require.False(t, f.Accept("custom:size"))
}

func TestParsePropertyFilterRejectsIllegalTokens(t *testing.T) {
	bad := []string{
		"cmis:name,",
		"a b",
		"a.b",
		"a(b)",
		"'a'",
		`"a"`,
		"*,cmis:name",
	}
	for _, s := range bad {
		_, err := ParsePropertyFilter(s)
		require.Error(t, err, "input %q", s)
		require.ErrorIs(t, err, core.ErrFilterInvalid, "input %q", s)
	}
}

func TestPropertyFilterRoundTrip(t *testing.T) {
	// parse(render(set)).accept(p) == p in set
	set := []string{"custom:a", "custom:b", "cmis:checkinComment"}
	rendered := set[0] + "," + set[1] + "," + set[2]

	f, err := ParsePropertyFilter(rendered)
	require.NoError(t, err)

	for _, p := range set {
		require.True(t, f.Accept(p), p)
	}
	require.False(t, f.Accept("custom:c"))
}

func TestPropertyFilterApplyKeepsIdentity(t *testing.T) {
	props := core.Properties{}
	props.SetID(core.PropObjectID, "o1")
	props.SetID(core.PropObjectTypeID, "custom:doc")
	props.SetString(core.PropName, "a")
	props.SetString("custom:color", "green")
	props.SetString("custom:size", "xl")

	f, err := ParsePropertyFilter("custom:color")
	require.NoError(t, err)

	out := f.Apply(props)
	require.Contains(t, out, "custom:color")
	require.NotContains(t, out, "custom:size")
	// Identity properties survive any filter.
	require.Contains(t, out, core.PropObjectID)
	require.Contains(t, out, core.PropName)
}
