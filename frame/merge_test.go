package frame

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOuterMergeSharedKey(t *testing.T) {
	a := New()
	require.NoError(t, a.AddColumn(StringColumn("ID", "1", "2")))
	require.NoError(t, a.AddColumn(StringColumn("DV", "5", "6")))

	b := New()
	require.NoError(t, b.AddColumn(StringColumn("ID", "2", "3")))
	require.NoError(t, b.AddColumn(StringColumn("WT", "70", "80")))

	out := OuterMerge(a, b)
	require.Equal(t, []string{"ID", "DV", "WT"}, out.Names())
	require.Equal(t, 3, out.NumRows())

	// Matched row.
	require.Equal(t, "6", out.At("DV", 1).Str)
	require.Equal(t, "70", out.At("WT", 1).Str)

	// Unmatched left row: WT null.
	require.True(t, out.At("WT", 0).Null)

	// Unmatched right row appended: DV null, key kept.
	require.Equal(t, "3", out.At("ID", 2).Str)
	require.True(t, out.At("DV", 2).Null)
	require.Equal(t, "80", out.At("WT", 2).Str)
}

func TestOuterMergeNullKeysMatch(t *testing.T) {
	a := New()
	require.NoError(t, a.AddColumn(&Column{Name: "K", Kind: KindString, Values: []Value{NA()}}))
	require.NoError(t, a.AddColumn(StringColumn("X", "x")))

	b := New()
	require.NoError(t, b.AddColumn(&Column{Name: "K", Kind: KindString, Values: []Value{NA()}}))
	require.NoError(t, b.AddColumn(StringColumn("Y", "y")))

	out := OuterMerge(a, b)
	require.Equal(t, 1, out.NumRows(), "null keys join to null keys")
	require.Equal(t, "x", out.At("X", 0).Str)
	require.Equal(t, "y", out.At("Y", 0).Str)
}

func TestOuterMergeNoSharedColumnsBroadcasts(t *testing.T) {
	a := New()
	require.NoError(t, a.AddColumn(StringColumn("ID", "1", "2", "3")))

	constant := New()
	require.NoError(t, constant.AddColumn(StringColumn("LLOQ", "0.25")))

	out := OuterMerge(a, constant)
	require.Equal(t, 3, out.NumRows())
	for i := 0; i < 3; i++ {
		require.Equal(t, "0.25", out.At("LLOQ", i).Str)
	}
}

func TestOuterMergeEmptySides(t *testing.T) {
	a := New()
	require.NoError(t, a.AddColumn(StringColumn("ID", "1")))

	require.Equal(t, []string{"ID"}, OuterMerge(nil, a).Names())
	require.Equal(t, []string{"ID"}, OuterMerge(a, New()).Names())
	require.Equal(t, 0, OuterMerge(nil, nil).NumCols())
}

func TestOuterMergeZeroRowCartesianKeepsOtherSide(t *testing.T) {
	a := New()
	require.NoError(t, a.AddColumn(StringColumn("ID", "1", "2")))

	empty := New()
	require.NoError(t, empty.AddColumn(NewColumn("LLOQ", KindString)))

	out := OuterMerge(a, empty)
	require.Equal(t, 2, out.NumRows())
	require.True(t, out.At("LLOQ", 0).Null)
}

func TestOuterMergeDuplicateKeysCrossProduct(t *testing.T) {
	a := New()
	require.NoError(t, a.AddColumn(StringColumn("ID", "1", "1")))
	require.NoError(t, a.AddColumn(StringColumn("X", "x1", "x2")))

	b := New()
	require.NoError(t, b.AddColumn(StringColumn("ID", "1", "1")))
	require.NoError(t, b.AddColumn(StringColumn("Y", "y1", "y2")))

	out := OuterMerge(a, b)
	require.Equal(t, 4, out.NumRows(), "matching keys multiply")
}
