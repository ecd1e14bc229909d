package folded

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cran/fold/codec"
	"github.com/cran/fold/errs"
	"github.com/cran/fold/frame"
)

// wideStudy builds the running example: two subjects observed at three
// times, with a below-limit flag describing DV and a quantification limit
// describing the flag.
func wideStudy(t *testing.T, blqFactor bool) *frame.Frame {
	t.Helper()

	fr := frame.New()
	require.NoError(t, fr.AddColumn(frame.StringColumn("ID", "1", "1", "1", "2", "2", "2")))
	require.NoError(t, fr.AddColumn(frame.StringColumn("TIME", "0", "1", "2", "0", "1", "2")))
	require.NoError(t, fr.AddColumn(frame.StringColumn("DV", "0", "5", "8", "0", "6", "9")))

	blq := frame.StringColumn("BLQ", "1", "0", "0", "1", "0", "0")
	if blqFactor {
		blq.Kind = frame.KindFactor
		blq.Levels = []string{"0", "1"}
	}
	require.NoError(t, fr.AddColumn(blq))
	require.NoError(t, fr.AddColumn(frame.StringColumn("LLOQ", "0.25", "0.25", "0.25", "0.25", "0.25", "0.25")))

	return fr
}

// rowsFor counts the rows of one (variable, attribute) pair; attr "" means
// the data rows.
func rowsFor(f *Folded, variable, attr string) int {
	return f.subset(variable, attr).NumRows()
}

func TestFoldEncodesCategoricalMetadata(t *testing.T) {
	f, err := Fold(wideStudy(t, true),
		WithKeys("ID", "TIME"),
		WithMeta("DV~BLQ", "BLQ~LLOQ"),
	)
	require.NoError(t, err)

	require.Equal(t, 8, f.NumRows(), "6 data rows + 2 encoded rows")
	require.Equal(t, []string{"ID", "TIME"}, f.Keys())

	got := f.Frame()
	// Deterministic order: BLQ sorts before DV, metadata rows after data.
	require.Equal(t, "BLQ", got.At(ColVariable, 0).Str)
	require.Equal(t, "LLOQ", got.At(ColMeta, 0).Str)
	require.Equal(t, "//0/0.25//1/0.25//", got.At(ColValue, 0).Str)
	require.True(t, got.At("ID", 0).Null, "encoded rows carry no keys")

	require.Equal(t, "DV", got.At(ColVariable, 7).Str)
	require.Equal(t, "BLQ", got.At(ColMeta, 7).Str)
	require.Equal(t, "//0/1//5/0//8/0//6/0//9/0//", got.At(ColValue, 7).Str)

	// Data rows keep both keys and sort by them.
	require.True(t, got.At(ColMeta, 1).Null)
	require.Equal(t, "0", got.At(ColValue, 1).Str, "ID=1, TIME=0")
	require.Equal(t, "9", got.At(ColValue, 6).Str, "ID=2, TIME=2")
}

func TestFoldInfersRelationsFromColumnNames(t *testing.T) {
	fr := frame.New()
	require.NoError(t, fr.AddColumn(frame.StringColumn("ID", "1", "2", "3")))
	require.NoError(t, fr.AddColumn(frame.StringColumn("DV", "0", "5", "8")))
	require.NoError(t, fr.AddColumn(frame.StringColumn("DV_BLQ", "1", "0", "0")))
	require.NoError(t, fr.AddColumn(frame.StringColumn("BLQ_LLOQ", "0.25", "0.25", "0.25")))

	f, err := Fold(fr, WithKeys("ID"))
	require.NoError(t, err)

	// DV_BLQ encodes: three codes within tolerance, two distinct labels.
	require.Equal(t, 1, rowsFor(f, "DV", "BLQ"))
	enc := f.subset("DV", "BLQ").At(ColValue, 0)
	require.True(t, codec.IsEncoded(enc.Str))

	// BLQ_LLOQ is constant, so it cannot encode; simplification collapses
	// it to a single keyless row instead.
	require.Equal(t, 1, rowsFor(f, "BLQ", "LLOQ"))
	lloq := f.subset("BLQ", "LLOQ")
	require.Equal(t, "0.25", lloq.At(ColValue, 0).Str)
	require.True(t, lloq.At("ID", 0).Null)

	require.Equal(t, 3, rowsFor(f, "DV", ""))
}

func TestFoldToleranceForcesPerKeyMetadata(t *testing.T) {
	fr := frame.New()
	require.NoError(t, fr.AddColumn(frame.StringColumn("ID", "1", "2", "3")))
	require.NoError(t, fr.AddColumn(frame.StringColumn("DV", "0", "5", "8")))
	require.NoError(t, fr.AddColumn(frame.StringColumn("DV_BLQ", "1", "0", "0")))

	f, err := Fold(fr, WithKeys("ID"), WithTolerance(1))
	require.NoError(t, err)

	require.Equal(t, 3, rowsFor(f, "DV", "BLQ"), "one row per key")
	blq := f.subset("DV", "BLQ")
	for i := 0; i < blq.NumRows(); i++ {
		require.False(t, codec.IsEncoded(blq.At(ColValue, i).Str))
		require.False(t, blq.At("ID", i).Null)
	}
}

func TestFoldSimplifyDisabledKeepsSingleRowKeys(t *testing.T) {
	fr := frame.New()
	require.NoError(t, fr.AddColumn(frame.StringColumn("Subject", "A")))
	require.NoError(t, fr.AddColumn(frame.StringColumn("X", "1")))

	f, err := Fold(fr, WithKeys("Subject"), WithSimplify(false))
	require.NoError(t, err)
	require.True(t, f.Frame().HasColumn("Subject"))
	require.Equal(t, "A", f.Frame().At("Subject", 0).Str)

	// With simplification a single-row table needs no key at all.
	f, err = Fold(fr, WithKeys("Subject"))
	require.NoError(t, err)
	require.False(t, f.Frame().HasColumn("Subject"))
}

func TestFoldOfNormalFormIsValidatingNoOp(t *testing.T) {
	f, err := Fold(wideStudy(t, true), WithKeys("ID", "TIME"), WithMeta("DV~BLQ", "BLQ~LLOQ"))
	require.NoError(t, err)

	var logs []string
	again, err := Fold(f.Frame(), collect(&logs))
	require.NoError(t, err)
	require.Contains(t, logged(logs), "already in normal form")

	require.Equal(t, f.Frame().Names(), again.Frame().Names())
	require.Equal(t, f.NumRows(), again.NumRows())
	for i := 0; i < f.NumRows(); i++ {
		require.Equal(t, f.Frame().Row(i), again.Frame().Row(i))
	}
}

func TestFoldRejectsPartialReservedColumns(t *testing.T) {
	fr := frame.New()
	require.NoError(t, fr.AddColumn(frame.StringColumn("VARIABLE", "x")))
	require.NoError(t, fr.AddColumn(frame.StringColumn("X", "1")))

	_, err := Fold(fr)
	require.ErrorIs(t, err, errs.ErrReservedName)
}

func TestFoldMissingKeyColumn(t *testing.T) {
	fr := frame.New()
	require.NoError(t, fr.AddColumn(frame.StringColumn("X", "1")))

	_, err := Fold(fr, WithKeys("ID"))
	require.ErrorIs(t, err, errs.ErrMissingColumn)
}

func TestFoldUngroupedLogsAndAddsNoKey(t *testing.T) {
	fr := frame.New()
	require.NoError(t, fr.AddColumn(frame.StringColumn("X", "a", "b")))

	var logs []string
	f, err := Fold(fr, collect(&logs))
	require.NoError(t, err)
	require.Contains(t, logged(logs), "ungrouped")
	require.Empty(t, f.Keys())
	require.Equal(t, 2, f.NumRows())

	// An existing ROW column is ordinary data, never a synthetic key.
	fr2 := frame.New()
	require.NoError(t, fr2.AddColumn(frame.StringColumn("ROW", "1", "2")))
	require.NoError(t, fr2.AddColumn(frame.StringColumn("X", "a", "b")))

	logs = nil
	f, err = Fold(fr2, collect(&logs))
	require.NoError(t, err)
	require.Contains(t, logged(logs), "ROW")
	require.Empty(t, f.Keys())
	require.Contains(t, f.Variables(), "ROW")
}

func TestFoldUsesGroupsMetadataAsKeys(t *testing.T) {
	fr := frame.New()
	require.NoError(t, fr.AddColumn(frame.StringColumn("ID", "1", "2")))
	require.NoError(t, fr.AddColumn(frame.StringColumn("X", "a", "b")))
	fr.SetGroups([]string{"ID"})

	f, err := Fold(fr)
	require.NoError(t, err)
	require.Equal(t, []string{"ID"}, f.Keys())
}

func TestFoldWarnsOnSiblingAttributeCollision(t *testing.T) {
	fr := frame.New()
	require.NoError(t, fr.AddColumn(frame.StringColumn("ID", "1", "2")))
	require.NoError(t, fr.AddColumn(frame.StringColumn("A", "1", "2")))
	require.NoError(t, fr.AddColumn(frame.StringColumn("B", "3", "4")))
	require.NoError(t, fr.AddColumn(frame.StringColumn("A_U", "mg", "mg")))
	require.NoError(t, fr.AddColumn(frame.StringColumn("B_U", "kg", "kg")))

	var logs []string
	_, err := Fold(fr, WithKeys("ID"), collect(&logs))
	require.NoError(t, err)
	require.Contains(t, logged(logs), "multiple variables")
}

func TestFoldEmptyLabelFallsBackToPerKeyRows(t *testing.T) {
	// Empty-string labels cannot be serialized into an encoding; the fold
	// must store the mapping per key instead of emitting a broken blob.
	fr := frame.New()
	require.NoError(t, fr.AddColumn(frame.StringColumn("ID", "1", "2")))
	require.NoError(t, fr.AddColumn(frame.StringColumn("DV", "0", "5")))
	require.NoError(t, fr.AddColumn(frame.StringColumn("DV_BLQ", "", "y")))

	var logs []string
	f, err := Fold(fr, WithKeys("ID"), collect(&logs))
	require.NoError(t, err)
	require.Contains(t, logged(logs), "cannot encode")

	blq := f.subset("DV", "BLQ")
	require.Equal(t, 2, blq.NumRows(), "one row per key, nothing encoded")
	for i := 0; i < blq.NumRows(); i++ {
		require.False(t, codec.IsEncoded(blq.At(ColValue, i).Str))
	}

	out, err := f.Unfold()
	require.NoError(t, err)
	require.Equal(t, []string{"ID", "DV", "DV_BLQ"}, out.Names())
	require.Equal(t, "", out.At("DV_BLQ", 0).Str)
	require.Equal(t, "y", out.At("DV_BLQ", 1).Str)
}

func TestFoldSkipsMissingExplicitMetadataColumn(t *testing.T) {
	fr := frame.New()
	require.NoError(t, fr.AddColumn(frame.StringColumn("ID", "1")))
	require.NoError(t, fr.AddColumn(frame.StringColumn("DV", "5")))

	var logs []string
	f, err := Fold(fr, WithKeys("ID"), WithMeta("DV~BLQ"), collect(&logs))
	require.NoError(t, err)
	require.Contains(t, logged(logs), "not found")
	require.Empty(t, f.attributes("DV"))
}
