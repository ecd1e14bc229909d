package folded

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cran/fold/codec"
	"github.com/cran/fold/errs"
	"github.com/cran/fold/frame"
)

func TestDistillDataRows(t *testing.T) {
	fr := normalFrame(t,
		[]string{"DV", "DV", "WT"},
		[]string{"", "", ""},
		[]string{"5", "6", "70"},
		map[string][]string{"ID": {"1", "2", "1"}}, []string{"ID"},
	)

	f, err := New(fr, WithSort(false))
	require.NoError(t, err)

	out, err := f.Distill("DV")
	require.NoError(t, err)
	require.Equal(t, []string{"ID", "DV"}, out.Names(), "other variables stay out")
	require.Equal(t, 2, out.NumRows())
	require.Equal(t, "5", out.At("DV", 0).Str)
}

func TestDistillDecodesEncodedAttribute(t *testing.T) {
	enc, err := codec.Encode([]string{"0", "5"}, []string{"below", "observed"})
	require.NoError(t, err)

	fr := normalFrame(t,
		[]string{"DV", "DV", "DV"},
		[]string{"", "", "BLQ"},
		[]string{"0", "5", enc},
		map[string][]string{"ID": {"1", "2", ""}}, []string{"ID"},
	)

	f, err := New(fr, WithSort(false))
	require.NoError(t, err)

	out, err := f.Distill("DV")
	require.NoError(t, err)
	require.Equal(t, []string{"ID", "DV", "BLQ"}, out.Names())

	blq := out.Col("BLQ")
	require.Equal(t, frame.KindFactor, blq.Kind, "decoded columns are categorical")
	require.Equal(t, []string{"below", "observed"}, blq.Levels)
	require.Equal(t, "below", out.At("BLQ", 0).Str)
	require.Equal(t, "observed", out.At("BLQ", 1).Str)
}

func TestDistillPerKeyAttributeGetsCompoundName(t *testing.T) {
	fr := normalFrame(t,
		[]string{"DV", "DV", "DV", "DV"},
		[]string{"", "", "BLQ", "BLQ"},
		[]string{"0", "5", "1", "0"},
		map[string][]string{"ID": {"1", "2", "1", "2"}}, []string{"ID"},
	)

	f, err := New(fr, WithSort(false))
	require.NoError(t, err)

	out, err := f.Distill("DV")
	require.NoError(t, err)
	require.Equal(t, []string{"ID", "DV", "DV_BLQ"}, out.Names())
	require.Equal(t, "1", out.At("DV_BLQ", 0).Str)
	require.Equal(t, "0", out.At("DV_BLQ", 1).Str)
}

func TestDistillUnknownVariableIsEmpty(t *testing.T) {
	fr := normalFrame(t,
		[]string{"DV"}, []string{""}, []string{"5"},
		nil, nil,
	)

	f, err := New(fr)
	require.NoError(t, err)

	out, err := f.Distill("WT")
	require.NoError(t, err)
	require.Equal(t, 0, out.NumCols())
}

func TestDistillCyclicMetadata(t *testing.T) {
	fr := normalFrame(t,
		[]string{"A", "B"},
		[]string{"B", "A"},
		[]string{"x", "y"},
		map[string][]string{"ID": {"1", "1"}}, []string{"ID"},
	)

	f, err := New(fr, WithSort(false))
	require.NoError(t, err)

	_, err = f.Distill("A")
	require.ErrorIs(t, err, errs.ErrCyclicMetadata)
	require.Contains(t, err.Error(), "A -> B -> A")
}

func TestDistillDecodeWithoutCodeColumnWarns(t *testing.T) {
	enc, err := codec.Encode([]string{"0"}, []string{"below"})
	require.NoError(t, err)

	// Metadata without any data rows: nothing to decode onto.
	fr := normalFrame(t,
		[]string{"DV"}, []string{"BLQ"}, []string{enc},
		nil, nil,
	)

	f, err := New(fr)
	require.NoError(t, err)

	var logs []string
	out, err := f.Distill("DV", collect(&logs))
	require.NoError(t, err)
	require.Equal(t, 0, out.NumCols())
	require.Contains(t, logged(logs), "no DV column")
}

func TestDistillVariableNamedLikeKeyWarns(t *testing.T) {
	// A variable sharing its name with a key column it is keyed by cannot be
	// widened into a column of that name.
	fr := normalFrame(t,
		[]string{"ID", "ID"},
		[]string{"", ""},
		[]string{"x", "y"},
		map[string][]string{"ID": {"1", "2"}}, []string{"ID"},
	)

	f, err := New(fr, WithSort(false))
	require.NoError(t, err)

	var logs []string
	out, err := f.Distill("ID", collect(&logs))
	require.NoError(t, err)
	require.Contains(t, logged(logs), "pivot target")
	require.Equal(t, 0, out.NumCols())
}

func TestDistillUnknownCodeDecodesToNull(t *testing.T) {
	enc, err := codec.Encode([]string{"0"}, []string{"below"})
	require.NoError(t, err)

	fr := normalFrame(t,
		[]string{"DV", "DV", "DV"},
		[]string{"", "", "BLQ"},
		[]string{"0", "7", enc},
		map[string][]string{"ID": {"1", "2", ""}}, []string{"ID"},
	)

	f, err := New(fr, WithSort(false))
	require.NoError(t, err)

	out, err := f.Distill("DV")
	require.NoError(t, err)
	require.Equal(t, "below", out.At("BLQ", 0).Str)
	require.True(t, out.At("BLQ", 1).Null, "code absent from the mapping")
}
