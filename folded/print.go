package folded

import (
	"strings"

	"github.com/cran/fold/codec"
)

// DefaultTruncate is the display width limit applied to encoded mapping
// values by String.
const DefaultTruncate = 40

// Ellipsis marks a truncated encoded value in rendered output.
const Ellipsis = "..."

// TruncateEncoded shortens a value for display when it is an encoded
// mapping longer than limit. Non-encoded values and limits <= 0 pass
// through untouched; the underlying data is never modified.
func TruncateEncoded(s string, limit int) string {
	if limit <= 0 || len(s) <= limit || !codec.IsEncoded(s) {
		return s
	}

	return s[:limit] + Ellipsis
}

// String renders the table for inspection, one line per row with aligned
// columns. Nulls render as "NA"; encoded values are truncated to
// DefaultTruncate characters. Display only.
func (f *Folded) String() string {
	names := f.fr.Names()
	widths := make([]int, len(names))
	cells := make([][]string, f.fr.NumRows())

	for j, n := range names {
		widths[j] = len(n)
	}
	for i := 0; i < f.fr.NumRows(); i++ {
		row := make([]string, len(names))
		for j, n := range names {
			v := f.fr.At(n, i)
			s := "NA"
			if !v.Null {
				s = TruncateEncoded(v.Str, DefaultTruncate)
			}
			row[j] = s
			if len(s) > widths[j] {
				widths[j] = len(s)
			}
		}
		cells[i] = row
	}

	var sb strings.Builder
	writeRow := func(row []string) {
		for j, s := range row {
			if j > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(s)
			sb.WriteString(strings.Repeat(" ", widths[j]-len(s)))
		}
		sb.WriteByte('\n')
	}

	writeRow(names)
	for _, row := range cells {
		writeRow(row)
	}

	return sb.String()
}
