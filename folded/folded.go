// Package folded implements the normal form for tabular data and the
// fold, distill and unfold transformations over it.
//
// The normal form is a long-format table with three reserved columns plus
// any number of key columns:
//
//	VARIABLE  name of a data item, or of the item a metadata row describes
//	META      attribute name when the row is metadata, null for data rows
//	VALUE     the value, always text
//	keys...   the columns identifying which record the value belongs to
//
// Within the table, (VARIABLE, META, keys...) determine at most one VALUE.
// Key-column order is significant: it is the simplification priority, the
// sort priority and the left-to-right tie-break everywhere.
//
// All operations are pure transformations; a Folded is never mutated.
package folded

import (
	"fmt"

	"github.com/cran/fold/errs"
	"github.com/cran/fold/frame"
	"github.com/cran/fold/internal/options"
)

// Reserved normal-form column names. They must never collide with a
// key-column name.
const (
	ColVariable = "VARIABLE"
	ColMeta     = "META"
	ColValue    = "VALUE"
)

var reserved = []string{ColVariable, ColMeta, ColValue}

// IsReserved reports whether name is one of the reserved column names.
func IsReserved(name string) bool {
	return name == ColVariable || name == ColMeta || name == ColValue
}

// Folded is a table in normal form. Construct one with New or Fold.
type Folded struct {
	fr *frame.Frame
}

// New coerces an arbitrary frame into normal form.
//
// The frame must contain VARIABLE, META and VALUE columns; every other
// column is treated as a key column. Columns are reordered to (VARIABLE,
// META, VALUE, keys...), VALUE is coerced to text, exact duplicate rows are
// dropped with a message, and rows that repeat a (VARIABLE, META, keys...)
// tuple with a different VALUE are dropped with a warning, keeping the
// first-encountered row. With sorting enabled (the default) the result is
// put into the deterministic order described at Sort.
//
// Returns errs.ErrMissingColumn if a required column is absent.
func New(fr *frame.Frame, opts ...Option) (*Folded, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return newFolded(cfg, fr)
}

func newFolded(cfg *Config, fr *frame.Frame) (*Folded, error) {
	for _, name := range reserved {
		if !fr.HasColumn(name) {
			return nil, fmt.Errorf("%w: %s", errs.ErrMissingColumn, name)
		}
	}

	out := fr.Reorder(reserved)
	out.Col(ColValue).Kind = frame.KindString

	keys := keyColumns(out)
	out = dropConflicts(cfg, out, keys)

	if cfg.Sort {
		out = sortFolded(out)
	}
	out.SetGroups(keys)

	return &Folded{fr: out}, nil
}

// keyColumns returns the non-reserved column names in order.
func keyColumns(fr *frame.Frame) []string {
	var keys []string
	for _, n := range fr.Names() {
		if !IsReserved(n) {
			keys = append(keys, n)
		}
	}

	return keys
}

// dropConflicts removes exact duplicate rows (message) and divergent-value
// key duplicates (warning), keeping the first occurrence of each tuple in
// the frame's current order.
func dropConflicts(cfg *Config, fr *frame.Frame, keys []string) *frame.Frame {
	idCols := append([]string{ColVariable, ColMeta}, keys...)

	type first struct {
		parts string
		value frame.Value
	}
	seen := make(map[uint64][]*first, fr.NumRows())

	duplicates, conflicts := 0, 0
	out := fr.Filter(func(i int) bool {
		sig := fr.Signature(idCols, i)
		parts := idParts(fr, idCols, i)
		val := fr.At(ColValue, i)
		for _, prev := range seen[sig] {
			if prev.parts != parts {
				continue
			}
			if prev.value.Equal(val) {
				duplicates++
			} else {
				conflicts++
			}

			return false
		}
		seen[sig] = append(seen[sig], &first{parts: parts, value: val})

		return true
	})

	if duplicates > 0 {
		cfg.Logf("removed %d duplicate row(s)", duplicates)
	}
	if conflicts > 0 {
		cfg.Logf("warning: removed %d row(s) with conflicting values for the same key", conflicts)
	}

	return out
}

func idParts(fr *frame.Frame, idCols []string, row int) string {
	var sb []byte
	for _, n := range idCols {
		v := fr.At(n, row)
		if v.Null {
			sb = append(sb, 0x00)
		} else {
			sb = append(sb, 0x01)
			sb = append(sb, v.Str...)
		}
		sb = append(sb, 0x1f)
	}

	return string(sb)
}

// sortFolded applies the deterministic order: stable ascending by every
// non-VALUE column left to right, nulls first.
func sortFolded(fr *frame.Frame) *frame.Frame {
	var by []string
	for _, n := range fr.Names() {
		if n != ColValue {
			by = append(by, n)
		}
	}

	return fr.Sort(by, false)
}

// Sort returns a copy in deterministic order: stable ascending by every
// non-VALUE column left to right (VARIABLE, META, then keys), nulls first.
// decreasing reverses the final row sequence as a whole; it is not a
// per-column descending sort.
func (f *Folded) Sort(decreasing bool) *Folded {
	var by []string
	for _, n := range f.fr.Names() {
		if n != ColValue {
			by = append(by, n)
		}
	}

	return &Folded{fr: f.fr.Sort(by, decreasing)}
}

// Frame returns the underlying frame. The frame is shared with the Folded;
// callers must not modify it.
func (f *Folded) Frame() *frame.Frame { return f.fr }

// Keys returns the key-column names in order.
func (f *Folded) Keys() []string { return keyColumns(f.fr) }

// NumRows returns the number of rows.
func (f *Folded) NumRows() int { return f.fr.NumRows() }

// Variables returns the distinct VARIABLE values that carry data rows
// (META null), in order of first appearance.
func (f *Folded) Variables() []string {
	variable := f.fr.Col(ColVariable)
	meta := f.fr.Col(ColMeta)

	seen := make(map[string]bool)
	var out []string
	for i, v := range variable.Values {
		if v.Null || !meta.Values[i].Null || seen[v.Str] {
			continue
		}
		seen[v.Str] = true
		out = append(out, v.Str)
	}

	return out
}

// attributes returns the distinct non-null META values attached to the given
// variable, in order of first appearance.
func (f *Folded) attributes(variable string) []string {
	vcol := f.fr.Col(ColVariable)
	mcol := f.fr.Col(ColMeta)

	seen := make(map[string]bool)
	var out []string
	for i, v := range vcol.Values {
		m := mcol.Values[i]
		if v.Null || v.Str != variable || m.Null || seen[m.Str] {
			continue
		}
		seen[m.Str] = true
		out = append(out, m.Str)
	}

	return out
}

// subset returns the rows for one (variable, attribute) pair; attribute ""
// selects the data rows (META null).
func (f *Folded) subset(variable, attribute string) *frame.Frame {
	vcol := f.fr.Col(ColVariable)
	mcol := f.fr.Col(ColMeta)

	return f.fr.Filter(func(i int) bool {
		v := vcol.Values[i]
		if v.Null || v.Str != variable {
			return false
		}
		m := mcol.Values[i]
		if attribute == "" {
			return m.Null
		}

		return !m.Null && m.Str == attribute
	})
}
