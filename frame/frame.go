// Package frame implements an ordered-column, in-memory data frame.
//
// A Frame is a set of named columns of equal length. Cells are Values: a
// string payload plus a null flag. Column order is significant throughout the
// fold packages: it drives sort priority, key simplification and the
// left-to-right tie-break rules, so every operation preserves it.
//
// All operations are pure: they return new frames and never mutate their
// receiver or arguments.
package frame

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cran/fold/internal/hash"
)

// Kind classifies the original representation of a column.
//
// All cell payloads are stored as text; Kind records whether the column came
// from (or should round-trip to) a numeric or categorical representation.
type Kind uint8

const (
	KindString  Kind = 0x1 // KindString is plain text.
	KindNumeric Kind = 0x2 // KindNumeric round-trips through a number.
	KindFactor  Kind = 0x3 // KindFactor is categorical with ordered levels.
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindNumeric:
		return "Numeric"
	case KindFactor:
		return "Factor"
	default:
		return "Unknown"
	}
}

// Value is a single cell: a string payload plus a null flag.
// The zero Value is the empty string, not null.
type Value struct {
	Str  string
	Null bool
}

// NA returns the null Value.
func NA() Value { return Value{Null: true} }

// String returns a non-null Value holding s.
func String(s string) Value { return Value{Str: s} }

// Equal reports whether two values are identical (null matches only null).
func (v Value) Equal(o Value) bool {
	if v.Null || o.Null {
		return v.Null == o.Null
	}

	return v.Str == o.Str
}

// keyPart returns the value in a form safe to feed into a tuple signature:
// nulls and payloads starting with the same byte cannot collide.
func (v Value) keyPart() string {
	if v.Null {
		return "\x00"
	}

	return "\x01" + v.Str
}

// Compare orders a relative to b: nulls sort first; if both payloads parse as
// numbers they compare numerically, with the text form as a tie-break so the
// order stays total and deterministic; otherwise byte-wise string order.
func Compare(a, b Value) int {
	switch {
	case a.Null && b.Null:
		return 0
	case a.Null:
		return -1
	case b.Null:
		return 1
	}

	fa, errA := strconv.ParseFloat(a.Str, 64)
	fb, errB := strconv.ParseFloat(b.Str, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
	}

	return strings.Compare(a.Str, b.Str)
}

// Column is a named, typed sequence of values.
type Column struct {
	Name   string
	Kind   Kind
	Levels []string // level order for KindFactor, nil otherwise
	Values []Value
}

// NewColumn creates an empty column of the given kind.
func NewColumn(name string, kind Kind) *Column {
	return &Column{Name: name, Kind: kind}
}

// StringColumn creates a KindString column from plain strings.
func StringColumn(name string, vals ...string) *Column {
	c := NewColumn(name, KindString)
	for _, s := range vals {
		c.Values = append(c.Values, String(s))
	}

	return c
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	out.Levels = append([]string(nil), c.Levels...)
	out.Values = append([]Value(nil), c.Values...)

	return out
}

// AllNull reports whether every value in the column is null.
// An empty column counts as all-null.
func (c *Column) AllNull() bool {
	for _, v := range c.Values {
		if !v.Null {
			return false
		}
	}

	return true
}

// DistinctNonNull returns the distinct non-null payloads in order of first
// appearance, except for KindFactor columns where the declared level order
// wins for levels that actually occur.
func (c *Column) DistinctNonNull() []string {
	seen := make(map[string]bool, len(c.Values))
	var out []string
	for _, v := range c.Values {
		if v.Null || seen[v.Str] {
			continue
		}
		seen[v.Str] = true
		out = append(out, v.Str)
	}

	if c.Kind == KindFactor && len(c.Levels) > 0 {
		ordered := make([]string, 0, len(out))
		for _, lv := range c.Levels {
			if seen[lv] {
				ordered = append(ordered, lv)
				seen[lv] = false
			}
		}
		// Values outside the declared levels keep appearance order.
		for _, s := range out {
			if seen[s] {
				ordered = append(ordered, s)
			}
		}

		return ordered
	}

	return out
}

// Frame is an ordered set of equal-length named columns, plus optional
// "groups" metadata naming the key columns of the table.
type Frame struct {
	cols   []*Column
	index  map[string]int
	groups []string
}

// New creates an empty frame.
func New() *Frame {
	return &Frame{index: make(map[string]int)}
}

// AddColumn appends a column to the frame.
//
// Returns an error if a column with the same name already exists, or if the
// column length disagrees with the frame's existing row count.
func (f *Frame) AddColumn(c *Column) error {
	if _, ok := f.index[c.Name]; ok {
		return fmt.Errorf("duplicate column %q", c.Name)
	}
	if len(f.cols) > 0 && len(c.Values) != f.NumRows() {
		return fmt.Errorf("column %q has %d rows, frame has %d", c.Name, len(c.Values), f.NumRows())
	}

	f.index[c.Name] = len(f.cols)
	f.cols = append(f.cols, c)

	return nil
}

// Col returns the named column, or nil if absent.
func (f *Frame) Col(name string) *Column {
	if i, ok := f.index[name]; ok {
		return f.cols[i]
	}

	return nil
}

// HasColumn reports whether the named column exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Names returns the column names in order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.cols))
	for i, c := range f.cols {
		out[i] = c.Name
	}

	return out
}

// NumCols returns the number of columns.
func (f *Frame) NumCols() int { return len(f.cols) }

// NumRows returns the number of rows (zero for a column-less frame).
func (f *Frame) NumRows() int {
	if len(f.cols) == 0 {
		return 0
	}

	return len(f.cols[0].Values)
}

// At returns the cell at the named column and row.
// Returns the null value if the column does not exist.
func (f *Frame) At(name string, row int) Value {
	c := f.Col(name)
	if c == nil {
		return NA()
	}

	return c.Values[row]
}

// SetGroups records the key-column names of the frame (order preserved).
func (f *Frame) SetGroups(groups []string) {
	f.groups = append([]string(nil), groups...)
}

// Groups returns the key-column names recorded on the frame.
func (f *Frame) Groups() []string {
	return append([]string(nil), f.groups...)
}

// Clone returns a deep copy of the frame, including groups metadata.
func (f *Frame) Clone() *Frame {
	out := New()
	for _, c := range f.cols {
		_ = out.AddColumn(c.Clone())
	}
	out.groups = append([]string(nil), f.groups...)

	return out
}

// AppendRow appends one value per column, in column order.
func (f *Frame) AppendRow(vals []Value) error {
	if len(vals) != len(f.cols) {
		return fmt.Errorf("row has %d values, frame has %d columns", len(vals), len(f.cols))
	}
	for i, c := range f.cols {
		c.Values = append(c.Values, vals[i])
	}

	return nil
}

// Row returns a copy of row i in column order.
func (f *Frame) Row(i int) []Value {
	out := make([]Value, len(f.cols))
	for j, c := range f.cols {
		out[j] = c.Values[i]
	}

	return out
}

// Select returns a new frame with copies of the named columns, in the given
// order. Unknown names are skipped.
func (f *Frame) Select(names ...string) *Frame {
	out := New()
	for _, n := range names {
		if c := f.Col(n); c != nil {
			_ = out.AddColumn(c.Clone())
		}
	}

	return out
}

// Drop returns a new frame without the named columns.
func (f *Frame) Drop(names ...string) *Frame {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}

	out := New()
	for _, c := range f.cols {
		if !drop[c.Name] {
			_ = out.AddColumn(c.Clone())
		}
	}
	out.groups = append([]string(nil), f.groups...)

	return out
}

// Reorder returns a new frame with the listed columns first, in the given
// order, followed by the remaining columns in their original order.
// Unknown names are ignored.
func (f *Frame) Reorder(first []string) *Frame {
	placed := make(map[string]bool, len(first))
	out := New()
	for _, n := range first {
		if c := f.Col(n); c != nil && !placed[n] {
			placed[n] = true
			_ = out.AddColumn(c.Clone())
		}
	}
	for _, c := range f.cols {
		if !placed[c.Name] {
			_ = out.AddColumn(c.Clone())
		}
	}
	out.groups = append([]string(nil), f.groups...)

	return out
}

// Filter returns a new frame keeping only rows for which keep returns true.
func (f *Frame) Filter(keep func(row int) bool) *Frame {
	out := New()
	for _, c := range f.cols {
		_ = out.AddColumn(&Column{Name: c.Name, Kind: c.Kind, Levels: append([]string(nil), c.Levels...)})
	}
	out.groups = append([]string(nil), f.groups...)

	n := f.NumRows()
	for i := 0; i < n; i++ {
		if keep(i) {
			_ = out.AppendRow(f.Row(i))
		}
	}

	return out
}

// Signature computes the tuple signature of the named columns at the given
// row. Missing columns contribute the null marker.
func (f *Frame) Signature(names []string, row int) uint64 {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = f.At(n, row).keyPart()
	}

	return hash.Tuple(parts)
}

// rowParts returns the comparable tuple form of the named columns at row i.
// Used to verify signature matches against hash collisions.
func (f *Frame) rowParts(names []string, row int) string {
	var sb strings.Builder
	for _, n := range names {
		sb.WriteString(f.At(n, row).keyPart())
		sb.WriteByte(0x1f)
	}

	return sb.String()
}

// Dedup returns a new frame with exact duplicate rows removed (first
// occurrence kept), along with the number of rows dropped.
func (f *Frame) Dedup() (*Frame, int) {
	names := f.Names()
	seen := make(map[uint64][]string, f.NumRows())
	dropped := 0

	out := f.Filter(func(i int) bool {
		sig := f.Signature(names, i)
		full := f.rowParts(names, i)
		for _, prev := range seen[sig] {
			if prev == full {
				dropped++
				return false
			}
		}
		seen[sig] = append(seen[sig], full)

		return true
	})

	return out, dropped
}

// DropAllNullColumns returns a new frame without columns whose values are all
// null. Column-less input is returned as an empty frame.
func (f *Frame) DropAllNullColumns() *Frame {
	out := New()
	for _, c := range f.cols {
		if len(c.Values) > 0 && c.AllNull() {
			continue
		}
		_ = out.AddColumn(c.Clone())
	}

	var groups []string
	for _, g := range f.groups {
		if out.HasColumn(g) {
			groups = append(groups, g)
		}
	}
	out.groups = groups

	return out
}
