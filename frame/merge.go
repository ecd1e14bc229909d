package frame

// OuterMerge performs a full natural outer join of a and b: rows are matched
// on the intersection of column names, unmatched rows from either side are
// kept with the other side's columns null.
//
// With no shared columns the result is the cartesian product, which is what
// broadcasts a one-row keyless constant fragment onto every row of the other
// side. As a special case, if one side of a shared-column-less merge has no
// rows, the other side's rows are kept (with nulls for the missing columns)
// instead of producing an empty product.
//
// Column order: a's columns first, then b's columns not present in a. The
// groups metadata of a is carried over where those columns survive.
func OuterMerge(a, b *Frame) *Frame {
	if a == nil || a.NumCols() == 0 {
		if b == nil {
			return New()
		}

		return b.Clone()
	}
	if b == nil || b.NumCols() == 0 {
		return a.Clone()
	}

	var shared []string
	for _, n := range a.Names() {
		if b.HasColumn(n) {
			shared = append(shared, n)
		}
	}

	out := newMergeShell(a, b)

	if len(shared) == 0 {
		mergeCartesian(out, a, b)
	} else {
		mergeJoin(out, a, b, shared)
	}

	var groups []string
	for _, g := range a.groups {
		if out.HasColumn(g) {
			groups = append(groups, g)
		}
	}
	out.groups = groups

	return out
}

// newMergeShell builds the empty result frame: a's columns, then b's
// non-shared columns, with kinds and factor levels carried over.
func newMergeShell(a, b *Frame) *Frame {
	out := New()
	for _, c := range a.cols {
		_ = out.AddColumn(&Column{Name: c.Name, Kind: c.Kind, Levels: append([]string(nil), c.Levels...)})
	}
	for _, c := range b.cols {
		if !a.HasColumn(c.Name) {
			_ = out.AddColumn(&Column{Name: c.Name, Kind: c.Kind, Levels: append([]string(nil), c.Levels...)})
		}
	}

	return out
}

func mergeCartesian(out, a, b *Frame) {
	switch {
	case a.NumRows() == 0:
		for j := 0; j < b.NumRows(); j++ {
			_ = out.AppendRow(combinedRow(out, a, b, -1, j))
		}
	case b.NumRows() == 0:
		for i := 0; i < a.NumRows(); i++ {
			_ = out.AppendRow(combinedRow(out, a, b, i, -1))
		}
	default:
		for i := 0; i < a.NumRows(); i++ {
			for j := 0; j < b.NumRows(); j++ {
				_ = out.AppendRow(combinedRow(out, a, b, i, j))
			}
		}
	}
}

func mergeJoin(out, a, b *Frame, shared []string) {
	type bucket struct {
		parts string
		rows  []int
	}

	idx := make(map[uint64][]*bucket, b.NumRows())
	for j := 0; j < b.NumRows(); j++ {
		sig := b.Signature(shared, j)
		parts := b.rowParts(shared, j)
		var bk *bucket
		for _, cand := range idx[sig] {
			if cand.parts == parts {
				bk = cand
				break
			}
		}
		if bk == nil {
			bk = &bucket{parts: parts}
			idx[sig] = append(idx[sig], bk)
		}
		bk.rows = append(bk.rows, j)
	}

	matched := make([]bool, b.NumRows())
	for i := 0; i < a.NumRows(); i++ {
		sig := a.Signature(shared, i)
		parts := a.rowParts(shared, i)
		var rows []int
		for _, cand := range idx[sig] {
			if cand.parts == parts {
				rows = cand.rows
				break
			}
		}
		if len(rows) == 0 {
			_ = out.AppendRow(combinedRow(out, a, b, i, -1))
			continue
		}
		for _, j := range rows {
			matched[j] = true
			_ = out.AppendRow(combinedRow(out, a, b, i, j))
		}
	}

	for j := 0; j < b.NumRows(); j++ {
		if !matched[j] {
			_ = out.AppendRow(combinedRow(out, a, b, -1, j))
		}
	}
}

// combinedRow assembles one output row from a's row i and b's row j; either
// index may be -1 to mean "no row on that side" (nulls for its columns,
// except shared columns which fall back to the present side).
func combinedRow(out, a, b *Frame, i, j int) []Value {
	vals := make([]Value, out.NumCols())
	for k, name := range out.Names() {
		switch {
		case i >= 0 && a.HasColumn(name):
			vals[k] = a.At(name, i)
		case j >= 0 && b.HasColumn(name):
			vals[k] = b.At(name, j)
		default:
			vals[k] = NA()
		}
	}

	return vals
}
