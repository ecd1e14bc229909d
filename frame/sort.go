package frame

import "sort"

// Sort returns a new frame whose rows are stably sorted ascending by each of
// the named columns, left to right, with nulls first. Unknown names are
// ignored.
//
// When decreasing is true the fully sorted row sequence is reversed as a
// whole. This is deliberately not a per-column descending comparison: the
// reversal applies after the stable ascending sort, so ties keep their
// (reversed) input order.
func (f *Frame) Sort(by []string, decreasing bool) *Frame {
	cols := make([]*Column, 0, len(by))
	for _, n := range by {
		if c := f.Col(n); c != nil {
			cols = append(cols, c)
		}
	}

	n := f.NumRows()
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	sort.SliceStable(perm, func(a, b int) bool {
		ra, rb := perm[a], perm[b]
		for _, c := range cols {
			if cmp := Compare(c.Values[ra], c.Values[rb]); cmp != 0 {
				return cmp < 0
			}
		}

		return false
	})

	if decreasing {
		for i, j := 0, len(perm)-1; i < j; i, j = i+1, j-1 {
			perm[i], perm[j] = perm[j], perm[i]
		}
	}

	return f.applyPerm(perm)
}

// applyPerm returns a new frame with rows ordered by perm.
func (f *Frame) applyPerm(perm []int) *Frame {
	out := New()
	for _, c := range f.cols {
		nc := &Column{Name: c.Name, Kind: c.Kind, Levels: append([]string(nil), c.Levels...)}
		nc.Values = make([]Value, len(perm))
		for i, p := range perm {
			nc.Values[i] = c.Values[p]
		}
		_ = out.AddColumn(nc)
	}
	out.groups = append([]string(nil), f.groups...)

	return out
}
