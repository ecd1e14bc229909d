package folded

import (
	"github.com/cran/fold/frame"
)

// Simplify minimizes the key columns needed per (VARIABLE, META) group.
//
// Key columns are visited strictly left to right. For each group, a column
// is nulled out when VALUE remains uniquely determined by the group's
// still-active key columns without it. Different groups may end up keyed by
// different subsets, which is how mixed-granularity data is represented: a
// constant attribute keeps no keys at all, a per-subject value keeps the
// subject column, and so on.
//
// Key columns left entirely null are dropped, then identical rows are
// deduplicated. The result is minimal in the greedy left-to-right sense: no
// surviving key column of any group can be nulled without breaking VALUE
// uniqueness in that group.
func (f *Folded) Simplify() *Folded {
	keys := f.Keys()
	if len(keys) == 0 {
		out, _ := f.fr.Dedup()
		return &Folded{fr: out}
	}

	out := f.fr.Clone()
	n := out.NumRows()

	// Rows of each (VARIABLE, META) group, in order.
	groupOf := make(map[uint64][]int, n)
	var groupSigs []uint64
	for i := 0; i < n; i++ {
		sig := out.Signature([]string{ColVariable, ColMeta}, i)
		if _, ok := groupOf[sig]; !ok {
			groupSigs = append(groupSigs, sig)
		}
		groupOf[sig] = append(groupOf[sig], i)
	}

	// Active key columns per group; starts as the full key set.
	active := make(map[uint64]map[string]bool, len(groupSigs))
	for _, sig := range groupSigs {
		set := make(map[string]bool, len(keys))
		for _, k := range keys {
			set[k] = true
		}
		active[sig] = set
	}

	for _, k := range keys {
		for _, sig := range groupSigs {
			rows := groupOf[sig]
			if !valueUniqueWithout(out, rows, keys, active[sig], k) {
				continue
			}
			active[sig][k] = false
			col := out.Col(k)
			for _, i := range rows {
				col.Values[i] = frame.NA()
			}
		}
	}

	out = dropAllNullKeys(out)
	out, _ = out.Dedup()

	return &Folded{fr: out}
}

// valueUniqueWithout reports whether VALUE is still uniquely determined for
// the group's rows when candidate is removed from its active key columns.
func valueUniqueWithout(fr *frame.Frame, rows []int, keys []string, active map[string]bool, candidate string) bool {
	remaining := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != candidate && active[k] {
			remaining = append(remaining, k)
		}
	}

	type entry struct {
		parts string
		value frame.Value
	}
	seen := make(map[uint64][]entry, len(rows))

	for _, i := range rows {
		sig := fr.Signature(remaining, i)
		full := ""
		for _, k := range remaining {
			v := fr.At(k, i)
			if v.Null {
				full += "\x00\x1f"
			} else {
				full += "\x01" + v.Str + "\x1f"
			}
		}

		val := fr.At(ColValue, i)
		conflict := false
		known := false
		for _, e := range seen[sig] {
			if e.parts != full {
				continue
			}
			known = true
			if !e.value.Equal(val) {
				conflict = true
			}
			break
		}
		if conflict {
			return false
		}
		if !known {
			seen[sig] = append(seen[sig], entry{parts: full, value: val})
		}
	}

	return true
}

// dropAllNullKeys removes key columns whose values are entirely null,
// leaving the reserved columns alone (META may legitimately be all null).
func dropAllNullKeys(fr *frame.Frame) *frame.Frame {
	var drop []string
	for _, n := range fr.Names() {
		if IsReserved(n) {
			continue
		}
		if c := fr.Col(n); c.AllNull() {
			drop = append(drop, n)
		}
	}
	if len(drop) == 0 {
		return fr
	}

	return fr.Drop(drop...)
}
