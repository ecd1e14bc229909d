package folded

import (
	"github.com/cran/fold/frame"
	"github.com/cran/fold/internal/options"
)

// Unfold reconstructs a wide frame from the normal form.
//
// Every requested top-level variable (WithVariables; default: all variables
// carrying data rows) is distilled and the fragments are outer-merged on
// their shared key columns. Each key column is then distilled as a mission
// of its own, recovering metadata attached to keys; its columns are spliced
// in immediately after the key column they describe.
//
// The result is tagged with groups metadata naming the key columns present
// in it, and with sorting enabled (the default) is stably sorted ascending
// on those columns, nulls first. An empty normal form unfolds to an empty
// frame.
func (f *Folded) Unfold(opts ...Option) (*frame.Frame, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	variables := cfg.Variables
	if len(variables) == 0 {
		variables = f.Variables()
	}

	var result *frame.Frame
	for _, v := range variables {
		frag, err := f.distill(cfg, v, nil, nil)
		if err != nil {
			return nil, err
		}
		if frag == nil || frag.NumRows() == 0 {
			cfg.Logf("warning: nothing to unfold for %s, skipped", v)
			continue
		}
		result = frame.OuterMerge(result, frag)
	}

	keys := f.Keys()
	for _, k := range keys {
		if result == nil || !result.HasColumn(k) {
			continue
		}
		before := result.Names()
		grown, err := f.distill(cfg, k, nil, result)
		if err != nil {
			return nil, err
		}
		result = spliceAfter(grown, k, before)
	}

	if result == nil || result.NumCols() == 0 {
		return frame.New(), nil
	}

	var groups []string
	for _, k := range keys {
		if result.HasColumn(k) {
			groups = append(groups, k)
		}
	}
	result.SetGroups(groups)

	if cfg.Sort {
		result = result.Sort(groups, false)
	}

	return result, nil
}

// spliceAfter repositions the columns added since before so they sit
// immediately after the named column.
func spliceAfter(fr *frame.Frame, after string, before []string) *frame.Frame {
	known := make(map[string]bool, len(before))
	for _, n := range before {
		known[n] = true
	}

	var added []string
	for _, n := range fr.Names() {
		if !known[n] {
			added = append(added, n)
		}
	}
	if len(added) == 0 {
		return fr
	}

	var order []string
	for _, n := range before {
		order = append(order, n)
		if n == after {
			order = append(order, added...)
		}
	}

	return fr.Reorder(order)
}
