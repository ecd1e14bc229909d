package folded

import (
	"fmt"
	"strings"

	"github.com/cran/fold/codec"
	"github.com/cran/fold/errs"
	"github.com/cran/fold/frame"
	"github.com/cran/fold/internal/options"
)

// Distill reconstructs the wide fragment for one variable (the mission) from
// the normal form, recursively folding in its metadata tree.
//
// The mission's data rows pivot to a column named after the mission. Each
// attribute either decodes onto the mission's column (when its value is a
// single encoded mapping) as a bare attribute-named categorical column, or
// pivots to a two-segment "mission_attribute" column merged in by key. The
// attribute is then distilled in turn, so metadata-of-metadata nests to any
// depth. A variable reachable as its own metadata attribute is reported as
// errs.ErrCyclicMetadata.
//
// Returns a possibly empty frame when the mission does not occur.
func (f *Folded) Distill(mission string, opts ...Option) (*frame.Frame, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	result, err := f.distill(cfg, mission, nil, nil)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return frame.New(), nil
	}

	return result, nil
}

// distill grows result with the mission's data and metadata. The growing
// result is threaded through the recursion so that a nested attribute can
// decode onto the column its parent just produced.
func (f *Folded) distill(cfg *Config, mission string, lineage []string, result *frame.Frame) (*frame.Frame, error) {
	for _, ancestor := range lineage {
		if ancestor == mission {
			chain := strings.Join(append(append([]string(nil), lineage...), mission), " -> ")
			return nil, fmt.Errorf("%w: %s", errs.ErrCyclicMetadata, chain)
		}
	}

	keys := f.Keys()

	if data := f.subset(mission, ""); data.NumRows() > 0 {
		result = frame.OuterMerge(result, pivot(cfg, data, keys, mission))
	}

	for _, attr := range f.attributes(mission) {
		sub := f.subset(mission, attr)

		if enc, ok := singleEncodedValue(sub); ok {
			result = decodeOnto(cfg, result, mission, attr, enc, lineage)
		} else {
			frag := pivot(cfg, sub, keys, mission+cfg.Separator+attr)
			if frag.NumRows() == 0 {
				cfg.Logf("warning: empty fragment for %s/%s, skipped", mission, attr)
			} else {
				result = frame.OuterMerge(result, frag)
			}
		}

		line := append(append([]string(nil), lineage...), mission)
		child, err := f.distill(cfg, attr, line, result)
		if err != nil {
			return nil, err
		}
		result = child
	}

	return result, nil
}

// pivot widens a subset of normal-form rows into one column named name,
// keyed by the key columns that carry any value in the subset. Key tuples
// repeating with the same VALUE collapse; the constructor already removed
// conflicting repeats. A name colliding with a needed key column cannot be
// widened; the fragment is skipped with a warning.
func pivot(cfg *Config, sub *frame.Frame, keys []string, name string) *frame.Frame {
	var used []string
	for _, k := range keys {
		if c := sub.Col(k); c != nil && !c.AllNull() {
			if k == name {
				cfg.Logf("warning: %s is both a key column and a pivot target, fragment skipped", name)
				return frame.New()
			}
			used = append(used, k)
		}
	}

	out := frame.New()
	for _, k := range used {
		c := sub.Col(k)
		_ = out.AddColumn(&frame.Column{Name: k, Kind: c.Kind, Levels: append([]string(nil), c.Levels...)})
	}
	_ = out.AddColumn(frame.NewColumn(name, frame.KindString))

	seen := make(map[uint64][]string, sub.NumRows())
	for i := 0; i < sub.NumRows(); i++ {
		sig := sub.Signature(used, i)
		parts := tupleParts(sub, used, i)
		dup := false
		for _, p := range seen[sig] {
			if p == parts {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen[sig] = append(seen[sig], parts)

		row := make([]frame.Value, 0, len(used)+1)
		for _, k := range used {
			row = append(row, sub.At(k, i))
		}
		row = append(row, sub.At(ColValue, i))
		_ = out.AppendRow(row)
	}

	return out
}

func tupleParts(fr *frame.Frame, cols []string, row int) string {
	var sb strings.Builder
	for _, n := range cols {
		v := fr.At(n, row)
		if v.Null {
			sb.WriteByte(0x00)
		} else {
			sb.WriteByte(0x01)
			sb.WriteString(v.Str)
		}
		sb.WriteByte(0x1f)
	}

	return sb.String()
}

// singleEncodedValue reports whether every VALUE in the subset is the same
// single encoding string.
func singleEncodedValue(sub *frame.Frame) (string, bool) {
	vals := sub.Col(ColValue)
	if vals == nil || len(vals.Values) == 0 {
		return "", false
	}

	first := vals.Values[0]
	if first.Null {
		return "", false
	}
	for _, v := range vals.Values[1:] {
		if v.Null || v.Str != first.Str {
			return "", false
		}
	}
	if !codec.IsEncoded(first.Str) {
		return "", false
	}

	return first.Str, true
}

// decodeOnto joins an encoded mapping against the mission's code column,
// adding a bare attribute-named categorical column. The code column is the
// mission's own column, or the compound column its parent merged in.
// Conflicts are recovered locally: a missing code column or an existing
// target column skips the decode with a warning.
func decodeOnto(cfg *Config, result *frame.Frame, mission, attr, enc string, lineage []string) *frame.Frame {
	codeName := ""
	if result != nil {
		if result.HasColumn(mission) {
			codeName = mission
		} else if len(lineage) > 0 {
			compound := lineage[len(lineage)-1] + cfg.Separator + mission
			if result.HasColumn(compound) {
				codeName = compound
			}
		}
	}
	if codeName == "" {
		cfg.Logf("warning: no %s column to decode %s onto, skipped", mission, attr)
		return result
	}
	if result.HasColumn(attr) {
		cfg.Logf("warning: decode target %s already exists, skipped", attr)
		return result
	}

	codes := codec.Codes(enc)
	decodes := codec.Decodes(enc)
	lookup := make(map[string]string, len(codes))
	var levels []string
	seen := make(map[string]bool, len(decodes))
	for i, c := range codes {
		lookup[c] = decodes[i]
		if decodes[i] != codec.Missing && !seen[decodes[i]] {
			seen[decodes[i]] = true
			levels = append(levels, decodes[i])
		}
	}

	out := result.Clone()
	col := &frame.Column{Name: attr, Kind: frame.KindFactor, Levels: levels}
	for i := 0; i < out.NumRows(); i++ {
		v := out.At(codeName, i)
		if v.Null {
			col.Values = append(col.Values, frame.NA())
			continue
		}
		label, ok := lookup[v.Str]
		if !ok || label == codec.Missing {
			col.Values = append(col.Values, frame.NA())
			continue
		}
		col.Values = append(col.Values, frame.String(label))
	}
	_ = out.AddColumn(col)

	return out
}
