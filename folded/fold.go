package folded

import (
	"fmt"
	"strings"

	"github.com/cran/fold/codec"
	"github.com/cran/fold/errs"
	"github.com/cran/fold/frame"
	"github.com/cran/fold/internal/options"
)

// Fold converts a wide frame into normal form.
//
// Key columns come from WithKeys, falling back to the frame's groups
// metadata; with neither, the fold proceeds ungrouped with a message.
// Metadata relations come from WithRelations/WithMeta, or are inferred from
// the separator naming convention: a column "X_Y" is attribute Y of item X
// when X is another column or an already-inferred attribute (split on the
// first separator only).
//
// Data columns are stacked into (VARIABLE, META=null, VALUE, keys...) rows.
// Each metadata relation is stacked under its bare attribute name, then
// compacted into a single encoded code/label row when every value of the
// described item maps to exactly one attribute value and either side is
// categorical or the code count is within the tolerance. With simplification
// enabled, redundant key values are nulled per variable. The combined rows
// pass through the normal-form constructor, which deduplicates and sorts.
//
// A frame that already carries all three reserved columns is treated as
// normal form and only re-validated, so folding twice equals folding once.
//
// Returns errs.ErrReservedName if the wide frame contains some but not all
// of the reserved column names, or errs.ErrMissingColumn if a named key
// column is absent.
func Fold(fr *frame.Frame, opts ...Option) (*Folded, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	// A frame carrying all three reserved columns is already in normal
	// form; folding it again is a validating no-op.
	if fr.HasColumn(ColVariable) && fr.HasColumn(ColMeta) && fr.HasColumn(ColValue) {
		cfg.Logf("input is already in normal form")
		return newFolded(cfg, fr)
	}
	for _, n := range fr.Names() {
		if IsReserved(n) {
			return nil, fmt.Errorf("%w: %s", errs.ErrReservedName, n)
		}
	}

	keys, err := resolveKeys(cfg, fr)
	if err != nil {
		return nil, err
	}

	rels := resolveRelations(cfg, fr, keys)
	warnSiblingCollisions(cfg, rels)

	metaSource := make(map[string]bool, len(rels))
	for _, r := range rels {
		metaSource[r.Column] = true
	}
	keySet := make(map[string]bool, len(keys))
	for _, k := range keys {
		keySet[k] = true
	}

	data := newNormalShell(fr, keys)
	for _, n := range fr.Names() {
		if keySet[n] || metaSource[n] {
			continue
		}
		stackColumn(data, fr, keys, n, n, "")
	}
	if cfg.Simplify {
		data = (&Folded{fr: data}).Simplify().fr
	}

	parts := []*frame.Frame{data}
	for _, rel := range rels {
		frag := foldRelation(cfg, fr, keys, rel)
		if frag != nil {
			parts = append(parts, frag)
		}
	}

	return newFolded(cfg, concatNormal(fr, keys, parts))
}

// resolveKeys determines the key columns: explicit option, then the frame's
// groups metadata. With neither the fold is ungrouped; no synthetic row
// index is invented.
func resolveKeys(cfg *Config, fr *frame.Frame) ([]string, error) {
	keys := cfg.Keys
	if len(keys) == 0 {
		keys = fr.Groups()
	}
	for _, k := range keys {
		if !fr.HasColumn(k) {
			return nil, fmt.Errorf("%w: key column %s", errs.ErrMissingColumn, k)
		}
	}

	if len(keys) == 0 {
		if fr.HasColumn("ROW") {
			cfg.Logf("no key columns given; ROW column left as data, no synthetic key added")
		} else {
			cfg.Logf("no key columns given; folding ungrouped")
		}
	}

	return keys, nil
}

// resolveRelations returns the explicit relations, or infers them from the
// naming convention. Explicit relations whose source column is absent are
// dropped with a warning.
func resolveRelations(cfg *Config, fr *frame.Frame, keys []string) []Relation {
	if len(cfg.Relations) > 0 {
		var out []Relation
		for _, r := range cfg.Relations {
			if r.Column == "" {
				r.Column = r.Attribute
			}
			if !fr.HasColumn(r.Column) {
				cfg.Logf("warning: metadata column %s (%s~%s) not found, skipped", r.Column, r.Variable, r.Attribute)
				continue
			}
			out = append(out, r)
		}

		return out
	}

	return inferRelations(cfg, fr, keys)
}

// inferRelations applies the naming convention: column "X_Y" (first
// separator wins) is attribute Y of X when X is a column name or an
// attribute inferred in an earlier pass. Passes repeat until stable so that
// chains like DV_BLQ, BLQ_LLOQ resolve regardless of column order.
func inferRelations(cfg *Config, fr *frame.Frame, keys []string) []Relation {
	keySet := make(map[string]bool, len(keys))
	for _, k := range keys {
		keySet[k] = true
	}

	item := make(map[string]bool)
	for _, n := range fr.Names() {
		item[n] = true
	}

	classified := make(map[string]bool)
	var rels []Relation
	for {
		changed := false
		for _, n := range fr.Names() {
			if keySet[n] || classified[n] {
				continue
			}
			i := strings.Index(n, cfg.Separator)
			if i <= 0 {
				continue
			}
			parent, attr := n[:i], n[i+len(cfg.Separator):]
			if attr == "" || !item[parent] {
				continue
			}
			rels = append(rels, Relation{Variable: parent, Attribute: attr, Column: n})
			classified[n] = true
			item[attr] = true
			changed = true
		}
		if !changed {
			return rels
		}
	}
}

// warnSiblingCollisions flags relations under different parents that share a
// bare attribute name: their rows are stored under the same META value and
// will merge on unfold.
func warnSiblingCollisions(cfg *Config, rels []Relation) {
	parents := make(map[string][]string)
	for _, r := range rels {
		parents[r.Attribute] = append(parents[r.Attribute], r.Variable)
	}
	for attr, vars := range parents {
		if len(vars) > 1 {
			cfg.Logf("warning: attribute %s is metadata of multiple variables (%s)", attr, strings.Join(vars, ", "))
		}
	}
}

// newNormalShell creates an empty normal-form frame with the given key
// columns, carrying over their kinds and factor levels.
func newNormalShell(fr *frame.Frame, keys []string) *frame.Frame {
	out := frame.New()
	_ = out.AddColumn(frame.NewColumn(ColVariable, frame.KindString))
	_ = out.AddColumn(frame.NewColumn(ColMeta, frame.KindString))
	_ = out.AddColumn(frame.NewColumn(ColValue, frame.KindString))
	for _, k := range keys {
		c := fr.Col(k)
		_ = out.AddColumn(&frame.Column{Name: k, Kind: c.Kind, Levels: append([]string(nil), c.Levels...)})
	}

	return out
}

// stackColumn appends one long-format row per non-null cell of the named
// wide column. attribute "" stacks a data column (META null).
func stackColumn(dst, fr *frame.Frame, keys []string, col, variable, attribute string) {
	src := fr.Col(col)
	meta := frame.NA()
	if attribute != "" {
		meta = frame.String(attribute)
	}

	for i, v := range src.Values {
		if v.Null {
			continue
		}
		row := make([]frame.Value, 0, 3+len(keys))
		row = append(row, frame.String(variable), meta, frame.String(v.Str))
		for _, k := range keys {
			row = append(row, fr.At(k, i))
		}
		_ = dst.AppendRow(row)
	}
}

// foldRelation stacks one metadata relation, compacting it into a single
// encoded row when the encoding test passes. Returns nil when the relation
// contributes nothing.
func foldRelation(cfg *Config, fr *frame.Frame, keys []string, rel Relation) *frame.Frame {
	src := fr.Col(rel.Column)
	parent := parentColumn(fr, cfg, rel)

	if parent != nil {
		if encoded, ok := tryEncode(cfg, parent, src); ok {
			frag := newNormalShell(fr, keys)
			row := make([]frame.Value, 0, 3+len(keys))
			row = append(row, frame.String(rel.Variable), frame.String(rel.Attribute), frame.String(encoded))
			for range keys {
				row = append(row, frame.NA())
			}
			_ = frag.AppendRow(row)

			return frag
		}
	}

	frag := newNormalShell(fr, keys)
	stackColumn(frag, fr, keys, rel.Column, rel.Variable, rel.Attribute)
	if cfg.Simplify {
		frag = (&Folded{fr: frag}).Simplify().fr
	}

	return frag
}

// parentColumn locates the wide column holding the described item's values:
// the column named after the variable, or the source column of the relation
// whose attribute the variable is (metadata-of-metadata chains).
func parentColumn(fr *frame.Frame, cfg *Config, rel Relation) *frame.Column {
	if c := fr.Col(rel.Variable); c != nil {
		return c
	}
	for _, r := range cfg.Relations {
		if r.Attribute == rel.Variable {
			col := r.Column
			if col == "" {
				col = r.Attribute
			}
			if c := fr.Col(col); c != nil {
				return c
			}
		}
	}
	// Inferred chains: the parent's values live in a compound-named column.
	for _, n := range fr.Names() {
		if strings.HasSuffix(n, cfg.Separator+rel.Variable) {
			return fr.Col(n)
		}
	}

	return nil
}

// tryEncode evaluates the encoding test for a (parent, attribute) column
// pair and builds the encoded mapping when it passes.
//
// The pair must be mapped: every distinct parent value pairs with exactly
// one attribute value (null attributes count as the NA marker). On top of
// that, either column is categorical, or the code count is within the
// tolerance and the attribute has more than one distinct value.
func tryEncode(cfg *Config, parent, src *frame.Column) (string, bool) {
	labels := make(map[string]string)
	for i, p := range parent.Values {
		if p.Null {
			continue
		}
		label := codec.Missing
		if v := src.Values[i]; !v.Null {
			label = v.Str
		}
		if prev, ok := labels[p.Str]; ok {
			if prev != label {
				return "", false // not mapped
			}
			continue
		}
		labels[p.Str] = label
	}
	if len(labels) == 0 {
		return "", false
	}

	distinctLabels := make(map[string]bool, len(labels))
	for _, l := range labels {
		distinctLabels[l] = true
	}

	categorical := parent.Kind == frame.KindFactor || src.Kind == frame.KindFactor
	if !categorical && (len(labels) > cfg.Tolerance || len(distinctLabels) <= 1) {
		return "", false
	}

	codes := parent.DistinctNonNull()
	decodes := make([]string, len(codes))
	for i, c := range codes {
		decodes[i] = labels[c]
	}

	encoded, err := codec.Encode(codes, decodes)
	if err != nil {
		cfg.Logf("warning: cannot encode %s mapping: %v", parent.Name, err)
		return "", false
	}

	return encoded, true
}

// concatNormal concatenates normal-form fragments, keeping only key columns
// that survive in at least one fragment and aligning the rest with nulls.
func concatNormal(fr *frame.Frame, keys []string, parts []*frame.Frame) *frame.Frame {
	var present []string
	for _, k := range keys {
		for _, p := range parts {
			if p.HasColumn(k) {
				present = append(present, k)
				break
			}
		}
	}

	out := newNormalShell(fr, present)
	names := out.Names()
	for _, p := range parts {
		for i := 0; i < p.NumRows(); i++ {
			row := make([]frame.Value, len(names))
			for j, n := range names {
				if p.HasColumn(n) {
					row[j] = p.At(n, i)
				} else {
					row[j] = frame.NA()
				}
			}
			_ = out.AppendRow(row)
		}
	}

	return out
}
