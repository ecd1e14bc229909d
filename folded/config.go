package folded

import (
	"fmt"
	"strings"

	"github.com/cran/fold/internal/options"
)

// DefaultTolerance is the maximum number of distinct codes an inferred
// encoding attempt will consider before falling back to a per-key join.
const DefaultTolerance = 10

// DefaultSeparator joins variable and attribute names in the metadata
// column-naming convention ("DV_BLQ" names attribute BLQ of variable DV).
const DefaultSeparator = "_"

// Relation declares that one wide-table column holds a metadata attribute of
// a variable: Column's values describe Variable under the name Attribute.
//
// Column defaults to Attribute; it differs when the relation was inferred
// from the naming convention, where the source column carries the compound
// name ("DV_BLQ") but the stored attribute is the bare name ("BLQ").
type Relation struct {
	Variable  string
	Attribute string
	Column    string
}

// Rel builds a Relation whose source column is named after the attribute,
// matching the explicit "DV~BLQ" formula style.
func Rel(variable, attribute string) Relation {
	return Relation{Variable: variable, Attribute: attribute, Column: attribute}
}

// ParseRelation parses the "VARIABLE~ATTRIBUTE" formula form.
func ParseRelation(s string) (Relation, error) {
	parts := strings.Split(s, "~")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Relation{}, fmt.Errorf("invalid metadata formula %q, want VARIABLE~ATTRIBUTE", s)
	}

	return Rel(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])), nil
}

// Config carries every knob the fold, distill and unfold operations consult.
// It is threaded explicitly through all calls; there is no global option
// state. Construct it through Options; the zero value is not valid.
type Config struct {
	// Keys names the key columns of a wide table, in significance order.
	// Empty means: take the frame's groups metadata, else fold ungrouped.
	Keys []string

	// Relations declares the metadata columns of a wide table. Empty means
	// the relations are inferred from the separator naming convention.
	Relations []Relation

	// Separator is the metadata naming separator (default "_").
	Separator string

	// Tolerance caps the distinct-code count for encoding compaction
	// (default DefaultTolerance).
	Tolerance int

	// Simplify enables key-column minimization per variable (default true).
	Simplify bool

	// Sort enables the deterministic sort of results (default true).
	Sort bool

	// Variables restricts Unfold to a subset of top-level variables.
	// Empty means all variables that carry data rows.
	Variables []string

	// Logf receives informational messages and warnings. Data-quality
	// issues are recovered locally and reported here, never as errors.
	// The default discards them.
	Logf func(format string, args ...any)
}

func newConfig() *Config {
	return &Config{
		Separator: DefaultSeparator,
		Tolerance: DefaultTolerance,
		Simplify:  true,
		Sort:      true,
		Logf:      func(string, ...any) {},
	}
}

// Option configures a fold, distill or unfold operation.
type Option = options.Option[*Config]

// WithKeys names the key columns, left to right in significance order.
// The order matters: it is the simplification and sort priority.
func WithKeys(keys ...string) Option {
	return options.NoError(func(c *Config) {
		c.Keys = append([]string(nil), keys...)
	})
}

// WithRelations declares the metadata relations explicitly, disabling
// naming-convention inference.
func WithRelations(rels ...Relation) Option {
	return options.NoError(func(c *Config) {
		c.Relations = append([]Relation(nil), rels...)
	})
}

// WithMeta declares metadata relations in "VARIABLE~ATTRIBUTE" formula form.
func WithMeta(formulas ...string) Option {
	return options.New(func(c *Config) error {
		for _, f := range formulas {
			rel, err := ParseRelation(f)
			if err != nil {
				return err
			}
			c.Relations = append(c.Relations, rel)
		}

		return nil
	})
}

// WithSeparator overrides the metadata naming separator.
func WithSeparator(sep string) Option {
	return options.New(func(c *Config) error {
		if sep == "" {
			return fmt.Errorf("separator must not be empty")
		}
		c.Separator = sep

		return nil
	})
}

// WithTolerance overrides the encoding tolerance.
func WithTolerance(n int) Option {
	return options.New(func(c *Config) error {
		if n < 0 {
			return fmt.Errorf("tolerance must not be negative, got %d", n)
		}
		c.Tolerance = n

		return nil
	})
}

// WithSimplify toggles key-column minimization.
func WithSimplify(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.Simplify = enabled
	})
}

// WithSort toggles the deterministic sort of results.
func WithSort(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.Sort = enabled
	})
}

// WithVariables restricts Unfold to the named top-level variables.
func WithVariables(vars ...string) Option {
	return options.NoError(func(c *Config) {
		c.Variables = append([]string(nil), vars...)
	})
}

// WithLogf routes informational messages and warnings to fn.
func WithLogf(fn func(format string, args ...any)) Option {
	return options.New(func(c *Config) error {
		if fn == nil {
			return fmt.Errorf("log function must not be nil")
		}
		c.Logf = fn

		return nil
	})
}
