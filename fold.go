// Package fold provides a reversible, self-describing transformation between
// wide tabular data and a folded normal form.
//
// A wide frame has one column per item (data values, metadata values and
// grouping keys side by side). The normal form is a long table with three
// reserved columns, VARIABLE, META and VALUE, plus the key columns: data
// values become (VARIABLE, VALUE) rows, metadata becomes (VARIABLE, META,
// VALUE) rows describing another item, and a compact code/label mapping can
// replace a whole per-key metadata column with a single encoded string.
//
// # Basic Usage
//
// Folding a wide frame and recovering it:
//
//	import "github.com/cran/fold"
//
//	wide, _ := fold.ReadCSV("study.csv")
//	folded, _ := fold.Fold(wide,
//	    fold.WithKeys("ID", "TIME"),
//	    fold.WithMeta("DV~BLQ", "BLQ~LLOQ"),
//	)
//	back, _ := folded.Unfold()
//
// fold then unfold reproduces the informative content of the input, modulo
// explicit simplification, column order and categorical representation.
//
// # Package Structure
//
// This package wraps the frame, folded, codec and csvio packages for the
// common cases. Use those packages directly for fine-grained control.
package fold

import (
	"io"

	"github.com/cran/fold/csvio"
	"github.com/cran/fold/folded"
	"github.com/cran/fold/frame"
)

// Re-exported option constructors for the folded package, so common calls
// need only this package.
var (
	WithKeys      = folded.WithKeys
	WithMeta      = folded.WithMeta
	WithRelations = folded.WithRelations
	WithSeparator = folded.WithSeparator
	WithTolerance = folded.WithTolerance
	WithSimplify  = folded.WithSimplify
	WithSort      = folded.WithSort
	WithVariables = folded.WithVariables
	WithLogf      = folded.WithLogf
)

// Fold converts a wide frame into normal form. See folded.Fold.
func Fold(fr *frame.Frame, opts ...folded.Option) (*folded.Folded, error) {
	return folded.Fold(fr, opts...)
}

// AsFolded coerces a frame that already has VARIABLE, META and VALUE
// columns into a validated normal form. See folded.New.
func AsFolded(fr *frame.Frame, opts ...folded.Option) (*folded.Folded, error) {
	return folded.New(fr, opts...)
}

// Unfold reconstructs a wide frame from normal form. See folded.Unfold.
func Unfold(f *folded.Folded, opts ...folded.Option) (*frame.Frame, error) {
	return f.Unfold(opts...)
}

// Distill reconstructs the wide fragment for a single variable and its
// metadata tree. See folded.Distill.
func Distill(f *folded.Folded, mission string, opts ...folded.Option) (*frame.Frame, error) {
	return f.Distill(mission, opts...)
}

// Simplify minimizes the key columns needed per variable. See
// folded.Simplify.
func Simplify(f *folded.Folded) *folded.Folded {
	return f.Simplify()
}

// ReadCSV reads a delimited file into a frame, decompressing by file
// extension. See csvio.ReadFile.
func ReadCSV(path string, opts ...csvio.Option) (*frame.Frame, error) {
	return csvio.ReadFile(path, opts...)
}

// WriteCSV writes a frame to a delimited file, compressing by file
// extension. See csvio.WriteFile.
func WriteCSV(path string, fr *frame.Frame, opts ...csvio.Option) error {
	return csvio.WriteFile(path, fr, opts...)
}

// Read parses delimited text from a reader. See csvio.Read.
func Read(r io.Reader, opts ...csvio.Option) (*frame.Frame, error) {
	return csvio.Read(r, opts...)
}

// Write serializes a frame to a writer. See csvio.Write.
func Write(w io.Writer, fr *frame.Frame, opts ...csvio.Option) error {
	return csvio.Write(w, fr, opts...)
}
