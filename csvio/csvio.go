// Package csvio imports and exports frames as delimited text files.
//
// The first record is the header; every column is read as text, with empty
// cells and the literal "NA" treated as null. Columns whose non-null cells
// all parse as numbers are marked frame.KindNumeric. Files named with a
// .zst, .s2 or .lz4 extension are compressed as a whole payload through the
// compress package: serialize then compress on the way out, decompress then
// parse on the way in.
package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cran/fold/compress"
	"github.com/cran/fold/frame"
	"github.com/cran/fold/internal/options"
)

// Missing is the text form of a null cell.
const Missing = "NA"

// Config carries the import/export knobs.
type Config struct {
	// Comma is the field delimiter (default ',').
	Comma rune

	// Compression wraps the whole serialized payload (default none).
	Compression compress.Type
}

func newConfig() *Config {
	return &Config{Comma: ',', Compression: compress.TypeNone}
}

// Option configures a read or write.
type Option = options.Option[*Config]

// WithComma overrides the field delimiter.
func WithComma(r rune) Option {
	return options.New(func(c *Config) error {
		if r == 0 {
			return fmt.Errorf("delimiter must not be zero")
		}
		c.Comma = r

		return nil
	})
}

// WithCompression wraps the payload with the given codec.
func WithCompression(t compress.Type) Option {
	return options.New(func(c *Config) error {
		if _, err := compress.GetCodec(t); err != nil {
			return err
		}
		c.Compression = t

		return nil
	})
}

// Read parses a delimited payload, with a header row, into a frame.
func Read(r io.Reader, opts ...Option) (*frame.Frame, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	comp, err := compress.GetCodec(cfg.Compression)
	if err != nil {
		return nil, err
	}
	raw, err = comp.Decompress(raw)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = cfg.Comma
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited payload: %w", err)
	}
	if len(records) == 0 {
		return frame.New(), nil
	}

	out := frame.New()
	cols := make([]*frame.Column, len(records[0]))
	for i, name := range records[0] {
		cols[i] = frame.NewColumn(name, frame.KindString)
		if err := out.AddColumn(cols[i]); err != nil {
			return nil, err
		}
	}
	for _, rec := range records[1:] {
		for i, cell := range rec {
			if cell == "" || cell == Missing {
				cols[i].Values = append(cols[i].Values, frame.NA())
			} else {
				cols[i].Values = append(cols[i].Values, frame.String(cell))
			}
		}
	}
	for _, c := range cols {
		if isNumeric(c) {
			c.Kind = frame.KindNumeric
		}
	}

	return out, nil
}

// isNumeric reports whether every non-null cell parses as a number. All-null
// columns stay text: there is nothing to base the kind on.
func isNumeric(c *frame.Column) bool {
	any := false
	for _, v := range c.Values {
		if v.Null {
			continue
		}
		if _, err := strconv.ParseFloat(v.Str, 64); err != nil {
			return false
		}
		any = true
	}

	return any
}

// ReadFile reads a delimited file, inferring compression from the file
// extension unless overridden by an option.
func ReadFile(path string, opts ...Option) (*frame.Frame, error) {
	if t, ok := compress.TypeForPath(path); ok {
		opts = append([]Option{WithCompression(t)}, opts...)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f, opts...)
}

// Write serializes a frame as delimited text with a header row.
func Write(w io.Writer, fr *frame.Frame, opts ...Option) error {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return err
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	cw.Comma = cfg.Comma

	if err := cw.Write(fr.Names()); err != nil {
		return err
	}
	rec := make([]string, fr.NumCols())
	for i := 0; i < fr.NumRows(); i++ {
		for j, v := range fr.Row(i) {
			if v.Null {
				rec[j] = Missing
			} else {
				rec[j] = v.Str
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	comp, err := compress.GetCodec(cfg.Compression)
	if err != nil {
		return err
	}
	payload, err := comp.Compress(buf.Bytes())
	if err != nil {
		return err
	}

	_, err = w.Write(payload)

	return err
}

// WriteFile writes a delimited file, inferring compression from the file
// extension unless overridden by an option.
func WriteFile(path string, fr *frame.Frame, opts ...Option) error {
	if t, ok := compress.TypeForPath(path); ok {
		opts = append([]Option{WithCompression(t)}, opts...)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Write(f, fr, opts...); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
