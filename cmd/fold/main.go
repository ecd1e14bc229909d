// Command fold converts delimited files between wide form and the folded
// normal form. It is a thin wrapper over the fold package; compression is
// chosen by file extension (.zst, .s2, .lz4).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/cran/fold"
	"github.com/cran/fold/folded"
)

func main() {
	var (
		in       = flag.String("in", "", "input file (required)")
		out      = flag.String("out", "", "output file (required)")
		keys     = flag.String("keys", "", "comma-separated key columns, e.g. ID,TIME")
		meta     = flag.String("meta", "", "comma-separated metadata formulas, e.g. DV~BLQ,BLQ~LLOQ")
		vars     = flag.String("vars", "", "comma-separated variables to unfold (default all)")
		tol      = flag.Int("tol", folded.DefaultTolerance, "max distinct codes for encoding compaction")
		sep      = flag.String("sep", folded.DefaultSeparator, "metadata naming separator")
		simplify = flag.Bool("simplify", true, "minimize key columns per variable")
		sorted   = flag.Bool("sort", true, "sort the result deterministically")
		unfold   = flag.Bool("unfold", false, "treat input as normal form and unfold it")
		quiet    = flag.Bool("q", false, "suppress warnings")
	)
	flag.Parse()

	if *in == "" || *out == "" {
		flag.Usage()
		os.Exit(2)
	}

	logf := func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
	if *quiet {
		logf = func(string, ...any) {}
	}

	opts := []folded.Option{
		fold.WithTolerance(*tol),
		fold.WithSeparator(*sep),
		fold.WithSimplify(*simplify),
		fold.WithSort(*sorted),
		fold.WithLogf(logf),
	}
	if *keys != "" {
		opts = append(opts, fold.WithKeys(split(*keys)...))
	}
	if *meta != "" {
		opts = append(opts, fold.WithMeta(split(*meta)...))
	}
	if *vars != "" {
		opts = append(opts, fold.WithVariables(split(*vars)...))
	}

	if err := run(*in, *out, *unfold, opts); err != nil {
		log.Fatal(err)
	}
}

func run(in, out string, unfold bool, opts []folded.Option) error {
	fr, err := fold.ReadCSV(in)
	if err != nil {
		return err
	}

	if unfold {
		f, err := fold.AsFolded(fr, opts...)
		if err != nil {
			return err
		}
		wide, err := f.Unfold(opts...)
		if err != nil {
			return err
		}

		return fold.WriteCSV(out, wide)
	}

	f, err := fold.Fold(fr, opts...)
	if err != nil {
		return err
	}

	return fold.WriteCSV(out, f.Frame())
}

func split(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return parts
}
