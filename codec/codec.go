// Package codec serializes a finite code-to-label mapping as a single opaque
// string, and recovers it again.
//
// An encoding looks like
//
//	//0/below limit//1/observed//
//
// where the delimiter ("/" here) is the first candidate character that occurs
// in none of the codes or labels. The string is self-describing: the doubled
// leading delimiter both marks the value as an encoding and announces which
// delimiter was chosen, so IsEncoded needs no external state.
//
// The mapping must be injective on codes. The literal string "NA" inside
// codes or labels is the missing-value marker; consumers translate it to
// their own null representation.
package codec

import (
	"fmt"
	"strings"

	"github.com/cran/fold/errs"
)

// Missing is the literal missing-value marker inside codes and decodes.
const Missing = "NA"

// delimiters are tried in order; the first one absent from every code and
// label is used.
const delimiters = "/|:~!@#$%^&*+="

// Encode serializes parallel code and label sequences into one encoding
// string, invertible by Codes and Decodes.
//
// Returns an error if the sequences differ in length or are empty, if a code
// repeats, if any code or label is the empty string (an empty component
// followed by another pair collapses into a doubled delimiter mid-string, so
// the result would not parse back), or if no candidate delimiter is absent
// from every code and label.
func Encode(codes, decodes []string) (string, error) {
	if len(codes) != len(decodes) {
		return "", fmt.Errorf("%w: %d codes, %d decodes", errs.ErrMismatchedLengths, len(codes), len(decodes))
	}
	if len(codes) == 0 {
		return "", fmt.Errorf("%w: empty mapping", errs.ErrMismatchedLengths)
	}

	seen := make(map[string]bool, len(codes))
	for i, c := range codes {
		if seen[c] {
			return "", fmt.Errorf("%w: %q", errs.ErrDuplicateCode, c)
		}
		seen[c] = true
		if c == "" || decodes[i] == "" {
			return "", fmt.Errorf("%w: pair %d", errs.ErrEmptyComponent, i)
		}
	}

	d, ok := pickDelimiter(codes, decodes)
	if !ok {
		return "", errs.ErrNoDelimiter
	}

	var sb strings.Builder
	sb.WriteByte(d)
	sb.WriteByte(d)
	for i := range codes {
		sb.WriteString(codes[i])
		sb.WriteByte(d)
		sb.WriteString(decodes[i])
		sb.WriteByte(d)
		sb.WriteByte(d)
	}

	return sb.String(), nil
}

func pickDelimiter(codes, decodes []string) (byte, bool) {
	for i := 0; i < len(delimiters); i++ {
		d := delimiters[i]
		ok := true
		for _, s := range codes {
			if strings.IndexByte(s, d) >= 0 {
				ok = false
				break
			}
		}
		if ok {
			for _, s := range decodes {
				if strings.IndexByte(s, d) >= 0 {
					ok = false
					break
				}
			}
		}
		if ok {
			return d, true
		}
	}

	return 0, false
}

// IsEncoded reports whether s parses as an encoding string.
func IsEncoded(s string) bool {
	_, _, err := parse(s)
	return err == nil
}

// Codes returns the code sequence of an encoding, or nil if s is not one.
func Codes(s string) []string {
	codes, _, err := parse(s)
	if err != nil {
		return nil
	}

	return codes
}

// Decodes returns the label sequence of an encoding, positionally paired
// with Codes, or nil if s is not one.
func Decodes(s string) []string {
	_, decodes, err := parse(s)
	if err != nil {
		return nil
	}

	return decodes
}

// Decode looks up the label for a code. The second return is false when s is
// not an encoding or the code is absent.
func Decode(s, code string) (string, bool) {
	codes, decodes, err := parse(s)
	if err != nil {
		return "", false
	}
	for i, c := range codes {
		if c == code {
			return decodes[i], true
		}
	}

	return "", false
}

func parse(s string) (codes, decodes []string, err error) {
	// Minimum form is one pair of one-byte code and label: dd c d l dd.
	if len(s) < 7 || s[0] != s[1] {
		return nil, nil, errs.ErrNotEncoded
	}
	d := s[0]
	if !strings.ContainsRune(delimiters, rune(d)) {
		return nil, nil, errs.ErrNotEncoded
	}
	dd := string([]byte{d, d})
	if !strings.HasSuffix(s, dd) {
		return nil, nil, errs.ErrNotEncoded
	}

	interior := s[2 : len(s)-2]
	if interior == "" {
		return nil, nil, errs.ErrNotEncoded
	}
	for _, seg := range strings.Split(interior, dd) {
		parts := strings.Split(seg, string(d))
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, nil, errs.ErrNotEncoded
		}
		codes = append(codes, parts[0])
		decodes = append(decodes, parts[1])
	}

	return codes, decodes, nil
}
