// Package compress provides whole-payload compression for serialized tables.
//
// The csvio package serializes a frame to delimited text in memory and then
// runs the payload through one of these codecs before it reaches disk (and
// the reverse on the way back in). Delimited text with repeated key values is
// highly redundant, so even the fast codecs pay for themselves quickly.
package compress

import (
	"fmt"
	"strings"

	"github.com/cran/fold/errs"
)

// Type selects a compression algorithm.
type Type uint8

const (
	TypeNone Type = 0x1 // TypeNone stores the payload as-is.
	TypeZstd Type = 0x2 // TypeZstd is Zstandard: best ratio.
	TypeS2   Type = 0x3 // TypeS2 is S2 (Snappy-compatible): fastest.
	TypeLZ4  Type = 0x4 // TypeLZ4 is LZ4 block compression.
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "None"
	case TypeZstd:
		return "Zstd"
	case TypeS2:
		return "S2"
	case TypeLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Ext returns the conventional file-name extension for the type, with the
// leading dot; TypeNone has no extension.
func (t Type) Ext() string {
	switch t {
	case TypeZstd:
		return ".zst"
	case TypeS2:
		return ".s2"
	case TypeLZ4:
		return ".lz4"
	default:
		return ""
	}
}

// TypeForPath infers the compression type from a file name's extension.
// Unrecognized extensions mean TypeNone; the second return reports whether a
// compressed extension was matched.
func TypeForPath(path string) (Type, bool) {
	switch {
	case strings.HasSuffix(path, ".zst"):
		return TypeZstd, true
	case strings.HasSuffix(path, ".s2"):
		return TypeS2, true
	case strings.HasSuffix(path, ".lz4"):
		return TypeLZ4, true
	default:
		return TypeNone, false
	}
}

// Compressor compresses a complete serialized payload.
//
// Memory contract for both directions: the returned slice is newly allocated
// and owned by the caller (except for the no-op codec, which passes the input
// through), and the input slice is never modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor recovers the original payload. It validates the input format
// and returns an error for corrupted data or a mismatched algorithm.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions of one algorithm.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[Type]Codec{
	TypeNone: NewNoOpCodec(),
	TypeZstd: NewZstdCodec(),
	TypeS2:   NewS2Codec(),
	TypeLZ4:  NewLZ4Codec(),
}

// GetCodec retrieves the built-in Codec for the given type.
func GetCodec(t Type) (Codec, error) {
	if c, ok := builtinCodecs[t]; ok {
		return c, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnknownCompression, t)
}
