package compress

// ZstdCodec compresses payloads with Zstandard. It gives the best ratio of
// the built-in codecs and is the default for archived normal-form tables.
//
// Two implementations exist behind build tags: a cgo binding (valyala/gozstd)
// when cgo is available, and a pure-Go fallback (klauspost/compress/zstd)
// otherwise. Both produce standard zstd frames and can read each other's
// output.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a Zstandard codec.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}
