// Package hash computes xxHash64 signatures for value tuples.
//
// Signatures are used as map keys for duplicate detection, key-uniqueness
// tests and join indexes. Parts are length-prefixed before hashing so that
// ("ab","c") and ("a","bc") produce distinct signatures.
package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Tuple computes the xxHash64 signature of an ordered sequence of strings.
func Tuple(parts []string) uint64 {
	var d xxhash.Digest
	d.Reset()

	var prefix [4]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint32(prefix[:], uint32(len(p))) //nolint:gosec
		_, _ = d.Write(prefix[:])
		_, _ = d.WriteString(p)
	}

	return d.Sum64()
}
