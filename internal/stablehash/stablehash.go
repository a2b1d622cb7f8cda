// Package stablehash derives 64-bit values that never change across
// processes, platforms or Go releases. It is FNV-1a over an explicit byte
// encoding, unlike the runtime's randomised map and string hashing.
package stablehash

import (
	"encoding/binary"
	"hash/fnv"
)

// Sum64 hashes seed followed by each part.
//
// The seed is written as 8 little-endian bytes; every part is preceded by a
// 0x00 separator and written as its UTF-8 bytes, so ("ab", "c") and
// ("a", "bc") hash differently.
func Sum64(seed uint64, parts ...string) uint64 {
	h := fnv.New64a()

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	h.Write(buf[:])

	for _, part := range parts {
		h.Write([]byte{0})
		h.Write([]byte(part))
	}
	return h.Sum64()
}
