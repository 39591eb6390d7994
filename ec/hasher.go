package ec

import (
	"crypto/sha512"
	"hash"
	"sync"
)

// HQuSize and HSqSize are the digest lengths produced by H_qu and
// H_sq. Both are truncations of the same underlying SHA-512 primitive;
// only the truncation length differs, and that difference is what the
// block/header version gate selects between (spec.md §4.2).
const (
	HQuSize = 32
	HSqSize = 48
)

var _sha512Pool = sync.Pool{
	New: func() interface{} {
		return sha512.New()
	},
}

func sum512(msg []byte) [sha512.Size]byte {
	hasher := _sha512Pool.Get().(hash.Hash)
	defer _sha512Pool.Put(hasher)

	hasher.Reset()
	hasher.Write(msg)

	var out [sha512.Size]byte
	hasher.Sum(out[:0])
	return out
}

// HQu is the "quick" truncated SHA-512 variant, used for block and
// header checksums when version <= 2.
func HQu(msg []byte) []byte {
	full := sum512(msg)
	out := make([]byte, HQuSize)
	copy(out, full[:HQuSize])
	return out
}

// HSq is the truncated SHA-512 variant used for block and header
// checksums when version >= 3, and unconditionally for superblock
// segment transaction/signer hashing inside Block.calculateChecksum.
func HSq(msg []byte) []byte {
	full := sum512(msg)
	out := make([]byte, HSqSize)
	copy(out, full[:HSqSize])
	return out
}
