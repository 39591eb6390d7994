package util

import (
	"math"
	"math/rand"
	crand "crypto/rand"
	"encoding/binary"
	"halftwo/mangos/crock32"
)

var MyRand *rand.Rand

func init() {
	MyRand = NewRand()
}

func RandomBytes(size int) []byte {
	bz := make([]byte, size)
	if _, err := crand.Read(bz); err != nil {
		MyRand.Read(bz)
	}
	return bz
}

func GenerateRandomId(size int) string {
	if size <= 0 {
		return ""
	}

	ilen := crock32.DecodeLen(size)
	if ilen < 4 {
		ilen = 4
	}

	in := RandomBytes(ilen)
	u32 := binary.BigEndian.Uint32(in)

	out := make([]byte, size)
	crock32.EncodeLower(out, in)
	out[0] = crock32.AlphabetLower[10 + (u32 / (math.MaxUint32 / 22 + 1))]
	return string(out)
}

func RandomInt64() int64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		panic(err)
	}
	buf[0] &= 0x7f
	return int64(binary.BigEndian.Uint64(buf[:]))
}

func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(RandomInt64()))
}

