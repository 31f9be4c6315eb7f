package decision

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand/v2"
)

// vectorSeed derives a deterministic 32-bit seed from a query vector by
// hashing its little-endian float64 bytes with FNV-1a. The extra parts
// distinguish per-target draws from the shared jitter seed.
func vectorSeed(vector []float64, parts ...string) uint32 {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range vector {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	for _, part := range parts {
		h.Write([]byte(part))
	}
	return uint32(h.Sum64() % (1 << 32))
}

// newRand returns the deterministic generator for a seed. The generator is
// versioned: changing it changes every compiled value, so it never does.
func newRand(seed uint32) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}
