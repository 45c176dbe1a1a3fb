package mathx

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

const (
	prngA = 16807
	prngM = 0x7fffffff
)

// Rand is a Park-Miller minimal standard generator. It is deterministic for a
// given seed so the effect simulations can be replayed in tests.
type Rand struct {
	state int
	div   float64
}

// NewRand creates a generator seeded with seed. Seeds are folded into the
// valid state range [1, 2^31-2].
func NewRand(seed int64) *Rand {
	s := int(uint64(seed) % (prngM - 1))
	if s <= 0 {
		s = 1
	}
	return &Rand{
		state: s,
		div:   1.0 / prngM,
	}
}

// NewEntropyRand seeds a generator from the operating system entropy source,
// falling back to the wall clock when it is unavailable.
func NewEntropyRand() *Rand {
	return NewRand(EntropySeed())
}

// EntropySeed returns a non-deterministic seed.
func EntropySeed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1)
}

// nextLongRand generates a new random number based on the provided seed.
func nextLongRand(seed int) int {
	lo := prngA * (seed & 0xffff)
	hi := prngA * (seed >> 16)
	lo += (hi & 0x7fff) << 16

	if lo > prngM {
		lo &= prngM
		lo++
	}
	lo += hi >> 15
	if lo > prngM {
		lo &= prngM
		lo++
	}
	return lo
}

// Float64 returns a number in [0, 1).
func (r *Rand) Float64() float64 {
	r.state = nextLongRand(r.state)
	f := float64(r.state-1) * r.div
	if f >= 1 {
		return 0
	}
	return f
}

// Range returns a number in [lo, hi).
func (r *Rand) Range(lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// Intn returns an integer in [0, n). It panics if n <= 0.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		panic("mathx: invalid argument to Intn")
	}
	return int(r.Float64() * float64(n))
}

// Chance reports true with probability p.
func (r *Rand) Chance(p float64) bool {
	return r.Float64() < p
}

// Sign returns 1 or -1 with equal probability.
func (r *Rand) Sign() int {
	if r.Float64() > 0.5 {
		return 1
	}
	return -1
}

// Int63 derives a new seed from the stream, used to seed child generators.
func (r *Rand) Int63() int64 {
	r.state = nextLongRand(r.state)
	hi := int64(r.state)
	r.state = nextLongRand(r.state)
	return hi<<31 | int64(r.state)
}
