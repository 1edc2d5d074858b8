package main

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource produces uniform values in [0, 1).
type RandomSource interface {
	Float64() float64
}

// cryptoRNG is the default source, backed by crypto/rand.
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11 // 53 bits
	return float64(u) / (1 << 53)
}

func DefaultRNG() RandomSource { return cryptoRNG{} }

// seededRNG is a reproducible source for tests and simulations.
type seededRNG struct{ r *rand.Rand }

func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }

// weightedIndex draws one entry from a weighted pool. It walks the pool in
// order accumulating weights and returns the first index where the drawn
// value falls within the running sum. Weights are not required to sum to 1;
// when the draw lands past the covered range the final entry wins. That
// fallback is load-bearing for hand-tuned tables whose weights sum below 1.
func weightedIndex(weights []float64, rng RandomSource) int {
	if len(weights) == 0 {
		panic("weightedIndex: empty pool")
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	r := rng.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return i
		}
	}
	return len(weights) - 1
}
