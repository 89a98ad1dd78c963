package random

import (
	"crypto/rand"
	"math/big"
)

// Random picks among reply variants and can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a random int in [0, n), or 0 when n <= 0
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	result, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(result.Int64())
}

// Pick returns a random element of options, or the zero value when empty
func Pick[T any](r Random, options []T) T {
	var zero T
	if len(options) == 0 {
		return zero
	}
	i := r.Intn(len(options))
	if i < 0 || i >= len(options) {
		return zero
	}
	return options[i]
}
