// Package cryptorand adapts crypto/rand into a math/rand.Source, for dealing
// cards and picking starters that players can't predict.
package cryptorand

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"
)

// New returns a *math/rand.Rand backed by crypto/rand.
func New() *mathrand.Rand {
	return mathrand.New(NewSource())
}

func NewSource() Source {
	return Source{}
}

// Source reads every value from crypto/rand. Seed is a no-op.
type Source struct{}

func (s Source) Int63() int64 {
	return int64(s.Uint64() &^ (1 << 63))
}

func (Source) Uint64() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(buf[:])
}

func (Source) Seed(int64) {}
