package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Source produces uniformly distributed integers in [0, n).
type Source interface {
	IntN(n int) int
}

// NewSource returns a deterministic PCG source for seed.
func NewSource(seed int64) Source {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Scripted replays fixed die faces in order and wraps around. Faces are
// clamped into the die being rolled.
type Scripted struct {
	faces []int
	next  int
}

// NewScripted returns a Scripted source. It is meant for tests and replays.
func NewScripted(faces ...int) *Scripted {
	return &Scripted{faces: faces}
}

func (s *Scripted) IntN(n int) int {
	if len(s.faces) == 0 {
		return 0
	}
	f := s.faces[s.next%len(s.faces)]
	s.next++
	return min(max(f, 1), n) - 1
}
