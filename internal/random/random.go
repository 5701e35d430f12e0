/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package random provides the seedable randomness shared by role
// assignment and word selection.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"time"
)

// Source is the subset of *rand.Rand the games need.
type Source interface {
	// IntN returns a uniform integer in [0, n). It panics if n <= 0.
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

var _ Source = (*rand.Rand)(nil)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// New returns a deterministic generator for seed.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// NewSeeded returns a generator for seed, or a freshly seeded one when
// seed is zero.
func NewSeeded(seed int64) *rand.Rand {
	if seed != 0 {
		return New(seed)
	}

	seed, err := NewSeed()
	if err != nil {
		seed = time.Now().UnixNano()
	}

	return New(seed)
}
