package utils

import (
	"sync/atomic"
	"time"

	"golang.org/x/exp/rand"
)

func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

func Contains[T comparable](slice []T, item T) bool {
	return FindIndex(slice, item) >= 0
}

// Seeder hands out independent random generators derived from one seed, so a
// searcher can be shared by concurrent games while staying reproducible when
// used from a single goroutine.
type Seeder struct {
	seed  uint64
	calls atomic.Uint64
}

// NewSeeder returns a seeder for seed. A zero seed is replaced by the clock.
func NewSeeder(seed uint64) *Seeder {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Seeder{seed: seed}
}

// Rand returns a new generator. Successive calls yield different streams,
// and so do seeders built from nearby seeds.
func (s *Seeder) Rand() *rand.Rand {
	return rand.New(rand.NewSource(streamSeed(s.seed, s.calls.Add(1))))
}

const golden = 0x9e3779b97f4a7c15

// streamSeed hashes seed before combining it with the call counter, so seed+1
// does not replay the stream of seed's second call.
func streamSeed(seed, call uint64) uint64 {
	return splitmix64(splitmix64(seed) ^ call*golden)
}

func splitmix64(x uint64) uint64 {
	x += golden
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
