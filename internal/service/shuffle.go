package service

import "math/rand"

// Shuffle permutes items in place using Fisher-Yates. Every permutation of
// the input is equally likely given a uniform source.
func Shuffle[T any](r *rand.Rand, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
