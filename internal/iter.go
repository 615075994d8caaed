package internal

import (
	"iter"
)

// Range yields every value of an integer kind in [0, n).
func Range[T ~int | ~uint8 | ~uint16](n T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := T(0); v < n; v++ {
			if !yield(v) {
				return
			}
		}
	}
}

// Concat2 chains several key/value iterators into one.
func Concat2[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for k, v := range seq {
				if !yield(k, v) {
					return // Stop if the consumer stops
				}
			}
		}
	}
}
