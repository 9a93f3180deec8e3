// Package util holds small generic helpers shared across the pipeline,
// the same role the teacher's util package plays for its indexer.
package util

import (
	"golang.org/x/exp/constraints"
)

// Min returns the smaller of two ordered values.
func Min[A constraints.Ordered](a, b A) A {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two ordered values.
func Max[A constraints.Ordered](a, b A) A {
	if a > b {
		return a
	}
	return b
}

// Clamp constrains v to [lo, hi].
func Clamp[A constraints.Ordered](v, lo, hi A) A {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SortedKeys returns a map's keys in ascending order; the GPIF builder uses
// it to emit a chord's per-string notes in a deterministic order.
func SortedKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// Sum adds up a slice of integers into a uint64 accumulator.
func Sum[A constraints.Integer](nums []A) uint64 {
	var total uint64
	for _, v := range nums {
		total += uint64(v)
	}
	return total
}
