package crdt

import "fmt"

// Stamp orders writes. Clock comparisons decide first; Replica breaks ties
// lexicographically so every replica picks the same winner.
type Stamp struct {
	Clock   uint64 `json:"c"`
	Replica string `json:"r"`
}

// After reports whether s wins over other.
func (s Stamp) After(other Stamp) bool {
	if s.Clock != other.Clock {
		return s.Clock > other.Clock
	}
	return s.Replica > other.Replica
}

func (s Stamp) String() string {
	return fmt.Sprintf("%d@%s", s.Clock, s.Replica)
}

type register[T any] struct {
	value T
	stamp Stamp
}

// set writes v when stamp wins. It reports whether the register changed.
func (r *register[T]) set(v T, stamp Stamp) bool {
	if !stamp.After(r.stamp) {
		return false
	}
	r.value = v
	r.stamp = stamp
	return true
}
