// Package dice provides the randomness abstraction used by the encounter
// generator and the combat engine, plus the weighted and chance helpers built
// on top of it.
package dice

// Source is the randomness provider for every roll in the engine.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0, 1).
	Float64() float64
}

// Chance reports whether an event with probability p fires.
// p <= 0 never fires and p >= 1 always fires; neither consumes a roll.
//
// Precondition: src must be non-nil.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// Range returns a uniformly distributed int in [min, max].
// When max <= min, min is returned without consuming a roll.
//
// Precondition: src must be non-nil.
func Range(src Source, min, max int) int {
	if max <= min {
		return min
	}
	return min + src.Intn(max-min+1)
}

// Pick returns a uniformly chosen element of items.
//
// Precondition: len(items) > 0; src must be non-nil.
func Pick[T any](src Source, items []T) T {
	if len(items) == 1 {
		return items[0]
	}
	return items[src.Intn(len(items))]
}

// Weighted pairs a value with its selection weight.
type Weighted[T any] struct {
	Value  T
	Weight float64
}

// PickWeighted performs cumulative-weight selection: it draws
// x = src.Float64() × Σweight and subtracts each entry's weight in order until
// x <= 0. Ties resolve to the first entry whose cumulative weight crosses the
// roll. Entries with non-positive weight are never chosen.
//
// Postcondition: Returns (value, true) on success, or (zero, false) when no
// entry has a positive weight.
func PickWeighted[T any](src Source, entries []Weighted[T]) (T, bool) {
	var zero T
	total := 0.0
	for _, e := range entries {
		if e.Weight > 0 {
			total += e.Weight
		}
	}
	if total <= 0 {
		return zero, false
	}

	x := src.Float64() * total
	var last T
	for _, e := range entries {
		if e.Weight <= 0 {
			continue
		}
		last = e.Value
		x -= e.Weight
		if x <= 0 {
			return e.Value, true
		}
	}
	// Float rounding can leave a sliver above zero; the final candidate owns it.
	return last, true
}
