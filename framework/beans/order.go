package beans

import (
	"math"
	"sort"
)

// ── Ordering ──────────────────────────────────────────────────────────────────

// Rank bounds, mirroring the usual highest/lowest precedence constants.
const (
	OrderHighest = math.MinInt
	OrderLowest  = math.MaxInt
)

// Ordered gives a processor an explicit rank; lower runs first.
//
//	// Spring: org.springframework.core.Ordered
type Ordered interface {
	Order() int
}

// PriorityOrdered is a marker that lifts an Ordered processor into the
// highest tier: priority-ordered entries always sort before plain ordered
// ones, which sort before unordered ones.
//
//	// Spring: org.springframework.core.PriorityOrdered
type PriorityOrdered interface {
	Ordered
	Priority()
}

const (
	classPriority = iota
	classOrdered
	classUnordered
)

// classify probes a value for its ordering tier and rank.
func classify(v any) (class, rank int) {
	switch p := v.(type) {
	case PriorityOrdered:
		return classPriority, p.Order()
	case Ordered:
		return classOrdered, p.Order()
	default:
		return classUnordered, 0
	}
}

// SortByOrder stable-sorts items into invocation order: priority-ordered
// first, then ordered, then unordered; within the first two tiers ascending
// by rank. Ties keep their relative discovery order. The probe extracts the
// value carrying the ordering metadata from each element.
func SortByOrder[T any](items []T, probe func(T) any) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, ri := classify(probe(items[i]))
		cj, rj := classify(probe(items[j]))
		if ci != cj {
			return ci < cj
		}
		if ci == classUnordered {
			return false
		}
		return ri < rj
	})
}
