// Package interpolate looks values up in piecewise-linear tables.
package interpolate

import "golang.org/x/exp/constraints"

// Point is one breakpoint of a table: the value the table takes at Position.
type Point[P, V constraints.Unsigned] struct {
	Position P
	Value    V
}

// Table is a set of breakpoints.  Breakpoints do not need to be sorted; two breakpoints with the
// same position make the result undefined.
type Table[P, V constraints.Unsigned] struct {
	points []Point[P, V]
}

// New returns a Table over a copy of the provided breakpoints.
func New[P, V constraints.Unsigned](points ...Point[P, V]) *Table[P, V] {
	return &Table[P, V]{points: append([]Point[P, V](nil), points...)}
}

// bounds returns the indices of the breakpoint with the greatest position <= position and the one
// with the least position >= position.  ok is false if either side has no breakpoint.
func (t *Table[P, V]) bounds(position P) (lower, upper int, ok bool) {
	lower, upper = -1, -1
	for i, p := range t.points {
		if p.Position <= position && (lower < 0 || p.Position > t.points[lower].Position) {
			lower = i
		}
		if p.Position >= position && (upper < 0 || p.Position < t.points[upper].Position) {
			upper = i
		}
	}
	return lower, upper, lower >= 0 && upper >= 0
}

// Interpolate returns the value of the table at position, blending linearly between the two
// breakpoints around it and truncating toward zero.  ok is false when position is outside the
// range the breakpoints cover; the table never extrapolates.
func (t *Table[P, V]) Interpolate(position P) (value V, ok bool) {
	li, ui, ok := t.bounds(position)
	if !ok {
		return 0, false
	}
	lo, hi := t.points[li], t.points[ui]
	if lo.Position == hi.Position {
		return lo.Value, true
	}
	// Multiply before dividing so that breakpoints on round numbers give exact results.
	delta := (float64(hi.Value) - float64(lo.Value)) * float64(position-lo.Position) / float64(hi.Position-lo.Position)
	return V(float64(lo.Value) + delta), true
}
