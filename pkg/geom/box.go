// Package geom implements the geometric data model shared by both sides of a
// coupling run: axis-aligned bounding boxes, one per rank, and the overlap
// predicate used to decide which remote ranks a local rank must talk to.
package geom

import "math"

// Interval is a closed interval [Lo, Hi]. A sentinel interval uses
// Lo > Hi (either the "empty" sentinel Lo=+Inf/Hi=-Inf, or the protocol's
// Lo=Hi=-1 placeholder) and never overlaps a valid interval.
type Interval struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// BoundingBox is an ordered sequence of D closed intervals, one per spatial
// dimension. D is a runtime value, not a compile-time constant: a coupling
// run may couple 2D or 3D meshes and the core must not bake in either.
type BoundingBox []Interval

// Dimensions reports D for this box.
func (b BoundingBox) Dimensions() int { return len(b) }

// EmptySentinel returns the "no data yet" box used before any mesh bounds
// have been unioned in: Lo=+Inf, Hi=-Inf per dimension, so that unioning any
// real box into it always wins.
func EmptySentinel(dimensions int) BoundingBox {
	b := make(BoundingBox, dimensions)
	for d := range b {
		b[d] = Interval{Lo: math.Inf(1), Hi: math.Inf(-1)}
	}
	return b
}

// PlaceholderSentinel returns the Lo=Hi=-1 placeholder box used to pre-size
// a BoundingBoxMap before the real values arrive over the wire.
func PlaceholderSentinel(dimensions int) BoundingBox {
	b := make(BoundingBox, dimensions)
	for d := range b {
		b[d] = Interval{Lo: -1, Hi: -1}
	}
	return b
}

// Union returns a new box that is the componentwise min-of-lows,
// max-of-highs of b and other. Both boxes must share the same
// dimensionality; Union panics otherwise, since this is always a local,
// programmer-controlled invariant (the two operands originate from mesh
// objects belonging to the same coupling core instance).
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	if len(b) != len(other) {
		panic("geom: Union of boxes with mismatched dimensions")
	}
	out := make(BoundingBox, len(b))
	for d := range b {
		out[d] = Interval{
			Lo: math.Min(b[d].Lo, other[d].Lo),
			Hi: math.Max(b[d].Hi, other[d].Hi),
		}
	}
	return out
}

// Dilate returns a new box symmetrically expanded by factor*maxSide in every
// dimension, where maxSide is the longest side of b (floored at 1e-6 so that
// a degenerate point or line box still dilates by a non-zero amount).
// An empty interval (Lo > Hi, as in the empty sentinel) becomes
// [-1e-6, +1e-6] whatever the factor, so a box that nothing was unioned
// into ends up as a tiny box around the origin.
// factor must be >= 0; Dilate panics otherwise, since a negative safety
// factor is always a programmer error at the call site.
func (b BoundingBox) Dilate(factor float64) BoundingBox {
	if factor < 0 {
		panic("geom: Dilate requires a non-negative safety factor")
	}

	maxSide := 1e-6
	for _, iv := range b {
		if side := iv.Hi - iv.Lo; side > maxSide {
			maxSide = side
		}
	}

	out := make(BoundingBox, len(b))
	delta := factor * maxSide
	for d, iv := range b {
		if iv.Lo > iv.Hi {
			out[d] = Interval{Lo: -1e-6, Hi: 1e-6}
			continue
		}
		out[d] = Interval{Lo: iv.Lo - delta, Hi: iv.Hi + delta}
	}
	return out
}

// Clone returns an independent copy of b.
func (b BoundingBox) Clone() BoundingBox {
	out := make(BoundingBox, len(b))
	copy(out, b)
	return out
}
