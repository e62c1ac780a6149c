package geom

import "fmt"

// Overlapping tests two axis-aligned bounding boxes for intersection (C2).
// For each dimension d, a and b are declared non-overlapping in that
// dimension iff both endpoints of one lie strictly below the lower endpoint
// of the other:
//
//	(a.Lo < b.Lo && a.Hi < b.Lo) || (b.Lo < a.Lo && b.Hi < a.Lo)
//
// If this holds for any dimension the boxes do not overlap; otherwise they
// do. The asymmetric comparison (both endpoints of one against only the
// lower endpoint of the other) is deliberate: it makes a sentinel box, where
// Hi < Lo, never overlap a valid box in that dimension. Equality at a
// boundary counts as overlap, since intervals are closed. The predicate is
// symmetric in its two arguments.
//
// Overlapping returns an error, rather than panicking, when a and b carry a
// different number of dimensions: unlike the safetyFactor precondition in
// Dilate, a dimension mismatch can originate from a corrupted wire payload
// rather than purely local programmer error, so callers on the receiving
// side of a transport need an ordinary error to propagate.
func Overlapping(a, b BoundingBox) (bool, error) {
	if len(a) != len(b) {
		return false, fmt.Errorf("geom: dimension mismatch: %d vs %d", len(a), len(b))
	}

	for d := range a {
		if (a[d].Lo < b[d].Lo && a[d].Hi < b[d].Lo) ||
			(b[d].Lo < a[d].Lo && b[d].Hi < a[d].Lo) {
			return false, nil
		}
	}
	return true, nil
}
