package partition

import (
	"github.com/rbbox/coupling/pkg/geom"
	"github.com/rbbox/coupling/pkg/mapping"
)

// LocalBoundingBox computes C1 in isolation: it initializes the box to the
// empty sentinel, unions in the bounding boxes of whichever mappings are
// attached, and dilates the result by cfg.SafetyFactor * maxSide.
//
// If neither mapping is attached, the box stays the empty sentinel through
// the union step, and dilation then yields [-1e-6, +1e-6] per dimension
// from the 1e-6 floor alone. This behavior is kept rather than rejecting
// the no-mapping case outright, since a mesh with no mappings attached yet
// is a legitimate transient state during coupling setup.
//
// This core never sends its own ranks' boxes anywhere: slaves report only
// their overlap lists and the master sends only the feedback map (see C3); a peer
// participant's own box-gathering-and-sending step is the mirror side
// spec.md and SPEC_FULL.md both treat as an external collaborator. This
// function is exported so a driver or test harness that needs to stand in
// for that remote side can compute exactly what it would report of
// itself, without duplicating C1's formula.
func LocalBoundingBox(cfg Config, fromMapping, toMapping mapping.Mapping) geom.BoundingBox {
	merged := geom.EmptySentinel(cfg.Dimensions)

	if fromMapping != nil {
		if m, ok := fromMapping.OutputMesh(); ok {
			merged = merged.Union(m.BoundingBox())
		}
	}
	if toMapping != nil {
		if m, ok := toMapping.InputMesh(); ok {
			merged = merged.Union(m.BoundingBox())
		}
	}

	return merged.Dilate(cfg.SafetyFactor)
}

func (r *ReceivedBoundingBox) prepareBoundingBox() {
	r.bb = LocalBoundingBox(r.cfg, r.fromMapping, r.toMapping)
}
