// Package mesh defines the read-only mesh collaborator interface consumed
// by the partitioning core. The mesh data structure itself — connectivity,
// vertex ownership, motion — is out of scope here; only its bounding box
// accessor is used.
package mesh

import (
	"github.com/rbbox/coupling/internal/assert"
	"github.com/rbbox/coupling/pkg/geom"
)

// Mesh is the read-only view of a mesh the partitioning core needs.
type Mesh interface {
	// Dimensions reports the spatial dimension of this mesh (2 or 3).
	Dimensions() int
	// BoundingBox reports this mesh's current axis-aligned bounding box.
	BoundingBox() geom.BoundingBox
}

// Static is a minimal Mesh implementation that reports a fixed bounding
// box. It is the test double used throughout this module's tests and is
// also suitable for a coupling driver whose mesh bounds are computed once
// up front and do not move during connectivity discovery.
type Static struct {
	dimensions int
	box        geom.BoundingBox
}

// NewStatic returns a Mesh that always reports box, whose length must equal
// dimensions.
func NewStatic(dimensions int, box geom.BoundingBox) *Static {
	assert.That(box.Dimensions() == dimensions, "mesh: box has %d dimensions, declared %d", box.Dimensions(), dimensions)
	return &Static{dimensions: dimensions, box: box}
}

func (s *Static) Dimensions() int { return s.dimensions }

func (s *Static) BoundingBox() geom.BoundingBox { return s.box }
