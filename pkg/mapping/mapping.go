// Package mapping defines the read-only mapping collaborator interface
// consumed by the partitioning core. Only the output/input mesh accessor
// is used; the concrete interpolation logic a mapping performs is out of
// scope here.
package mapping

import "github.com/rbbox/coupling/pkg/mesh"

// Mapping is the read-only view of a data mapping the partitioning core
// needs. A mapping may be attached in either direction: OutputMesh for a
// "from" mapping (data flows out of this participant's mesh into the
// mapping), InputMesh for a "to" mapping (data flows into this
// participant's mesh from the mapping). Either accessor may legitimately
// report absence (ok=false) — a mapping is not required to be bidirectional.
type Mapping interface {
	OutputMesh() (m mesh.Mesh, ok bool)
	InputMesh() (m mesh.Mesh, ok bool)
}

// Fixed is a minimal Mapping implementation wrapping up to two fixed
// meshes, one per direction. A nil field reports absence. It is the test
// double used throughout this module's tests and is a reasonable stand-in
// for a coupling driver whose mapping objects have already been resolved
// before the partitioning core runs.
type Fixed struct {
	Output mesh.Mesh
	Input  mesh.Mesh
}

func (f *Fixed) OutputMesh() (mesh.Mesh, bool) {
	if f == nil || f.Output == nil {
		return nil, false
	}
	return f.Output, true
}

func (f *Fixed) InputMesh() (mesh.Mesh, bool) {
	if f == nil || f.Input == nil {
		return nil, false
	}
	return f.Input, true
}
