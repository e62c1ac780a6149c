// Package partition implements the two-sided, two-level connectivity
// protocol that computes, for every local rank, which remote ranks on the
// peer participant own mesh data overlapping its own subdomain.
package partition

import (
	"log"

	"github.com/rbbox/coupling/internal/assert"
	"github.com/rbbox/coupling/pkg/comm"
	"github.com/rbbox/coupling/pkg/geom"
	"github.com/rbbox/coupling/pkg/mapping"
)

// Config carries the one tunable the core exposes at construction time.
type Config struct {
	// Dimensions is the mesh spatial dimension (2 or 3).
	Dimensions int
	// SafetyFactor controls the symmetric dilation applied to the local
	// bounding box. Must be >= 0.
	SafetyFactor float64
}

// ReceivedBoundingBox is one instance per coupled mesh per participant. It
// owns its local bounding box, the remote participant's bounding-box map,
// and the remote rank count; it holds non-owning references to the
// mappings and the two communication channels.
//
// CommunicateBoundingBox runs exactly once, then ComputeBoundingBox runs
// exactly once; after that the instance is read-only.
type ReceivedBoundingBox struct {
	cfg Config

	fromMapping mapping.Mapping // may be nil
	toMapping   mapping.Mapping // may be nil

	m2n   comm.M2NMaster
	intra comm.IntraComm

	role Role
	st   state

	bb               geom.BoundingBox
	remoteBBM        geom.BoundingBoxMap
	remoteParComSize int
	feedbackMap      geom.FeedbackMap

	logger *log.Logger
}

// New constructs a ReceivedBoundingBox. fromMapping and/or toMapping may be
// nil if not attached. m2n is only required on the master; a slave may
// pass nil since Phase 1 is a no-op for it.
func New(cfg Config, fromMapping, toMapping mapping.Mapping, m2n comm.M2NMaster, intra comm.IntraComm, logger *log.Logger) *ReceivedBoundingBox {
	assert.That(cfg.SafetyFactor >= 0, "partition: safetyFactor must be >= 0, got %g", cfg.SafetyFactor)
	if logger == nil {
		logger = log.Default()
	}

	role := RoleOf(intra)
	assert.That(role != Master || intra.Rank() == 0, "partition: master role implies rank 0, got rank %d", intra.Rank())

	return &ReceivedBoundingBox{
		cfg:         cfg,
		fromMapping: fromMapping,
		toMapping:   toMapping,
		m2n:         m2n,
		intra:       intra,
		role:        role,
		st:          stateFresh,
		logger:      logger,
	}
}

// Role reports this instance's derived participant role.
func (r *ReceivedBoundingBox) Role() Role { return r.role }

// LocalBoundingBox reports the dilated local bounding box computed by the
// most recent ComputeBoundingBox call (nil before that).
func (r *ReceivedBoundingBox) LocalBoundingBox() geom.BoundingBox { return r.bb }

// RemoteBoundingBoxMap reports the peer participant's bounding-box map, as
// received during the protocol (nil before CommunicateBoundingBox/
// ComputeBoundingBox has populated it on this rank).
func (r *ReceivedBoundingBox) RemoteBoundingBoxMap() geom.BoundingBoxMap { return r.remoteBBM }
