package partition

import (
	"context"
	"fmt"

	"github.com/rbbox/coupling/pkg/geom"
)

// CommunicateBoundingBox is Phase 1 of the protocol: master-only,
// inter-participant exchange. The master receives the remote participant's
// rank count and bounding-box map from the remote master over the m2n
// channel. Slaves do not participate in Phase 1 at all; they block in
// Phase 2 instead, so this is a no-op on both a slave and a solo
// participant.
func (r *ReceivedBoundingBox) CommunicateBoundingBox(ctx context.Context) error {
	if r.st == stateSealed {
		return ErrAlreadySealed
	}

	if r.role != Master {
		r.logger.Printf("[bbox %s] CommunicateBoundingBox: no-op, phase 1 is master-only", r.role)
		return nil
	}

	return r.communicateAsMaster(ctx)
}

func (r *ReceivedBoundingBox) communicateAsMaster(ctx context.Context) error {
	remoteSize, err := r.m2n.ReceiveInt(ctx, 0)
	if err != nil {
		return fmt.Errorf("partition: receiving remote participant size: %w", err)
	}
	r.remoteParComSize = remoteSize
	// Pre-size with the placeholder before the real receive; the BBM
	// receive below replaces it wholesale, but the intermediate state is
	// kept for behavioral parity with the protocol's two-step receive
	// sequence.
	r.remoteBBM = geom.NewPlaceholderBoundingBoxMap(remoteSize, r.cfg.Dimensions)

	bbm, err := r.m2n.ReceiveBoundingBoxMap(ctx, 0)
	if err != nil {
		return fmt.Errorf("partition: receiving remote bounding box map: %w", err)
	}
	r.remoteBBM = bbm
	r.st = stateBBReceived

	r.logger.Printf("[bbox master] received remote bounding box map for %d remote ranks", remoteSize)
	return nil
}

// ComputeBoundingBox is Phase 2 of the protocol: every rank runs C1 to
// produce its own local bounding box, the master broadcasts the remote
// bounding-box map to its slaves, every rank computes its own overlap
// list against that map, the master gathers the slaves' lists into a
// feedback map, and the master reports that feedback map back to the
// remote master.
//
// On the master, ComputeBoundingBox must follow a completed
// CommunicateBoundingBox call; calling it first returns
// ErrPhase2BeforePhase1. Slaves skip Phase 1 entirely and enter
// BBReceived implicitly here. On a solo participant both phases are
// no-ops beyond C1: a serial, single-rank coupling mode is deliberately
// out of scope for this core rather than guessed at.
func (r *ReceivedBoundingBox) ComputeBoundingBox(ctx context.Context) error {
	if r.st == stateSealed {
		return ErrAlreadySealed
	}
	if r.role == Master && r.st != stateBBReceived {
		return ErrPhase2BeforePhase1
	}

	r.prepareBoundingBox()

	if r.role == Solo {
		r.logger.Printf("[bbox solo] ComputeBoundingBox: no-op, serial participant mode is out of scope")
		r.st = stateSealed
		return nil
	}

	var err error
	if r.role == Master {
		err = r.computeAsMaster(ctx)
	} else {
		err = r.computeAsSlave(ctx)
	}
	if err != nil {
		return err
	}

	r.st = stateSealed
	return nil
}

func (r *ReceivedBoundingBox) computeAsMaster(ctx context.Context) error {
	if _, err := r.intra.BroadcastInt(ctx, r.remoteParComSize); err != nil {
		return fmt.Errorf("partition: broadcasting remote participant size: %w", err)
	}
	if err := r.intra.BroadcastSendBoundingBoxMap(ctx, r.remoteBBM); err != nil {
		return fmt.Errorf("partition: broadcasting remote bounding box map: %w", err)
	}

	ownOverlap, err := r.overlapList()
	if err != nil {
		return fmt.Errorf("partition: computing local overlap list: %w", err)
	}
	r.st = stateComputed

	size := r.intra.Size()
	feedbackMap := make(geom.FeedbackMap, size)
	for slave := 1; slave < size; slave++ {
		feedbackMap[slave] = geom.UnsetFeedback
	}
	if len(ownOverlap) > 0 {
		feedbackMap[0] = ownOverlap
	}

	for slave := 1; slave < size; slave++ {
		k, err := r.intra.ReceiveInt(ctx, slave)
		if err != nil {
			return fmt.Errorf("partition: receiving feedback size from slave %d: %w", slave, err)
		}
		if k > 0 {
			ids, err := r.intra.ReceiveIntSlice(ctx, slave)
			if err != nil {
				return fmt.Errorf("partition: receiving feedback from slave %d: %w", slave, err)
			}
			feedbackMap[slave] = ids
		}
	}

	r.feedbackMap = feedbackMap

	if len(feedbackMap) == 0 {
		// No rank on either side overlaps. Treated as a warning, not a
		// fault, since a disjoint coupling interface is a valid (if
		// unusual) outcome rather than a protocol defect.
		r.logger.Printf("[bbox master] warning: empty feedback map, no overlap found with remote participant")
	}

	if err := r.m2n.SendInt(ctx, len(feedbackMap), 0); err != nil {
		return fmt.Errorf("partition: sending feedback map size: %w", err)
	}
	if len(feedbackMap) != 0 {
		if err := r.m2n.SendFeedbackMap(ctx, feedbackMap, 0); err != nil {
			return fmt.Errorf("partition: sending feedback map: %w", err)
		}
	}

	return nil
}

func (r *ReceivedBoundingBox) computeAsSlave(ctx context.Context) error {
	size, err := r.intra.BroadcastInt(ctx, 0)
	if err != nil {
		return fmt.Errorf("partition: receiving broadcast remote participant size: %w", err)
	}
	r.remoteParComSize = size
	r.remoteBBM = geom.NewPlaceholderBoundingBoxMap(size, r.cfg.Dimensions)

	bbm, err := r.intra.BroadcastReceiveBoundingBoxMap(ctx)
	if err != nil {
		return fmt.Errorf("partition: receiving broadcast remote bounding box map: %w", err)
	}
	r.remoteBBM = bbm
	r.st = stateBBReceived

	overlap, err := r.overlapList()
	if err != nil {
		return fmt.Errorf("partition: computing local overlap list: %w", err)
	}
	r.st = stateComputed

	// Zero-length lists are never sent as payload, only their length; this
	// asymmetry is a deliberate wire-format contract, not an oversight.
	if err := r.intra.SendInt(ctx, len(overlap), 0); err != nil {
		return fmt.Errorf("partition: sending feedback size: %w", err)
	}
	if len(overlap) > 0 {
		if err := r.intra.SendIntSlice(ctx, overlap, 0); err != nil {
			return fmt.Errorf("partition: sending feedback: %w", err)
		}
	}

	return nil
}

// overlapList iterates r.remoteBBM in ascending remote-rank order, which
// is required for cross-run determinism, and returns the remote ranks
// that overlap the local bounding box.
func (r *ReceivedBoundingBox) overlapList() ([]int, error) {
	var overlap []int
	for _, remoteRank := range r.remoteBBM.SortedRanks() {
		ok, err := geom.Overlapping(r.bb, r.remoteBBM[remoteRank])
		if err != nil {
			return nil, err
		}
		if ok {
			overlap = append(overlap, remoteRank)
		}
	}
	return overlap, nil
}

// FeedbackMap reports the feedback map computed and sent by the master
// (nil on a slave, or before ComputeBoundingBox has run on the master).
func (r *ReceivedBoundingBox) FeedbackMap() geom.FeedbackMap { return r.feedbackMap }
