package partition

import (
	"context"
	"io"
	"log"
	"reflect"
	"sync"
	"testing"

	"github.com/rbbox/coupling/pkg/comm"
	"github.com/rbbox/coupling/pkg/geom"
	"github.com/rbbox/coupling/pkg/mapping"
	"github.com/rbbox/coupling/pkg/mesh"
)

var testLogger = log.New(io.Discard, "", 0)

func box1D(lo, hi float64) geom.BoundingBox {
	return geom.BoundingBox{{Lo: lo, Hi: hi}}
}

func box2D(lo0, hi0, lo1, hi1 float64) geom.BoundingBox {
	return geom.BoundingBox{{Lo: lo0, Hi: hi0}, {Lo: lo1, Hi: hi1}}
}

// newParticipant builds one ReceivedBoundingBox per rank of a participant
// with len(boxes) ranks, rank i's attached "from" mesh reporting boxes[i].
// m2n is used only by the resulting master (rank 0); it may be nil for a
// solo participant.
func newParticipant(t *testing.T, dimensions int, boxes []geom.BoundingBox, m2n comm.M2NMaster) []*ReceivedBoundingBox {
	t.Helper()

	intras := comm.NewInMemoryIntraGroup(len(boxes))
	cfg := Config{Dimensions: dimensions, SafetyFactor: 0}

	ranks := make([]*ReceivedBoundingBox, len(boxes))
	for i, box := range boxes {
		from := &mapping.Fixed{Output: mesh.NewStatic(dimensions, box)}
		var rankM2N comm.M2NMaster
		if i == 0 {
			rankM2N = m2n
		}
		ranks[i] = New(cfg, from, nil, rankM2N, intras[i], testLogger)
	}
	return ranks
}

// localBoundingBoxMap computes what a participant with the given boxes
// would gather of itself (C1 applied to each rank's box, keyed by rank).
// It stands in for the remote participant's own box-gathering step, which
// this core never implements (see LocalBoundingBox).
func localBoundingBoxMap(cfg Config, boxes []geom.BoundingBox) geom.BoundingBoxMap {
	bbm := make(geom.BoundingBoxMap, len(boxes))
	for i, box := range boxes {
		from := &mapping.Fixed{Output: mesh.NewStatic(cfg.Dimensions, box)}
		bbm[i] = LocalBoundingBox(cfg, from, nil)
	}
	return bbm
}

// provideRemoteBoundingBoxMap plays the remote master's side of the m2n
// channel directly, standing in for the mirror protocol this core treats
// as an external collaborator: it sends bbm as Phase 1 input to the local
// master and then receives back whatever feedback map the local master
// computed and sent in Phase 2.
func provideRemoteBoundingBoxMap(ctx context.Context, m2n comm.M2NMaster, bbm geom.BoundingBoxMap) (geom.FeedbackMap, error) {
	if err := m2n.SendInt(ctx, len(bbm), 0); err != nil {
		return nil, err
	}
	if err := m2n.SendBoundingBoxMap(ctx, bbm, 0); err != nil {
		return nil, err
	}

	size, err := m2n.ReceiveInt(ctx, 0)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	return m2n.ReceiveFeedbackMap(ctx, 0)
}

// runPhase invokes phase on every rank concurrently, since a blocking
// rendezvous protocol deadlocks if its participants run sequentially, and
// returns one error per rank in rank order.
func runPhase(ranks []*ReceivedBoundingBox, phase func(*ReceivedBoundingBox, context.Context) error) []error {
	errs := make([]error, len(ranks))
	var wg sync.WaitGroup
	for i, r := range ranks {
		wg.Add(1)
		go func(i int, r *ReceivedBoundingBox) {
			defer wg.Done()
			errs[i] = phase(r, context.Background())
		}(i, r)
	}
	wg.Wait()
	return errs
}

func requireNoErrors(t *testing.T, label string, errs []error) {
	t.Helper()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("%s: rank %d: %v", label, i, err)
		}
	}
}

// runFullProtocol builds two independent participants, each wired to its
// own synthetic remote stand-in carrying the other participant's own
// bounding boxes, and drives both protocol phases to completion. It
// returns each participant's ranks for inspection.
func runFullProtocol(t *testing.T, dimensions int, aBoxes, bBoxes []geom.BoundingBox) (a, b []*ReceivedBoundingBox) {
	t.Helper()

	m2nA, remoteOfA := comm.NewInMemoryM2NPair()
	m2nB, remoteOfB := comm.NewInMemoryM2NPair()

	a = newParticipant(t, dimensions, aBoxes, m2nA)
	b = newParticipant(t, dimensions, bBoxes, m2nB)
	cfg := Config{Dimensions: dimensions, SafetyFactor: 0}

	var wg sync.WaitGroup
	var errRemoteOfA, errRemoteOfB error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errRemoteOfA = provideRemoteBoundingBoxMap(context.Background(), remoteOfA, localBoundingBoxMap(cfg, bBoxes))
	}()
	go func() {
		defer wg.Done()
		_, errRemoteOfB = provideRemoteBoundingBoxMap(context.Background(), remoteOfB, localBoundingBoxMap(cfg, aBoxes))
	}()

	all := append(append([]*ReceivedBoundingBox{}, a...), b...)
	requireNoErrors(t, "CommunicateBoundingBox", runPhase(all, (*ReceivedBoundingBox).CommunicateBoundingBox))
	requireNoErrors(t, "ComputeBoundingBox", runPhase(all, (*ReceivedBoundingBox).ComputeBoundingBox))

	wg.Wait()
	if errRemoteOfA != nil {
		t.Fatalf("remote stand-in for participant A: %v", errRemoteOfA)
	}
	if errRemoteOfB != nil {
		t.Fatalf("remote stand-in for participant B: %v", errRemoteOfB)
	}
	return a, b
}

// The feedback map a master assembles must equal the true overlap set
// between each of its own ranks' boxes and the remote participant's
// per-rank boxes.
func TestFeedbackMapMatchesTrueOverlap(t *testing.T) {
	a, b := runFullProtocol(t, 1,
		[]geom.BoundingBox{box1D(0, 1), box1D(2, 3)},
		[]geom.BoundingBox{box1D(0.5, 0.6), box1D(10, 11)},
	)

	wantA := geom.FeedbackMap{0: {0}, 1: geom.UnsetFeedback}
	if got := a[0].FeedbackMap(); !reflect.DeepEqual(got, wantA) {
		t.Errorf("participant A feedback map = %v, want %v", got, wantA)
	}

	wantB := geom.FeedbackMap{0: {0}, 1: geom.UnsetFeedback}
	if got := b[0].FeedbackMap(); !reflect.DeepEqual(got, wantB) {
		t.Errorf("participant B feedback map = %v, want %v", got, wantB)
	}
}

// When every remote rank overlaps, the feedback map must carry every
// local rank's full overlap list, including multi-slave participants on
// both sides.
func TestFeedbackMapMultiSlaveAllOverlap(t *testing.T) {
	shared := box1D(0, 1)
	a, _ := runFullProtocol(t, 1,
		[]geom.BoundingBox{shared, shared, shared},
		[]geom.BoundingBox{shared, shared},
	)

	want := geom.FeedbackMap{0: {0, 1}, 1: {0, 1}, 2: {0, 1}}
	if got := a[0].FeedbackMap(); !reflect.DeepEqual(got, want) {
		t.Errorf("participant A feedback map = %v, want %v", got, want)
	}
}

// A dimension mismatch between the local and remote bounding boxes must
// surface as an error out of ComputeBoundingBox rather than panicking,
// since it can originate from untrusted wire data sent by the peer
// participant.
func TestDimensionMismatchPropagatesAsComputeError(t *testing.T) {
	m2nA, remoteOfA := comm.NewInMemoryM2NPair()

	// Two ranks, so that rank 0 is a master that actually runs the
	// protocol; a one-rank participant would be Solo.
	a := newParticipant(t, 1, []geom.BoundingBox{box1D(0, 1), box1D(2, 3)}, m2nA)
	mismatchedRemoteBBM := localBoundingBoxMap(Config{Dimensions: 2, SafetyFactor: 0}, []geom.BoundingBox{box2D(0, 1, 0, 1)})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() {
		_, err := provideRemoteBoundingBoxMap(ctx, remoteOfA, mismatchedRemoteBBM)
		errCh <- err
	}()

	requireNoErrors(t, "CommunicateBoundingBox", runPhase(a, (*ReceivedBoundingBox).CommunicateBoundingBox))

	errs := runPhase(a, (*ReceivedBoundingBox).ComputeBoundingBox)
	if errs[0] == nil {
		t.Fatalf("expected a dimension-mismatch error from ComputeBoundingBox, got none")
	}
	// The master stops before sending any feedback, so release the
	// stand-in that is waiting for it.
	cancel()
	<-errCh
}

func TestComputeBoundingBoxBeforeCommunicate(t *testing.T) {
	intras := comm.NewInMemoryIntraGroup(2)
	cfg := Config{Dimensions: 1, SafetyFactor: 0}
	master := New(cfg, nil, nil, nil, intras[0], testLogger)

	if err := master.ComputeBoundingBox(context.Background()); err != ErrPhase2BeforePhase1 {
		t.Errorf("ComputeBoundingBox before CommunicateBoundingBox = %v, want ErrPhase2BeforePhase1", err)
	}
}

func TestSoloRoleIsANoOp(t *testing.T) {
	intras := comm.NewInMemoryIntraGroup(1)
	cfg := Config{Dimensions: 1, SafetyFactor: 0}
	solo := New(cfg, nil, nil, nil, intras[0], testLogger)

	if solo.Role() != Solo {
		t.Fatalf("Role() = %v, want Solo", solo.Role())
	}
	if err := solo.CommunicateBoundingBox(context.Background()); err != nil {
		t.Errorf("CommunicateBoundingBox on solo participant: %v", err)
	}
	if err := solo.ComputeBoundingBox(context.Background()); err != nil {
		t.Errorf("ComputeBoundingBox on solo participant: %v", err)
	}
	if err := solo.ComputeBoundingBox(context.Background()); err != ErrAlreadySealed {
		t.Errorf("second ComputeBoundingBox on solo participant = %v, want ErrAlreadySealed", err)
	}
}

func TestAlreadySealedAfterFullProtocol(t *testing.T) {
	a, b := runFullProtocol(t, 1,
		[]geom.BoundingBox{box1D(0, 1), box1D(2, 3)},
		[]geom.BoundingBox{box1D(0.5, 0.6), box1D(10, 11)},
	)

	for _, r := range append(append([]*ReceivedBoundingBox{}, a...), b...) {
		if err := r.CommunicateBoundingBox(context.Background()); err != ErrAlreadySealed {
			t.Errorf("rank %v CommunicateBoundingBox after sealed = %v, want ErrAlreadySealed", r.Role(), err)
		}
		if err := r.ComputeBoundingBox(context.Background()); err != ErrAlreadySealed {
			t.Errorf("rank %v ComputeBoundingBox after sealed = %v, want ErrAlreadySealed", r.Role(), err)
		}
	}
}

func TestLocalBoundingBoxIsDilated(t *testing.T) {
	intras := comm.NewInMemoryIntraGroup(1)
	cfg := Config{Dimensions: 1, SafetyFactor: 0.5}
	from := &mapping.Fixed{Output: mesh.NewStatic(1, box1D(0, 2))}
	solo := New(cfg, from, nil, nil, intras[0], testLogger)

	if err := solo.CommunicateBoundingBox(context.Background()); err != nil {
		t.Fatalf("CommunicateBoundingBox: %v", err)
	}
	if err := solo.ComputeBoundingBox(context.Background()); err != nil {
		t.Fatalf("ComputeBoundingBox: %v", err)
	}

	want := box1D(-1, 3)
	if got := solo.LocalBoundingBox(); !reflect.DeepEqual(got, want) {
		t.Errorf("LocalBoundingBox() = %v, want %v", got, want)
	}
}
