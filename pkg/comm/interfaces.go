// Package comm defines the two collective-communication collaborator
// interfaces the partitioning core depends on: the inter-participant
// master-to-master channel (M2N) and the intra-participant master/slaves
// channel. It also ships an in-memory implementation of both, used by
// tests and by the single-process demo, and a TCP-based implementation of
// the M2N channel for a real multi-process deployment.
//
// Every operation here is blocking from the caller's perspective and takes
// a context.Context; there is no non-blocking variant. The in-memory
// implementations abort a call when its context is canceled. The TCP
// M2NMaster does not look at the context: its calls block until the
// connection delivers the value or fails.
package comm

import (
	"context"

	"github.com/rbbox/coupling/pkg/geom"
)

// M2NMaster is the point-to-point channel between the local master (LM)
// and the remote master (RM) of the peer participant.
type M2NMaster interface {
	SendInt(ctx context.Context, x int, peerRank int) error
	ReceiveInt(ctx context.Context, peerRank int) (int, error)

	SendBoundingBoxMap(ctx context.Context, bbm geom.BoundingBoxMap, peerRank int) error
	ReceiveBoundingBoxMap(ctx context.Context, peerRank int) (geom.BoundingBoxMap, error)

	SendFeedbackMap(ctx context.Context, fm geom.FeedbackMap, peerRank int) error
	ReceiveFeedbackMap(ctx context.Context, peerRank int) (geom.FeedbackMap, error)
}

// IntraComm is the one-to-many channel within a single participant's rank
// group; the master (rank 0) is always root.
type IntraComm interface {
	Rank() int
	Size() int

	// BroadcastInt is called by the root with the value to broadcast, and
	// by every non-root with any value (ignored) — both return the
	// broadcast value.
	BroadcastInt(ctx context.Context, x int) (int, error)

	// BroadcastSendBoundingBoxMap is called by the root to push bbm to
	// every non-root.
	BroadcastSendBoundingBoxMap(ctx context.Context, bbm geom.BoundingBoxMap) error
	// BroadcastReceiveBoundingBoxMap is called by every non-root to
	// receive the map the root broadcast.
	BroadcastReceiveBoundingBoxMap(ctx context.Context) (geom.BoundingBoxMap, error)

	SendInt(ctx context.Context, x int, dest int) error
	ReceiveInt(ctx context.Context, source int) (int, error)

	SendIntSlice(ctx context.Context, xs []int, dest int) error
	ReceiveIntSlice(ctx context.Context, source int) ([]int, error)
}
