package comm

import (
	"context"

	"github.com/rbbox/coupling/pkg/geom"
)

// intraHub is the shared plumbing for one participant's intra-participant
// rank group: a root-to-all broadcast fan-out for the two values the
// protocol broadcasts, plus a per-slave feedback channel pair for the
// slave-to-master reports.
type intraHub struct {
	size int

	broadcastInt [](*Mailbox[int])
	broadcastBBM [](*Mailbox[geom.BoundingBoxMap])

	feedbackSize [](*Mailbox[int])
	feedbackIDs  [](*Mailbox[[]int])
}

// NewInMemoryIntraGroup returns one IntraComm per rank, 0..size-1, for a
// participant with the given rank count, already wired to each other.
// size must be >= 1.
func NewInMemoryIntraGroup(size int) []IntraComm {
	if size < 1 {
		panic("comm: intra-participant group size must be >= 1")
	}

	hub := &intraHub{
		size:         size,
		broadcastInt: make([]*Mailbox[int], size-1),
		broadcastBBM: make([]*Mailbox[geom.BoundingBoxMap], size-1),
		feedbackSize: make([]*Mailbox[int], size-1),
		feedbackIDs:  make([]*Mailbox[[]int], size-1),
	}
	for i := range hub.broadcastInt {
		hub.broadcastInt[i] = NewMailbox[int]()
		hub.broadcastBBM[i] = NewMailbox[geom.BoundingBoxMap]()
		hub.feedbackSize[i] = NewMailbox[int]()
		hub.feedbackIDs[i] = NewMailbox[[]int]()
	}

	ranks := make([]IntraComm, size)
	for r := 0; r < size; r++ {
		ranks[r] = &inMemoryIntra{rank: r, hub: hub}
	}
	return ranks
}

type inMemoryIntra struct {
	rank int
	hub  *intraHub
}

func (c *inMemoryIntra) Rank() int { return c.rank }
func (c *inMemoryIntra) Size() int { return c.hub.size }

func (c *inMemoryIntra) BroadcastInt(ctx context.Context, x int) (int, error) {
	if c.rank == 0 {
		for _, mb := range c.hub.broadcastInt {
			if err := mb.Send(ctx, x); err != nil {
				return 0, err
			}
		}
		return x, nil
	}
	return c.hub.broadcastInt[c.rank-1].Receive(ctx)
}

func (c *inMemoryIntra) BroadcastSendBoundingBoxMap(ctx context.Context, bbm geom.BoundingBoxMap) error {
	if c.rank != 0 {
		return ErrNotRoot
	}
	for _, mb := range c.hub.broadcastBBM {
		if err := mb.Send(ctx, bbm); err != nil {
			return err
		}
	}
	return nil
}

func (c *inMemoryIntra) BroadcastReceiveBoundingBoxMap(ctx context.Context) (geom.BoundingBoxMap, error) {
	if c.rank == 0 {
		return nil, ErrNotRoot
	}
	return c.hub.broadcastBBM[c.rank-1].Receive(ctx)
}

func (c *inMemoryIntra) SendInt(ctx context.Context, x int, dest int) error {
	if dest != 0 || c.rank == 0 {
		return ErrNoSuchRank
	}
	return c.hub.feedbackSize[c.rank-1].Send(ctx, x)
}

func (c *inMemoryIntra) ReceiveInt(ctx context.Context, source int) (int, error) {
	if c.rank != 0 || source < 1 || source >= c.hub.size {
		return 0, ErrNoSuchRank
	}
	return c.hub.feedbackSize[source-1].Receive(ctx)
}

func (c *inMemoryIntra) SendIntSlice(ctx context.Context, xs []int, dest int) error {
	if dest != 0 || c.rank == 0 {
		return ErrNoSuchRank
	}
	return c.hub.feedbackIDs[c.rank-1].Send(ctx, xs)
}

func (c *inMemoryIntra) ReceiveIntSlice(ctx context.Context, source int) ([]int, error) {
	if c.rank != 0 || source < 1 || source >= c.hub.size {
		return nil, ErrNoSuchRank
	}
	return c.hub.feedbackIDs[source-1].Receive(ctx)
}
