package comm

import (
	"context"

	"github.com/rbbox/coupling/pkg/geom"
)

// m2nPipe is the shared plumbing between the two masters of an in-memory
// M2N connection: one Mailbox per payload kind, per direction.
type m2nPipe struct {
	intCh [2]*Mailbox[int]
	bbmCh [2]*Mailbox[geom.BoundingBoxMap]
	fbCh  [2]*Mailbox[geom.FeedbackMap]
}

func newM2NPipe() *m2nPipe {
	return &m2nPipe{
		intCh: [2]*Mailbox[int]{NewMailbox[int](), NewMailbox[int]()},
		bbmCh: [2]*Mailbox[geom.BoundingBoxMap]{NewMailbox[geom.BoundingBoxMap](), NewMailbox[geom.BoundingBoxMap]()},
		fbCh:  [2]*Mailbox[geom.FeedbackMap]{NewMailbox[geom.FeedbackMap](), NewMailbox[geom.FeedbackMap]()},
	}
}

// inMemoryM2N is one master's endpoint onto an m2nPipe. side identifies
// which of the pipe's two directions this endpoint sends on; the peer
// endpoint has the other side, so sends from one land as receives on the
// other.
type inMemoryM2N struct {
	pipe *m2nPipe
	side int
}

// NewInMemoryM2NPair returns the two master endpoints of a single M2N
// connection, already wired to each other. peerRank is always 0 for both
// sides in this two-master model and is accepted but ignored, since the
// master communication peer is always rank 0.
func NewInMemoryM2NPair() (a, b M2NMaster) {
	pipe := newM2NPipe()
	return &inMemoryM2N{pipe: pipe, side: 0}, &inMemoryM2N{pipe: pipe, side: 1}
}

func (e *inMemoryM2N) other() int { return 1 - e.side }

func (e *inMemoryM2N) SendInt(ctx context.Context, x int, _ int) error {
	return e.pipe.intCh[e.side].Send(ctx, x)
}

func (e *inMemoryM2N) ReceiveInt(ctx context.Context, _ int) (int, error) {
	return e.pipe.intCh[e.other()].Receive(ctx)
}

func (e *inMemoryM2N) SendBoundingBoxMap(ctx context.Context, bbm geom.BoundingBoxMap, _ int) error {
	return e.pipe.bbmCh[e.side].Send(ctx, bbm)
}

func (e *inMemoryM2N) ReceiveBoundingBoxMap(ctx context.Context, _ int) (geom.BoundingBoxMap, error) {
	return e.pipe.bbmCh[e.other()].Receive(ctx)
}

func (e *inMemoryM2N) SendFeedbackMap(ctx context.Context, fm geom.FeedbackMap, _ int) error {
	return e.pipe.fbCh[e.side].Send(ctx, fm)
}

func (e *inMemoryM2N) ReceiveFeedbackMap(ctx context.Context, _ int) (geom.FeedbackMap, error) {
	return e.pipe.fbCh[e.other()].Receive(ctx)
}
