package comm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"

	"github.com/rbbox/coupling/pkg/geom"
)

// wireMessage is the on-the-wire envelope for every M2NMaster operation
// carried over TCP. Only one of Int, BBM, or FBM is populated, selected by
// Kind; this mirrors the single-message-type-plus-payload shape used
// throughout this module's JSON codecs.
type wireMessage struct {
	Kind string              `json:"kind"`
	Int  int                 `json:"int,omitempty"`
	BBM  geom.BoundingBoxMap `json:"bbm,omitempty"`
	FBM  geom.FeedbackMap    `json:"fbm,omitempty"`
}

const (
	kindInt = "int"
	kindBBM = "bbm"
	kindFBM = "fbm"
)

// tcpM2N implements M2NMaster over a single persistent TCP connection to
// the peer master, framing each value as one JSON object per line.
type tcpM2N struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
}

// DialM2N connects to a peer master already listening at address and
// returns the M2NMaster endpoint for that connection.
func DialM2N(ctx context.Context, address string) (M2NMaster, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("comm: dialing m2n peer %s: %w", address, err)
	}
	log.Printf("[m2n] connected to peer master at %s", address)
	return newTCPM2N(conn), nil
}

// ListenM2N listens at address, accepts exactly one connection from the
// peer master, and returns the M2NMaster endpoint for that connection.
// It blocks until a peer connects or ctx is canceled.
func ListenM2N(ctx context.Context, address string) (M2NMaster, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("comm: listening for m2n peer on %s: %w", address, err)
	}
	defer ln.Close()

	type result struct {
		conn net.Conn
		err  error
	}
	accepted := make(chan result, 1)
	go func() {
		conn, err := ln.Accept()
		accepted <- result{conn, err}
	}()

	select {
	case r := <-accepted:
		if r.err != nil {
			return nil, fmt.Errorf("comm: accepting m2n peer connection: %w", r.err)
		}
		log.Printf("[m2n] accepted connection from peer master at %s", r.conn.RemoteAddr())
		return newTCPM2N(r.conn), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func newTCPM2N(conn net.Conn) *tcpM2N {
	return &tcpM2N{
		conn: conn,
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(conn),
	}
}

func (t *tcpM2N) send(msg wireMessage) error {
	if err := t.enc.Encode(msg); err != nil {
		return fmt.Errorf("comm: sending %s over m2n: %w", msg.Kind, err)
	}
	return nil
}

func (t *tcpM2N) receive(wantKind string) (wireMessage, error) {
	var msg wireMessage
	if err := t.dec.Decode(&msg); err != nil {
		return wireMessage{}, fmt.Errorf("comm: receiving %s over m2n: %w", wantKind, err)
	}
	if msg.Kind != wantKind {
		return wireMessage{}, fmt.Errorf("comm: expected %q over m2n, got %q", wantKind, msg.Kind)
	}
	return msg, nil
}

func (t *tcpM2N) SendInt(ctx context.Context, x int, _ int) error {
	return t.send(wireMessage{Kind: kindInt, Int: x})
}

func (t *tcpM2N) ReceiveInt(ctx context.Context, _ int) (int, error) {
	msg, err := t.receive(kindInt)
	if err != nil {
		return 0, err
	}
	return msg.Int, nil
}

func (t *tcpM2N) SendBoundingBoxMap(ctx context.Context, bbm geom.BoundingBoxMap, _ int) error {
	return t.send(wireMessage{Kind: kindBBM, BBM: bbm})
}

func (t *tcpM2N) ReceiveBoundingBoxMap(ctx context.Context, _ int) (geom.BoundingBoxMap, error) {
	msg, err := t.receive(kindBBM)
	if err != nil {
		return nil, err
	}
	return msg.BBM, nil
}

func (t *tcpM2N) SendFeedbackMap(ctx context.Context, fm geom.FeedbackMap, _ int) error {
	return t.send(wireMessage{Kind: kindFBM, FBM: fm})
}

func (t *tcpM2N) ReceiveFeedbackMap(ctx context.Context, _ int) (geom.FeedbackMap, error) {
	msg, err := t.receive(kindFBM)
	if err != nil {
		return nil, err
	}
	return msg.FBM, nil
}

// Close shuts down the underlying TCP connection.
func (t *tcpM2N) Close() error {
	return t.conn.Close()
}
