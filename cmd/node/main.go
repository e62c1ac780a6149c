// Command node runs one coupling participant as its own operating-system
// process, connecting to the peer participant's node over a real TCP
// connection. The local rank group (the master plus every peer listed in
// the configuration's network section) is simulated in-process over an
// in-memory intra-participant channel; only the master rank (rank 0) opens
// the TCP connection to the peer master.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/rbbox/coupling/pkg/comm"
	"github.com/rbbox/coupling/pkg/config"
	"github.com/rbbox/coupling/pkg/diagnostics"
	"github.com/rbbox/coupling/pkg/geom"
	"github.com/rbbox/coupling/pkg/mapping"
	"github.com/rbbox/coupling/pkg/mesh"
	"github.com/rbbox/coupling/pkg/partition"
	"github.com/rbbox/coupling/pkg/rankid"
)

const dialTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to the node configuration file (YAML)")
	extent := flag.Float64("extent", 1, "side length of each simulated rank's local box")
	flag.Parse()

	if *configPath == "" {
		log.Fatal("missing required -config flag")
	}
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	log.Printf("loaded configuration for %s (rank %d, master=%v)", cfg.MachineID, cfg.Rank, cfg.IsMaster)
	for _, peer := range cfg.Network.Peers {
		log.Printf("local rank group peer: %s at %s", peer.ID, peer.Address)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	var m2n comm.M2NMaster
	if cfg.IsMaster {
		m2n, err = connectM2N(ctx, cfg.PeerAddress)
		if err != nil {
			log.Fatalf("establishing m2n connection: %v", err)
		}
		defer m2n.(interface{ Close() error }).Close()
	}

	size := len(cfg.Network.Peers) + 1
	intras := comm.NewInMemoryIntraGroup(size)
	partCfg := partition.Config{Dimensions: cfg.Dimensions, SafetyFactor: cfg.SafetyFactor}

	ranks := make([]*partition.ReceivedBoundingBox, size)
	localBBM := make(geom.BoundingBoxMap, size)
	for i := range ranks {
		box := geom.BoundingBox{}
		for d := 0; d < cfg.Dimensions; d++ {
			box = append(box, geom.Interval{Lo: float64(i) * *extent, Hi: float64(i+1) * *extent})
		}
		from := &mapping.Fixed{Output: mesh.NewStatic(cfg.Dimensions, box)}
		localBBM[i] = partition.LocalBoundingBox(partCfg, from, nil)

		var rankM2N comm.M2NMaster
		if i == 0 {
			rankM2N = m2n
		}
		id := rankid.New(cfg.MachineID, i)
		rankLogger := log.New(os.Stdout, "["+id.String()+"] ", log.LstdFlags)
		ranks[i] = partition.New(partCfg, from, nil, rankM2N, intras[i], rankLogger)
	}

	// The peer process runs the same program against this node's own
	// ReceivedBoundingBox master, which only ever receives over m2n. Every
	// node therefore also plays the remote stand-in for its peer over the
	// same connection: it sends this node's own gathered bounding-box map
	// as the peer's Phase 1 input, then receives the feedback map the peer
	// computes from it.
	var remoteFeedbackErr error
	remoteFeedbackDone := make(chan struct{})
	if cfg.IsMaster {
		go func() {
			defer close(remoteFeedbackDone)
			fm, err := provideRemoteBoundingBoxMap(ctx, m2n, localBBM)
			if err != nil {
				remoteFeedbackErr = err
				return
			}
			log.Printf("peer's feedback map computed from our bounding boxes: %v", fm)
		}()
	} else {
		close(remoteFeedbackDone)
	}

	errCh := make(chan error, size)
	run := func(phase func(*partition.ReceivedBoundingBox, context.Context) error) {
		for _, r := range ranks {
			go func(r *partition.ReceivedBoundingBox) { errCh <- phase(r, ctx) }(r)
		}
		for range ranks {
			if err := <-errCh; err != nil {
				log.Fatalf("%v", err)
			}
		}
	}
	run((*partition.ReceivedBoundingBox).CommunicateBoundingBox)
	run((*partition.ReceivedBoundingBox).ComputeBoundingBox)

	<-remoteFeedbackDone
	if remoteFeedbackErr != nil {
		log.Fatalf("providing bounding box map to peer: %v", remoteFeedbackErr)
	}

	master := ranks[0]
	log.Printf("remote rank count: %d", len(master.RemoteBoundingBoxMap()))
	matrix := diagnostics.NewOverlapMatrix(master.FeedbackMap(), len(master.RemoteBoundingBoxMap()))
	log.Printf("overlap density against remote participant: %.2f", matrix.Density())
	if err := matrix.WriteCSV(os.Stdout); err != nil {
		log.Printf("writing overlap matrix: %v", err)
	}
}

// provideRemoteBoundingBoxMap plays the remote master's side of the m2n
// channel directly: it sends bbm as Phase 1 input to the peer and then
// receives back whatever feedback map the peer computed.
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

// connectM2N dials the peer master if it is already listening, otherwise
// falls back to listening for the peer to dial in; either side of a pair
// of nodes can be started first.
func connectM2N(ctx context.Context, peerAddress string) (comm.M2NMaster, error) {
	if m2n, err := comm.DialM2N(ctx, peerAddress); err == nil {
		return m2n, nil
	}
	return comm.ListenM2N(ctx, peerAddress)
}
