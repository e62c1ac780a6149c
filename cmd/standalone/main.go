// Command standalone runs two coupling participants, fluid and solid, in a
// single process over in-memory transports, and prints the resulting
// overlap feedback for each rank. It is a demo and a manual smoke test, not
// a deployment target.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/rbbox/coupling/pkg/comm"
	"github.com/rbbox/coupling/pkg/diagnostics"
	"github.com/rbbox/coupling/pkg/geom"
	"github.com/rbbox/coupling/pkg/mapping"
	"github.com/rbbox/coupling/pkg/mesh"
	"github.com/rbbox/coupling/pkg/partition"
	"github.com/rbbox/coupling/pkg/rankid"
)

const dimensions = 2

func main() {
	fmt.Println("Starting standalone mode")

	fluidBoxes := []geom.BoundingBox{
		box(0, 5, 0, 5),
		box(5, 10, 0, 5),
	}
	// Both participants need at least two ranks: a single-rank participant
	// is Solo, never reads its m2n channel, and would leave its remote
	// stand-in blocked.
	solidBoxes := []geom.BoundingBox{
		box(0, 4, 0, 5),
		box(0, 4, 5, 10),
	}

	// Each participant is wired to its own synthetic remote stand-in
	// carrying the other participant's own bounding boxes, rather than to
	// the other participant's real ranks directly: the mirror side of the
	// protocol (gathering and sending a participant's own boxes) is an
	// external collaborator this core does not implement.
	fluidM2N, remoteOfFluid := comm.NewInMemoryM2NPair()
	solidM2N, remoteOfSolid := comm.NewInMemoryM2NPair()

	cfg := partition.Config{Dimensions: dimensions, SafetyFactor: 0.1}
	remoteErrCh := make(chan error, 2)
	go func() {
		_, err := provideRemoteBoundingBoxMap(context.Background(), remoteOfFluid, localBoundingBoxMap(cfg, solidBoxes))
		remoteErrCh <- err
	}()
	go func() {
		_, err := provideRemoteBoundingBoxMap(context.Background(), remoteOfSolid, localBoundingBoxMap(cfg, fluidBoxes))
		remoteErrCh <- err
	}()

	fluidRanks := runParticipant("fluid", fluidBoxes, fluidM2N, os.Stdout)
	solidRanks := runParticipant("solid", solidBoxes, solidM2N, os.Stdout)

	for i := 0; i < 2; i++ {
		if err := <-remoteErrCh; err != nil {
			log.Fatalf("remote stand-in: %v", err)
		}
	}

	report("fluid", fluidRanks)
	report("solid", solidRanks)
}

func box(lo0, hi0, lo1, hi1 float64) geom.BoundingBox {
	return geom.BoundingBox{{Lo: lo0, Hi: hi0}, {Lo: lo1, Hi: hi1}}
}

// localBoundingBoxMap computes what a participant with the given boxes
// would gather of itself, keyed by rank. It stands in for the remote
// participant's own box-gathering step, which this core never implements
// (see partition.LocalBoundingBox).
func localBoundingBoxMap(cfg partition.Config, boxes []geom.BoundingBox) geom.BoundingBoxMap {
	bbm := make(geom.BoundingBoxMap, len(boxes))
	for i, b := range boxes {
		from := &mapping.Fixed{Output: mesh.NewStatic(cfg.Dimensions, b)}
		bbm[i] = partition.LocalBoundingBox(cfg, from, nil)
	}
	return bbm
}

// provideRemoteBoundingBoxMap plays the remote master's side of the m2n
// channel directly: it sends bbm as Phase 1 input to the local master and
// then receives back whatever feedback map the local master computed.
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

// runParticipant builds one participant's rank group, runs both protocol
// phases across every rank concurrently, and returns the resulting
// per-rank cores for reporting.
func runParticipant(name string, boxes []geom.BoundingBox, m2n comm.M2NMaster, w io.Writer) []*partition.ReceivedBoundingBox {
	intras := comm.NewInMemoryIntraGroup(len(boxes))
	cfg := partition.Config{Dimensions: dimensions, SafetyFactor: 0.1}

	ranks := make([]*partition.ReceivedBoundingBox, len(boxes))
	for i, b := range boxes {
		from := &mapping.Fixed{Output: mesh.NewStatic(dimensions, b)}
		var rankM2N comm.M2NMaster
		if i == 0 {
			rankM2N = m2n
		}
		id := rankid.New(name, i)
		rankLogger := log.New(w, "["+id.String()+"] ", log.LstdFlags)
		ranks[i] = partition.New(cfg, from, nil, rankM2N, intras[i], rankLogger)
	}

	errCh := make(chan error, len(ranks))
	run := func(phase func(*partition.ReceivedBoundingBox, context.Context) error) {
		for _, r := range ranks {
			go func(r *partition.ReceivedBoundingBox) { errCh <- phase(r, context.Background()) }(r)
		}
		for range ranks {
			if err := <-errCh; err != nil {
				log.Fatalf("%s: %v", name, err)
			}
		}
	}

	run((*partition.ReceivedBoundingBox).CommunicateBoundingBox)
	run((*partition.ReceivedBoundingBox).ComputeBoundingBox)

	return ranks
}

func report(name string, ranks []*partition.ReceivedBoundingBox) {
	fmt.Printf("=== %s ===\n", name)
	for i, r := range ranks {
		fmt.Printf("rank %d: local box %v, role %s\n", i, r.LocalBoundingBox(), r.Role())
	}

	master := ranks[0]
	fm := master.FeedbackMap()
	remote := master.RemoteBoundingBoxMap()
	matrix := diagnostics.NewOverlapMatrix(fm, len(remote))
	fmt.Printf("overlap density against remote participant: %.2f\n", matrix.Density())
	if err := matrix.WriteCSV(os.Stdout); err != nil {
		log.Printf("%s: writing overlap matrix: %v", name, err)
	}
}
