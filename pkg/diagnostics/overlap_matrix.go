// Package diagnostics builds inspectable summaries of a completed
// connectivity run, for operators to sanity-check a coupling setup
// without re-deriving it from log lines.
package diagnostics

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/rbbox/coupling/pkg/geom"
)

// OverlapMatrix is a localRanks x remoteRanks 0/1 dense matrix: entry
// (i, j) is 1 if local rank i overlaps remote rank j, per the master's
// feedback map, and 0 otherwise.
type OverlapMatrix struct {
	m           *mat.Dense
	localRanks  int
	remoteRanks int
}

// NewOverlapMatrix builds the matrix from a feedback map. remoteRanks
// must be the remote participant's rank count, since a local rank with no
// overlap at all still owns a fully-zero row.
func NewOverlapMatrix(fm geom.FeedbackMap, remoteRanks int) *OverlapMatrix {
	// The master leaves its own key 0 out when it has no overlap, so the
	// row count comes from the highest rank present, not from len(fm).
	localRanks := 0
	for rank := range fm {
		if rank+1 > localRanks {
			localRanks = rank + 1
		}
	}
	if localRanks == 0 || remoteRanks == 0 {
		return &OverlapMatrix{localRanks: localRanks, remoteRanks: remoteRanks}
	}

	m := mat.NewDense(localRanks, remoteRanks, nil)
	for _, local := range fm.SortedRanks() {
		for _, remote := range fm.Overlaps(local) {
			if remote >= 0 && remote < remoteRanks {
				m.Set(local, remote, 1)
			}
		}
	}

	return &OverlapMatrix{m: m, localRanks: localRanks, remoteRanks: remoteRanks}
}

// Density returns the fraction of (local, remote) rank pairs that overlap,
// in [0, 1]. A value near 0 suggests an over-partitioned or misaligned
// coupling interface; a value near 1 suggests the interfaces are barely
// partitioned at all.
func (o *OverlapMatrix) Density() float64 {
	if o.localRanks == 0 || o.remoteRanks == 0 {
		return 0
	}
	sum := 0.0
	r, c := o.m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			sum += o.m.At(i, j)
		}
	}
	return sum / float64(o.localRanks*o.remoteRanks)
}

// At reports whether local rank i overlaps remote rank j.
func (o *OverlapMatrix) At(localRank, remoteRank int) bool {
	if o.m == nil {
		return false
	}
	return o.m.At(localRank, remoteRank) != 0
}

// WriteCSV writes the matrix as a header row of remote rank numbers
// followed by one row per local rank.
func (o *OverlapMatrix) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := make([]string, o.remoteRanks+1)
	header[0] = "local_rank\\remote_rank"
	for j := 0; j < o.remoteRanks; j++ {
		header[j+1] = strconv.Itoa(j)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("diagnostics: writing overlap matrix header: %w", err)
	}
	if o.m == nil {
		return cw.Error()
	}

	r, c := o.m.Dims()
	for i := 0; i < r; i++ {
		row := make([]string, c+1)
		row[0] = strconv.Itoa(i)
		for j := 0; j < c; j++ {
			row[j+1] = strconv.FormatFloat(o.m.At(i, j), 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("diagnostics: writing overlap matrix row %d: %w", i, err)
		}
	}
	return cw.Error()
}
