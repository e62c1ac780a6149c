package geom

import (
	"encoding/json"
	"sort"
)

// BoundingBoxMap maps a remote rank identifier to that rank's bounding box.
// Keys are dense in [0, size) by construction, but the type itself does not
// enforce density so that partially-populated maps (e.g. the placeholder
// pre-sizing step before a receive) are representable.
type BoundingBoxMap map[int]BoundingBox

// NewPlaceholderBoundingBoxMap pre-sizes a BoundingBoxMap with keys
// 0..size-1 all mapped to the Lo=Hi=-1 placeholder box, as required before
// a BBM receive can deserialize in place.
func NewPlaceholderBoundingBoxMap(size, dimensions int) BoundingBoxMap {
	m := make(BoundingBoxMap, size)
	for rank := 0; rank < size; rank++ {
		m[rank] = PlaceholderSentinel(dimensions)
	}
	return m
}

// SortedRanks returns the map's keys in ascending order. Go map iteration
// order is randomized; every place this core iterates a BoundingBoxMap must
// go through SortedRanks instead, since ascending remote-rank iteration is
// required for the resulting overlap lists to be deterministic across runs.
func (m BoundingBoxMap) SortedRanks() []int {
	ranks := make([]int, 0, len(m))
	for rank := range m {
		ranks = append(ranks, rank)
	}
	sort.Ints(ranks)
	return ranks
}

// boundingBoxMapEntryJSON is the on-wire shape of one BoundingBoxMap entry.
// Using an explicit shadow struct (rather than json-tagging the map
// directly) keeps the wire format an ordered list of (rank, box) pairs
// instead of a JSON object, the same MarshalJSON/UnmarshalJSON-via-
// shadow-struct approach the rest of this codebase's codecs use.
type boundingBoxMapEntryJSON struct {
	Rank int         `json:"rank"`
	Box  []IntervalJ `json:"box"`
}

// IntervalJ is the on-wire shape of one Interval: a [lo, hi] pair rather
// than an object.
type IntervalJ [2]float64

type boundingBoxMapJSON struct {
	Size    int                       `json:"size"`
	Entries []boundingBoxMapEntryJSON `json:"entries"`
}

// MarshalJSON encodes m as {"size": N, "entries": [{"rank": r, "box": [[lo,hi],...]}, ...]}
// with entries in ascending rank order, so that two runs with identical
// contents produce byte-identical output.
func (m BoundingBoxMap) MarshalJSON() ([]byte, error) {
	ranks := m.SortedRanks()
	wire := boundingBoxMapJSON{
		Size:    len(m),
		Entries: make([]boundingBoxMapEntryJSON, 0, len(ranks)),
	}
	for _, rank := range ranks {
		box := m[rank]
		entry := boundingBoxMapEntryJSON{Rank: rank, Box: make([]IntervalJ, len(box))}
		for d, iv := range box {
			entry.Box[d] = IntervalJ{iv.Lo, iv.Hi}
		}
		wire.Entries = append(wire.Entries, entry)
	}
	return json.Marshal(wire)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (m *BoundingBoxMap) UnmarshalJSON(data []byte) error {
	var wire boundingBoxMapJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	out := make(BoundingBoxMap, len(wire.Entries))
	for _, entry := range wire.Entries {
		box := make(BoundingBox, len(entry.Box))
		for d, iv := range entry.Box {
			box[d] = Interval{Lo: iv[0], Hi: iv[1]}
		}
		out[entry.Rank] = box
	}
	*m = out
	return nil
}
