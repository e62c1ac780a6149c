package geom

import (
	"encoding/json"
	"sort"
)

// UnsetFeedback is the on-wire sentinel list meaning "no feedback received
// yet for this local rank". It is distinct from an empty overlap list,
// which is never transmitted at all but is a perfectly valid outcome once
// resolved.
var UnsetFeedback = []int{-1}

// FeedbackMap maps a local rank identifier to the ordered list of remote
// ranks it overlaps. It is the output of the two-level connectivity
// protocol and is what the local master eventually reports back to the
// remote master.
type FeedbackMap map[int][]int

// Overlaps returns the overlap list for rank, translating the on-wire
// UnsetFeedback sentinel back into an empty slice so in-process consumers
// never have to special-case -1. Only the wire codec and the protocol
// itself deal with the raw sentinel value.
func (m FeedbackMap) Overlaps(rank int) []int {
	ids, ok := m[rank]
	if !ok || (len(ids) == 1 && ids[0] == -1) {
		return nil
	}
	return ids
}

// SortedRanks returns the map's keys in ascending order.
func (m FeedbackMap) SortedRanks() []int {
	ranks := make([]int, 0, len(m))
	for rank := range m {
		ranks = append(ranks, rank)
	}
	sort.Ints(ranks)
	return ranks
}

type feedbackMapEntryJSON struct {
	Rank int   `json:"rank"`
	IDs  []int `json:"ids"`
}

type feedbackMapJSON struct {
	Size    int                    `json:"size"`
	Entries []feedbackMapEntryJSON `json:"entries"`
}

// MarshalJSON encodes m as {"size": N, "entries": [{"rank": r, "ids": [...]}]}
// in ascending rank order, for the same determinism reason BoundingBoxMap's
// MarshalJSON sorts its entries.
func (m FeedbackMap) MarshalJSON() ([]byte, error) {
	ranks := m.SortedRanks()
	wire := feedbackMapJSON{
		Size:    len(m),
		Entries: make([]feedbackMapEntryJSON, 0, len(ranks)),
	}
	for _, rank := range ranks {
		wire.Entries = append(wire.Entries, feedbackMapEntryJSON{Rank: rank, IDs: m[rank]})
	}
	return json.Marshal(wire)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (m *FeedbackMap) UnmarshalJSON(data []byte) error {
	var wire feedbackMapJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	out := make(FeedbackMap, len(wire.Entries))
	for _, entry := range wire.Entries {
		out[entry.Rank] = entry.IDs
	}
	*m = out
	return nil
}
