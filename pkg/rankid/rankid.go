// Package rankid identifies a single rank within a coupling participant,
// for use in logging and diagnostics output where a bare integer rank is
// ambiguous once more than one participant is in play.
package rankid

import (
	"fmt"
	"strconv"
	"strings"
)

// RankID names one rank: which participant it belongs to, and its rank
// number within that participant's intra-participant group.
type RankID struct {
	Participant string
	Rank        int
}

func New(participant string, rank int) RankID {
	return RankID{Participant: participant, Rank: rank}
}

func (id RankID) String() string {
	return fmt.Sprintf("%s/%d", id.Participant, id.Rank)
}

func (id RankID) IsZero() bool {
	return id.Participant == "" && id.Rank == 0
}

func (id RankID) Equal(other RankID) bool {
	return id.Participant == other.Participant && id.Rank == other.Rank
}

// Parse reverses String: "participant/rank" back into a RankID.
func Parse(s string) (RankID, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return RankID{}, fmt.Errorf("rankid: invalid format %q, want participant/rank", s)
	}
	rank, err := strconv.Atoi(parts[1])
	if err != nil {
		return RankID{}, fmt.Errorf("rankid: invalid rank in %q: %w", s, err)
	}
	return RankID{Participant: parts[0], Rank: rank}, nil
}
