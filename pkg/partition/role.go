package partition

import "github.com/rbbox/coupling/pkg/comm"

// Role identifies which of the three positions a rank occupies within its
// participant's rank group.
type Role int

const (
	// Master is rank 0 of a multi-rank participant.
	Master Role = iota
	// Slave is any rank > 0 of a multi-rank participant.
	Slave
	// Solo is the only rank of a single-rank participant. Both protocol
	// phases are no-ops for Solo.
	Solo
)

func (r Role) String() string {
	switch r {
	case Master:
		return "master"
	case Slave:
		return "slave"
	case Solo:
		return "solo"
	default:
		return "unknown"
	}
}

// RoleOf derives a rank's Role from its intra-participant channel, rather
// than from any process-global state.
func RoleOf(intra comm.IntraComm) Role {
	switch {
	case intra.Size() == 1:
		return Solo
	case intra.Rank() == 0:
		return Master
	default:
		return Slave
	}
}
