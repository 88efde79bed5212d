package raft

// Role is a node's position in the cluster.
type Role uint8

// Node roles.
const (
	Follower Role = iota
	Candidate
	Leader
)

// String returns the string representation of a role.
func (r Role) String() string {
	switch r {
	case Follower:
		return "follower"
	case Candidate:
		return "candidate"
	case Leader:
		return "leader"
	default:
		return "unknown"
	}
}

// Mode selects which protocol variant the node runs. The three variants
// share one state machine; the mode only changes election participation
// and the append path.
type Mode uint8

const (
	// ModeStandard is self-electing Raft with the full log consistency
	// check.
	ModeStandard Mode = iota

	// ModeFixedLeader skips elections: roles are assigned at start and a
	// follower never times out. Replication behaves as in ModeStandard.
	ModeFixedLeader

	// ModeReliability models followers as imperfect sensors: every append
	// is answered with a Bernoulli(pNode) ballot and entries are appended
	// unconditionally, without the prefix consistency check. This trades
	// the log matching property for decision independence between rounds;
	// it is kept as its own mode and never merged with the safe path.
	ModeReliability
)

// String returns the string representation of a mode.
func (m Mode) String() string {
	switch m {
	case ModeStandard:
		return "standard"
	case ModeFixedLeader:
		return "fixed-leader"
	case ModeReliability:
		return "reliability"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name. Unknown names fall back to ModeStandard.
func ParseMode(s string) Mode {
	switch s {
	case "fixed-leader":
		return ModeFixedLeader
	case "reliability":
		return ModeReliability
	default:
		return ModeStandard
	}
}

// NodeState is the per-process protocol state. It carries no lock of its
// own: the owning Node guards every access with its single state mutex, so
// all transitions are atomic with respect to each other.
type NodeState struct {
	// Persistent in standard Raft; held in memory only here, by explicit
	// simplification (no crash recovery in this design).
	CurrentTerm uint64
	VotedFor    int // 0 means not voted this term
	Log         *Log

	// Volatile.
	Role        Role
	CommitIndex uint64
	LastApplied uint64
	LeaderID    int // 0 means unknown

	// Leader-only volatile state, reinitialized after election.
	NextIndex  map[int]uint64
	MatchIndex map[int]uint64

	// Reliability experiment state.
	PNode             float64
	TargetSNR         float64
	VoteRequestID     uint64
	Ballots           map[int]bool // follower ID -> ballot for the current round
	LastRoundAppended uint64       // follower side: highest round whose entry is in the log
}

// NewNodeState creates zeroed state: Follower at term 0 with an empty log.
func NewNodeState() *NodeState {
	return &NodeState{
		Log:        NewLog(),
		Role:       Follower,
		NextIndex:  make(map[int]uint64),
		MatchIndex: make(map[int]uint64),
		PNode:      1.0,
		Ballots:    make(map[int]bool),
	}
}

// BecomeFollower adopts a (possibly newer) term and clears the vote record.
func (s *NodeState) BecomeFollower(term uint64) {
	s.Role = Follower
	s.CurrentTerm = term
	s.VotedFor = 0
}

// BecomeCandidate starts a candidacy: increment term, clear the known
// leader. The caller records the self-vote. Returns the new term.
func (s *NodeState) BecomeCandidate() uint64 {
	s.Role = Candidate
	s.CurrentTerm++
	s.LeaderID = 0
	return s.CurrentTerm
}

// BecomeLeader initializes leader volatile state for the given peers:
// nextIndex = len(log)+1, matchIndex = 0.
func (s *NodeState) BecomeLeader(selfID int, peerIDs []int) {
	s.Role = Leader
	s.LeaderID = selfID
	next := s.Log.LastIndex() + 1
	for _, id := range peerIDs {
		s.NextIndex[id] = next
		s.MatchIndex[id] = 0
	}
}

// LastLogInfo returns the index and term of the last log entry.
func (s *NodeState) LastLogInfo() (index, term uint64) {
	return s.Log.LastIndex(), s.Log.LastTerm()
}

// MinNextIndex returns the smallest nextIndex across peers, or
// len(log)+1 when there are none. Replication broadcasts from this point
// so one datagram serves every lagging follower.
func (s *NodeState) MinNextIndex() uint64 {
	min := s.Log.LastIndex() + 1
	for _, n := range s.NextIndex {
		if n < min {
			min = n
		}
	}
	if min < 1 {
		min = 1
	}
	return min
}
