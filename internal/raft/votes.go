package raft

// LeaderVirtualID is the voter ID used for the leader's own ballot in a
// weighted decision round. Negative so it can never collide with a
// follower ID.
const LeaderVirtualID = -1

// Ballot is one participant's answer in a decision round, paired with the
// smoothed SNR of the link it arrived on.
type Ballot struct {
	VoterID int
	Granted bool
	SNR     float64
}

// WeightedOutcome is the result of aggregating a decision round.
type WeightedOutcome struct {
	YesWeight    float64
	NoWeight     float64
	Consensus    bool
	Participants int
}

// CollectWeighted aggregates ballots with an SNR-derived weight:
//
//	w_i = 1 + epsilon * (snr_i - snr_min) / (snr_max - snr_min)
//
// epsilon is small, so the weights only matter for exact ties: when the
// yes/no counts are equal, the side with better links wins
// deterministically; otherwise the plain majority decides. Consensus is
// YesWeight > NoWeight. The function is pure: identical input always
// produces the identical outcome.
func CollectWeighted(ballots []Ballot, epsilon float64) WeightedOutcome {
	out := WeightedOutcome{Participants: len(ballots)}
	if len(ballots) == 0 {
		return out
	}

	snrMin := ballots[0].SNR
	snrMax := ballots[0].SNR
	for _, b := range ballots[1:] {
		if b.SNR < snrMin {
			snrMin = b.SNR
		}
		if b.SNR > snrMax {
			snrMax = b.SNR
		}
	}
	snrRange := snrMax - snrMin
	if snrRange <= 0 {
		snrRange = 1.0
	}

	for _, b := range ballots {
		w := 1.0 + epsilon*(b.SNR-snrMin)/snrRange
		if b.Granted {
			out.YesWeight += w
		} else {
			out.NoWeight += w
		}
	}
	out.Consensus = out.YesWeight > out.NoWeight
	return out
}

// electionTally tracks granted votes during a candidacy. The candidate's
// own vote is recorded like any other.
type electionTally struct {
	granted map[int]bool
}

func newElectionTally() *electionTally {
	return &electionTally{granted: make(map[int]bool)}
}

// record notes a granted vote; duplicates from re-delivered responses are
// idempotent.
func (t *electionTally) record(voterID int) {
	t.granted[voterID] = true
}

func (t *electionTally) count() int {
	return len(t.granted)
}

// wins reports whether the tally exceeds half of the cluster.
func (t *electionTally) wins(total int) bool {
	return len(t.granted) > total/2
}

func (t *electionTally) reset() {
	t.granted = make(map[int]bool)
}
