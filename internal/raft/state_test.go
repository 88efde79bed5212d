package raft

import "testing"

func TestRoleTransitions(t *testing.T) {
	s := NewNodeState()
	if s.Role != Follower || s.CurrentTerm != 0 {
		t.Fatalf("fresh state should be follower at term 0: %+v", s)
	}

	term := s.BecomeCandidate()
	if term != 1 || s.Role != Candidate {
		t.Errorf("candidacy should bump the term: term=%d role=%v", term, s.Role)
	}
	if s.LeaderID != 0 {
		t.Error("candidacy should clear the known leader")
	}

	s.VotedFor = 1
	s.BecomeFollower(5)
	if s.Role != Follower || s.CurrentTerm != 5 {
		t.Errorf("BecomeFollower: role=%v term=%d", s.Role, s.CurrentTerm)
	}
	if s.VotedFor != 0 {
		t.Error("adopting a new term should clear the vote record")
	}
}

func TestBecomeLeaderInitializesIndexes(t *testing.T) {
	s := NewNodeState()
	s.Log.Append(&LogEntry{Term: 1, Index: 1})
	s.Log.Append(&LogEntry{Term: 1, Index: 2})

	s.BecomeLeader(1, []int{2, 3})
	if s.Role != Leader || s.LeaderID != 1 {
		t.Errorf("leader transition failed: %+v", s)
	}
	for _, id := range []int{2, 3} {
		if s.NextIndex[id] != 3 {
			t.Errorf("NextIndex[%d] = %d, want 3", id, s.NextIndex[id])
		}
		if s.MatchIndex[id] != 0 {
			t.Errorf("MatchIndex[%d] = %d, want 0", id, s.MatchIndex[id])
		}
	}
}

func TestMinNextIndex(t *testing.T) {
	s := NewNodeState()
	s.Log.Append(&LogEntry{Term: 1, Index: 1})
	s.Log.Append(&LogEntry{Term: 1, Index: 2})

	// No peers: replication starts after the tail.
	if got := s.MinNextIndex(); got != 3 {
		t.Errorf("MinNextIndex with no peers = %d, want 3", got)
	}

	s.NextIndex[2] = 3
	s.NextIndex[3] = 1
	if got := s.MinNextIndex(); got != 1 {
		t.Errorf("MinNextIndex = %d, want 1 (most lagging follower)", got)
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"standard":     ModeStandard,
		"fixed-leader": ModeFixedLeader,
		"reliability":  ModeReliability,
		"bogus":        ModeStandard,
		"":             ModeStandard,
	}
	for in, want := range cases {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestModeString(t *testing.T) {
	if ModeReliability.String() != "reliability" || ModeFixedLeader.String() != "fixed-leader" {
		t.Error("mode names drifted")
	}
	if Leader.String() != "leader" || Candidate.String() != "candidate" || Follower.String() != "follower" {
		t.Error("role names drifted")
	}
}
