package raft

import "time"

// Reliability mode replaces log-consistency voting with trustworthiness
// voting: each follower answers a decision round with a Bernoulli draw at
// its configured pNode, and the leader weighs ballots by link quality.
// Logs on followers grow unconditionally and are only loosely
// synchronized; the decision outcome is the product, not the log.

// RoundResult is the leader-side outcome of one decision round.
type RoundResult struct {
	RequestID uint64
	Outcome   WeightedOutcome
	Yes       int // follower yes ballots
	No        int // follower no ballots
	Replies   int // distinct followers heard, the effective cluster scale
	LeaderYes bool
}

// reliabilityAppend is the follower half of a decision round. The entry
// is appended unconditionally (no prefix check) and the ballot is an
// independent Bernoulli draw, so success expresses trustworthiness, not
// log state. Caller holds the lock.
func (n *Node) reliabilityAppend(msg *Message, reply *Message) {
	log := n.state.Log
	var received uint64
	for _, entry := range msg.Entries {
		received = entry.Index
		// Resends of an already-appended round must not duplicate the
		// entry; everything else appends without any consistency check.
		if msg.VoteRequestID > 0 && msg.VoteRequestID <= n.state.LastRoundAppended {
			continue
		}
		// The leader does not grow its own log between rounds, so wire
		// indexes repeat; the local log keeps its own contiguous order.
		local := *entry
		local.Index = log.LastIndex() + 1
		log.Append(&local)
	}
	if msg.VoteRequestID > 0 && len(msg.Entries) > 0 {
		n.state.LastRoundAppended = msg.VoteRequestID
	}

	if msg.LeaderCommit > n.state.CommitIndex {
		commit := msg.LeaderCommit
		if last := log.LastIndex(); last < commit {
			commit = last
		}
		n.state.CommitIndex = commit
		n.applyCommitted()
	}

	draw := n.rng.Float64() < n.state.PNode
	reply.Success = draw
	reply.VoteRequestID = msg.VoteRequestID
	// Acknowledge the delivered index even on a no ballot; resends of the
	// same round must not re-append.
	if received > 0 {
		reply.LastLogIndex = received
	} else {
		reply.LastLogIndex = log.LastIndex()
	}
	if msg.VoteRequestID > 0 {
		n.logger.Debug("ballot cast", "round", msg.VoteRequestID, "granted", draw, "pNode", n.state.PNode)
	}
}

// StartDecisionRound opens a new round for command: it allocates a fresh
// round ID, clears collected ballots, and broadcasts the decision entry
// tagged with that ID. Only the fixed leader may open rounds.
func (n *Node) StartDecisionRound(command string) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.cfg.Mode != ModeReliability {
		return 0, ErrNotReliabilityMode
	}
	if n.state.Role != Leader {
		return 0, ErrNotLeader
	}

	n.state.VoteRequestID++
	id := n.state.VoteRequestID
	n.state.Ballots = make(map[int]bool)

	entry := NewLogEntry(n.state.CurrentTerm, n.state.Log.LastIndex()+1, command)
	n.roundEntry = entry
	n.broadcastDecision(id, entry)
	n.logger.Info("decision round opened", "round", id, "command", command)
	return id, nil
}

// ResendDecisionRound rebroadcasts the current round under the same ID so
// late or lossy followers can still cast a ballot. The round entry rides
// along again; followers that already appended it skip the duplicate.
// Ballots already collected are kept; followers answering twice overwrite
// idempotently.
func (n *Node) ResendDecisionRound() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.cfg.Mode != ModeReliability {
		return ErrNotReliabilityMode
	}
	if n.state.Role != Leader || n.state.VoteRequestID == 0 {
		return ErrNotLeader
	}
	n.broadcastDecision(n.state.VoteRequestID, n.roundEntry)
	return nil
}

// broadcastDecision sends the round's AppendEntries. A nil entry resends
// the round as a bare tagged heartbeat. Caller holds the lock.
func (n *Node) broadcastDecision(id uint64, entry *LogEntry) {
	msg := &Message{
		Type:          MsgAppendEntries,
		Term:          n.state.CurrentTerm,
		SenderID:      n.cfg.ID,
		LeaderCommit:  n.state.CommitIndex,
		TargetSNR:     n.state.TargetSNR,
		PNode:         n.state.PNode,
		VoteRequestID: id,
	}
	if entry != nil {
		msg.PrevLogIndex = entry.Index - 1
		msg.Entries = []*LogEntry{entry}
	}
	n.send(msg)
	n.stats.HeartbeatsSent++
}

// FinishDecisionRound closes the current round and aggregates ballots.
// Follower ballots are weighted by smoothed link SNR; the leader casts
// its own Bernoulli ballot at a virtual SNR above the best follower, so
// it participates without ever being outweighed by a single follower.
func (n *Node) FinishDecisionRound() (*RoundResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.cfg.Mode != ModeReliability {
		return nil, ErrNotReliabilityMode
	}
	if n.state.Role != Leader || n.state.VoteRequestID == 0 {
		return nil, ErrNotLeader
	}

	res := &RoundResult{RequestID: n.state.VoteRequestID}
	ballots := make([]Ballot, 0, len(n.state.Ballots)+1)

	maxSNR := 0.0
	for id, granted := range n.state.Ballots {
		if id == n.cfg.ID {
			continue
		}
		snr := n.tracker.SNR(id)
		if snr > maxSNR {
			maxSNR = snr
		}
		ballots = append(ballots, Ballot{VoterID: id, Granted: granted, SNR: snr})
		if granted {
			res.Yes++
		} else {
			res.No++
		}
	}
	res.Replies = len(ballots)

	if maxSNR == 0 {
		maxSNR = n.state.TargetSNR
	}
	leaderYes := n.rng.Float64() < n.state.PNode
	res.LeaderYes = leaderYes
	ballots = append(ballots, Ballot{
		VoterID: LeaderVirtualID,
		Granted: leaderYes,
		SNR:     maxSNR + n.cfg.LeaderSNRMargin,
	})

	res.Outcome = CollectWeighted(ballots, n.cfg.Epsilon)
	n.state.Ballots = make(map[int]bool)
	n.roundEntry = nil
	n.logger.Info("decision round closed",
		"round", res.RequestID,
		"consensus", res.Outcome.Consensus,
		"yes", res.Yes, "no", res.No,
		"replies", res.Replies,
		"yesWeight", res.Outcome.YesWeight,
		"noWeight", res.Outcome.NoWeight)
	return res, nil
}

// RunDecisionRound drives one full round: open, resend on a cadence until
// the deadline, then aggregate. It is the call the experiment driver
// loops over.
func (n *Node) RunDecisionRound(command string, deadline, resendEvery time.Duration) (*RoundResult, error) {
	if _, err := n.StartDecisionRound(command); err != nil {
		return nil, err
	}

	end := time.Now().Add(deadline)
	for {
		remaining := time.Until(end)
		if remaining <= 0 {
			break
		}
		wait := resendEvery
		if wait <= 0 || wait > remaining {
			wait = remaining
		}
		select {
		case <-n.stopCh:
			return nil, ErrNodeStopped
		case <-time.After(wait):
		}
		if time.Until(end) <= 0 {
			break
		}
		if resendEvery > 0 {
			if err := n.ResendDecisionRound(); err != nil {
				return nil, err
			}
		}
	}
	return n.FinishDecisionRound()
}

// SetPNode updates the local trustworthiness parameter. On the leader the
// new value rides on the next broadcast and reconfigures every follower.
func (n *Node) SetPNode(p float64) error {
	if p < 0 || p > 1 {
		return ErrInvalidConfig
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.state.PNode = p
	return nil
}

// SetTargetSNR updates the target SNR broadcast to followers.
func (n *Node) SetTargetSNR(snr float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.state.TargetSNR = snr
}

// PNode returns the current trustworthiness parameter.
func (n *Node) PNode() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.PNode
}
