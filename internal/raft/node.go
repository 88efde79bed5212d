package raft

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

// Logger is the logging interface the node writes to.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// defaultLogger is a no-op logger
type defaultLogger struct{}

func (l *defaultLogger) Debug(msg string, args ...interface{}) {}
func (l *defaultLogger) Info(msg string, args ...interface{})  {}
func (l *defaultLogger) Warn(msg string, args ...interface{})  {}
func (l *defaultLogger) Error(msg string, args ...interface{}) {}

// Applier receives committed entries in index order.
type Applier func(entry *LogEntry)

// GainController is the optional actuator for closed-loop gain tuning
// toward the leader's target SNR. The node treats it as opaque.
type GainController interface {
	SetTXGain(value float64) error
}

// NodeConfig holds configuration for a node.
type NodeConfig struct {
	ID    int  // unique node ID, 1-based
	Total int  // configured cluster size
	Mode  Mode // protocol variant

	// Fixed-leader and reliability modes assign the leader statically.
	LeaderID int

	HeartbeatInterval time.Duration
	SNRReportInterval time.Duration // 0 disables SNR reports
	TickInterval      time.Duration // timer loop granularity
	ReceiveTimeout    time.Duration // bounded transport wait

	Timer          TimerConfig
	PeerSmoothing  float64       // EWMA weight for new SNR samples
	LivenessWindow time.Duration // peer soft-expiry horizon
	SNRThreshold   float64       // drop inbound below this SNR; 0 disables

	// Reliability experiment tuning.
	PNode           float64 // local trustworthiness; leader broadcasts it
	TargetSNR       float64
	Epsilon         float64 // weighted-vote perturbation
	LeaderSNRMargin float64 // leader virtual SNR above best follower

	// Gain tuning (followers, effective when a GainController is set).
	GainInitial  float64
	GainStep     float64
	GainMin      float64
	GainMax      float64
	SNRTolerance float64

	// Rand is the randomness source for timeouts and Bernoulli draws.
	// nil means time-seeded; tests inject a fixed seed.
	Rand *rand.Rand
}

// DefaultNodeConfig returns the timings and tunables used by the radio
// experiments.
func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		Total:             3,
		Mode:              ModeStandard,
		LeaderID:          1,
		HeartbeatInterval: 1 * time.Second,
		TickInterval:      50 * time.Millisecond,
		ReceiveTimeout:    100 * time.Millisecond,
		Timer:             DefaultTimerConfig(),
		PeerSmoothing:     0.3,
		LivenessWindow:    10 * time.Second,
		PNode:             1.0,
		TargetSNR:         16.0,
		Epsilon:           0.001,
		LeaderSNRMargin:   2.0,
		GainInitial:       0.5,
		GainStep:          0.05,
		GainMin:           0.1,
		GainMax:           0.8,
		SNRTolerance:      2.0,
	}
}

// Validate checks if the configuration is valid.
func (c *NodeConfig) Validate() error {
	if c.ID <= 0 {
		return ErrInvalidConfig
	}
	if c.Total < 1 {
		return ErrInvalidConfig
	}
	if c.HeartbeatInterval <= 0 || c.TickInterval <= 0 || c.ReceiveTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.Mode != ModeStandard && c.LeaderID <= 0 {
		return ErrInvalidConfig
	}
	if c.Epsilon < 0 || c.PNode < 0 || c.PNode > 1 {
		return ErrInvalidConfig
	}
	return nil
}

// Stats are the node's operational counters. Transport and decode problems
// are counted here, never fatal.
type Stats struct {
	HeartbeatsSent     uint64
	HeartbeatsReceived uint64
	EntriesReplicated  uint64
	CommandsApplied    uint64
	DecodeErrors       uint64
	SNRFiltered        uint64
	SendErrors         uint64
	BallotsReceived    uint64
	Elections          uint64
}

// Node is one consensus participant. All protocol state lives in a single
// NodeState guarded by one coarse mutex; the receive loop and the tick
// loop are the only writers, so every transition is atomic.
type Node struct {
	cfg       NodeConfig
	state     *NodeState
	tracker   *PeerTracker
	timer     *ElectionTimer
	tally     *electionTally
	transport Transport
	logger    Logger
	applier   Applier
	gains     GainController
	rng       *rand.Rand

	electionDeadline time.Time
	lastHeartbeat    time.Time
	lastSNRReport    time.Time
	txGain           float64
	roundEntry       *LogEntry

	stats   Stats
	started int32
	stopped int32
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
}

// NewNode creates a node over the given transport.
func NewNode(cfg NodeConfig, transport Transport) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	n := &Node{
		cfg:       cfg,
		state:     NewNodeState(),
		tracker:   NewPeerTracker(cfg.PeerSmoothing, cfg.LivenessWindow),
		timer:     NewElectionTimer(cfg.Timer, rng),
		tally:     newElectionTally(),
		transport: transport,
		logger:    &defaultLogger{},
		rng:       rng,
		txGain:    cfg.GainInitial,
		stopCh:    make(chan struct{}),
	}
	n.state.PNode = cfg.PNode
	n.state.TargetSNR = cfg.TargetSNR

	if cfg.Mode != ModeStandard {
		// Static role assignment: no elections in these modes.
		n.state.CurrentTerm = 1
		n.state.LeaderID = cfg.LeaderID
		if cfg.ID == cfg.LeaderID {
			n.state.BecomeLeader(cfg.ID, n.peerIDs())
		}
	}
	return n, nil
}

// SetLogger sets the logger for the node.
func (n *Node) SetLogger(logger Logger) {
	n.logger = logger
}

// SetApplier sets the callback invoked for each committed entry.
func (n *Node) SetApplier(a Applier) {
	n.applier = a
}

// SetGainController wires the gain actuator used for SNR-report driven
// tuning.
func (n *Node) SetGainController(g GainController) {
	n.gains = g
}

// ID returns the node's ID.
func (n *Node) ID() int { return n.cfg.ID }

// Role returns the node's current role.
func (n *Node) Role() Role {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.Role
}

// IsLeader returns true if this node currently believes it is the leader.
func (n *Node) IsLeader() bool { return n.Role() == Leader }

// Term returns the current term.
func (n *Node) Term() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.CurrentTerm
}

// LeaderID returns the current leader's ID (0 if unknown).
func (n *Node) LeaderID() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.LeaderID
}

// CommitIndex returns the commit index.
func (n *Node) CommitIndex() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.CommitIndex
}

// LastApplied returns the last applied index.
func (n *Node) LastApplied() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.LastApplied
}

// LogLength returns the number of log entries.
func (n *Node) LogLength() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.Log.LastIndex()
}

// EntryAt returns the log entry at index.
func (n *Node) EntryAt(index uint64) (*LogEntry, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.Log.Get(index)
}

// Stats returns a snapshot of the operational counters.
func (n *Node) Stats() Stats {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stats
}

// ActivePeers returns the number of peers inside the liveness window.
func (n *Node) ActivePeers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tracker.LiveCount(time.Now())
}

// PeerSNR returns the smoothed SNR recorded for a peer.
func (n *Node) PeerSNR(id int) float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tracker.SNR(id)
}

// Start launches the receive and tick loops in their own goroutines.
// Callers that supervise the loops themselves run ReceiveLoop and
// TickLoop directly instead.
func (n *Node) Start() error {
	if !atomic.CompareAndSwapInt32(&n.started, 0, 1) {
		return nil // already running
	}
	n.wg.Add(2)
	go func() {
		defer n.wg.Done()
		_ = n.ReceiveLoop()
	}()
	go func() {
		defer n.wg.Done()
		_ = n.TickLoop()
	}()
	return nil
}

// Stop shuts the node down; both loops exit within one polling interval.
// Stop is idempotent.
func (n *Node) Stop() {
	if !atomic.CompareAndSwapInt32(&n.stopped, 0, 1) {
		return
	}
	close(n.stopCh)
	n.transport.Close()
	n.wg.Wait()
}

func (n *Node) isRunning() bool {
	select {
	case <-n.stopCh:
		return false
	default:
		return true
	}
}

// ReceiveLoop blocks on the transport with a bounded wait and dispatches
// datagrams into the state machine until the node stops.
func (n *Node) ReceiveLoop() error {
	for n.isRunning() {
		pkt, err := n.transport.Receive(n.cfg.ReceiveTimeout)
		if err != nil {
			switch err {
			case ErrReceiveTimeout:
				continue
			case ErrTransportClosed:
				return nil
			default:
				n.logger.Warn("receive failed", "error", err)
				continue
			}
		}
		n.handlePacket(pkt)
	}
	return nil
}

// TickLoop wakes every TickInterval and fires the election timer or the
// heartbeat cadence as appropriate.
func (n *Node) TickLoop() error {
	ticker := time.NewTicker(n.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-n.stopCh:
			return nil
		case now := <-ticker.C:
			n.tick(now)
		}
	}
}

func (n *Node) tick(now time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state.Role == Leader {
		if now.Sub(n.lastHeartbeat) >= n.cfg.HeartbeatInterval {
			n.broadcastAppend(0)
			n.lastHeartbeat = now
		}
		if n.cfg.SNRReportInterval > 0 && now.Sub(n.lastSNRReport) >= n.cfg.SNRReportInterval {
			n.sendSNRReport(now)
			n.lastSNRReport = now
		}
		return
	}

	// Followers never time out when the leader is statically assigned.
	if n.cfg.Mode != ModeStandard {
		return
	}
	// First tick arms the timer.
	if n.electionDeadline.IsZero() {
		n.resetElectionTimer(now)
		return
	}
	if now.After(n.electionDeadline) {
		n.startElection(now)
	}
}

// resetElectionTimer recomputes the randomized (possibly SNR-adaptive)
// timeout and arms the deadline. Caller holds the lock.
func (n *Node) resetElectionTimer(now time.Time) {
	d := n.timer.Next(n.tracker, now)
	n.electionDeadline = now.Add(d)
}

// handlePacket decodes one inbound datagram and runs it through the state
// machine. Malformed datagrams are dropped and counted.
func (n *Node) handlePacket(pkt *Packet) {
	msg, err := DecodeMessage(pkt.Data)
	if err != nil {
		n.mu.Lock()
		n.stats.DecodeErrors++
		n.mu.Unlock()
		n.logger.Debug("dropping undecodable datagram", "error", err)
		return
	}

	// The PHY echoes our own broadcasts back to us.
	if msg.SenderID == n.cfg.ID {
		return
	}

	now := time.Now()
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.cfg.SNRThreshold > 0 && pkt.SNR < n.cfg.SNRThreshold {
		n.stats.SNRFiltered++
		return
	}

	// The channel sample is the receiver's observation of this datagram.
	n.tracker.Observe(msg.SenderID, pkt.SNR, now)

	switch msg.Type {
	case MsgRequestVote:
		n.handleRequestVote(msg, now)
	case MsgVoteResponse:
		n.handleVoteResponse(msg, now)
	case MsgAppendEntries:
		n.handleAppendEntries(msg, now)
	case MsgAppendResponse:
		n.handleAppendResponse(msg)
	case MsgSNRReport:
		n.handleSNRReport(msg)
	}
}

func (n *Node) handleRequestVote(msg *Message, now time.Time) {
	reply := &Message{
		Type:     MsgVoteResponse,
		Term:     n.state.CurrentTerm,
		SenderID: n.cfg.ID,
	}

	if msg.Term < n.state.CurrentTerm {
		n.send(reply)
		return
	}
	if msg.Term > n.state.CurrentTerm {
		n.state.BecomeFollower(msg.Term)
		reply.Term = msg.Term
	}

	// Grant only when we have not voted for someone else this term and the
	// candidate's log is at least as up to date as ours.
	myLastIndex, myLastTerm := n.state.LastLogInfo()
	logOK := msg.LastLogTerm > myLastTerm ||
		(msg.LastLogTerm == myLastTerm && msg.LastLogIndex >= myLastIndex)

	if (n.state.VotedFor == 0 || n.state.VotedFor == msg.SenderID) && logOK {
		n.state.VotedFor = msg.SenderID
		reply.VoteGranted = true
		n.resetElectionTimer(now)
		n.logger.Debug("vote granted", "candidate", msg.SenderID, "term", msg.Term)
	}
	n.send(reply)
}

func (n *Node) handleVoteResponse(msg *Message, now time.Time) {
	if msg.Term > n.state.CurrentTerm {
		n.state.BecomeFollower(msg.Term)
		n.tally.reset()
		return
	}
	if n.state.Role != Candidate || msg.Term != n.state.CurrentTerm || !msg.VoteGranted {
		return
	}

	n.tally.record(msg.SenderID)
	if n.tally.wins(n.cfg.Total) {
		n.becomeLeader(now)
	}
}

func (n *Node) handleAppendEntries(msg *Message, now time.Time) {
	n.stats.HeartbeatsReceived++

	reply := &Message{
		Type:         MsgAppendResponse,
		Term:         n.state.CurrentTerm,
		SenderID:     n.cfg.ID,
		LastLogIndex: n.state.Log.LastIndex(),
	}

	if msg.Term < n.state.CurrentTerm {
		n.send(reply)
		return
	}
	if msg.Term > n.state.CurrentTerm {
		n.state.BecomeFollower(msg.Term)
	} else if n.state.Role == Candidate {
		// A valid leader exists for this term.
		n.state.BecomeFollower(msg.Term)
	}
	reply.Term = n.state.CurrentTerm
	n.state.LeaderID = msg.SenderID
	n.resetElectionTimer(now)
	n.adoptExperimentParams(msg)

	if n.cfg.Mode == ModeReliability {
		n.reliabilityAppend(msg, reply)
		n.send(reply)
		return
	}

	// Prefix consistency check: a mismatch truncates the conflicting
	// suffix and forces the leader to back up.
	log := n.state.Log
	if msg.PrevLogIndex > 0 {
		if log.LastIndex() < msg.PrevLogIndex {
			reply.LastLogIndex = log.LastIndex()
			n.send(reply)
			return
		}
		if log.TermAt(msg.PrevLogIndex) != msg.PrevLogTerm {
			log.TruncateFrom(msg.PrevLogIndex)
			reply.LastLogIndex = log.LastIndex()
			n.send(reply)
			return
		}
	}

	// Append new entries; same-index same-term re-deliveries are no-ops.
	for _, entry := range msg.Entries {
		if entry.Index > log.LastIndex() {
			log.Append(entry)
		} else if log.TermAt(entry.Index) != entry.Term {
			log.TruncateFrom(entry.Index)
			log.Append(entry)
		}
	}

	if msg.LeaderCommit > n.state.CommitIndex {
		commit := msg.LeaderCommit
		if last := log.LastIndex(); last < commit {
			commit = last
		}
		n.state.CommitIndex = commit
		n.applyCommitted()
	}

	reply.Success = true
	reply.LastLogIndex = log.LastIndex()
	reply.VoteRequestID = msg.VoteRequestID
	n.send(reply)
}

func (n *Node) handleAppendResponse(msg *Message) {
	if msg.Term > n.state.CurrentTerm {
		n.state.BecomeFollower(msg.Term)
		return
	}
	if n.state.Role != Leader {
		return
	}
	// Other traffic shares the channel: replication acks and ballots only
	// count from configured cluster members.
	if !n.inCluster(msg.SenderID) {
		return
	}

	if n.cfg.Mode == ModeReliability {
		// Ballots for a decision round; only the current round counts,
		// and re-delivered ballots overwrite idempotently. Replies to
		// bare heartbeats carry round ID 0 and are ignored.
		if msg.VoteRequestID > 0 && msg.VoteRequestID == n.state.VoteRequestID {
			n.state.Ballots[msg.SenderID] = msg.Success
			n.stats.BallotsReceived++
		}
		return
	}

	if msg.Success {
		n.state.MatchIndex[msg.SenderID] = msg.LastLogIndex
		n.state.NextIndex[msg.SenderID] = msg.LastLogIndex + 1
		n.tryCommit()
	} else {
		// Back up one entry; the next heartbeat carries the earlier
		// suffix. Retries are driven purely by the heartbeat cadence.
		next := n.state.NextIndex[msg.SenderID]
		if next > 1 {
			n.state.NextIndex[msg.SenderID] = next - 1
		} else {
			n.state.NextIndex[msg.SenderID] = 1
		}
	}
}

// tryCommit scans from the log tail for the highest index replicated on a
// strict majority, then applies and immediately propagates it.
func (n *Node) tryCommit() {
	log := n.state.Log
	oldCommit := n.state.CommitIndex

	for idx := log.LastIndex(); idx > n.state.CommitIndex; idx-- {
		count := 1 // self
		for _, match := range n.state.MatchIndex {
			if match >= idx {
				count++
			}
		}
		if count > n.cfg.Total/2 {
			n.state.CommitIndex = idx
			n.applyCommitted()
			break
		}
	}

	if n.state.CommitIndex > oldCommit {
		n.broadcastAppend(0)
		n.lastHeartbeat = time.Now()
	}
}

// applyCommitted applies entries up to commitIndex in index order. Caller
// holds the lock.
func (n *Node) applyCommitted() {
	for n.state.LastApplied < n.state.CommitIndex {
		n.state.LastApplied++
		entry, err := n.state.Log.Get(n.state.LastApplied)
		if err != nil {
			break
		}
		n.stats.CommandsApplied++
		if n.applier != nil {
			n.applier(entry)
		}
	}
}

func (n *Node) startElection(now time.Time) {
	term := n.state.BecomeCandidate()
	n.state.VotedFor = n.cfg.ID
	n.tally.reset()
	n.tally.record(n.cfg.ID)
	n.resetElectionTimer(now)
	n.stats.Elections++

	lastIndex, lastTerm := n.state.LastLogInfo()
	n.logger.Info("starting election", "term", term)
	n.send(&Message{
		Type:         MsgRequestVote,
		Term:         term,
		SenderID:     n.cfg.ID,
		LastLogIndex: lastIndex,
		LastLogTerm:  lastTerm,
	})

	// Single-node cluster wins immediately.
	if n.tally.wins(n.cfg.Total) {
		n.becomeLeader(now)
	}
}

func (n *Node) becomeLeader(now time.Time) {
	n.logger.Info("became leader", "node", n.cfg.ID, "term", n.state.CurrentTerm)
	n.state.BecomeLeader(n.cfg.ID, n.peerIDs())
	n.broadcastAppend(0)
	n.lastHeartbeat = now
}

// inCluster reports whether id names a configured cluster member other
// than this node.
func (n *Node) inCluster(id int) bool {
	return id >= 1 && id <= n.cfg.Total && id != n.cfg.ID
}

// peerIDs enumerates the configured cluster, excluding self.
func (n *Node) peerIDs() []int {
	ids := make([]int, 0, n.cfg.Total-1)
	for i := 1; i <= n.cfg.Total; i++ {
		if i != n.cfg.ID {
			ids = append(ids, i)
		}
	}
	return ids
}

// Propose appends a command to the leader's log and triggers replication.
// The entry is logged, not yet committed, when Propose returns.
func (n *Node) Propose(command string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state.Role != Leader {
		return ErrNotLeader
	}
	entry := NewLogEntry(n.state.CurrentTerm, n.state.Log.LastIndex()+1, command)
	n.state.Log.Append(entry)
	n.logger.Info("proposed", "index", entry.Index, "command", command)
	n.broadcastAppend(0)
	n.lastHeartbeat = time.Now()
	return nil
}

// broadcastAppend sends one AppendEntries covering every follower: the
// suffix starts at the smallest nextIndex, so a single broadcast both
// heartbeats and re-delivers unacknowledged entries. requestID tags a
// reliability decision round (0 otherwise). Caller holds the lock.
func (n *Node) broadcastAppend(requestID uint64) {
	prev := n.state.MinNextIndex() - 1
	entries := n.state.Log.Slice(prev + 1)

	msg := &Message{
		Type:         MsgAppendEntries,
		Term:         n.state.CurrentTerm,
		SenderID:     n.cfg.ID,
		PrevLogIndex: prev,
		PrevLogTerm:  n.state.Log.TermAt(prev),
		Entries:      entries,
		LeaderCommit: n.state.CommitIndex,
	}
	if n.cfg.Mode == ModeReliability {
		msg.TargetSNR = n.state.TargetSNR
		msg.PNode = n.state.PNode
		msg.VoteRequestID = requestID
	}
	n.send(msg)
	n.stats.HeartbeatsSent++
	n.stats.EntriesReplicated += uint64(len(entries))
}

// sendSNRReport broadcasts the smoothed per-peer SNR table so followers
// can steer their gain toward the target. Caller holds the lock.
func (n *Node) sendSNRReport(now time.Time) {
	report := n.tracker.Snapshot(now)
	if len(report) == 0 {
		return
	}
	n.send(&Message{
		Type:      MsgSNRReport,
		Term:      n.state.CurrentTerm,
		SenderID:  n.cfg.ID,
		SNRReport: report,
		TargetSNR: n.state.TargetSNR,
		PNode:     n.state.PNode,
	})
}

// handleSNRReport steers the local TX gain toward the leader's target
// using the leader-observed SNR for this node.
func (n *Node) handleSNRReport(msg *Message) {
	n.adoptExperimentParams(msg)
	if n.gains == nil {
		return
	}
	snr, ok := msg.SNRReport[n.cfg.ID]
	if !ok {
		return
	}

	target := n.state.TargetSNR
	gain := n.txGain
	switch {
	case snr < target-n.cfg.SNRTolerance:
		gain += n.cfg.GainStep
	case snr > target+n.cfg.SNRTolerance:
		gain -= n.cfg.GainStep
	default:
		return
	}
	if gain < n.cfg.GainMin {
		gain = n.cfg.GainMin
	}
	if gain > n.cfg.GainMax {
		gain = n.cfg.GainMax
	}
	if gain == n.txGain {
		return
	}
	if err := n.gains.SetTXGain(gain); err != nil {
		n.logger.Warn("gain adjustment failed", "error", err)
		return
	}
	n.txGain = gain
	n.logger.Debug("tx gain adjusted", "gain", gain, "observedSnr", snr, "targetSnr", target)
}

// adoptExperimentParams picks up leader-broadcast tunables. Unset fields
// (<= 0) keep the current values.
func (n *Node) adoptExperimentParams(msg *Message) {
	if msg.PNode > 0 && msg.PNode != n.state.PNode {
		n.logger.Debug("pNode updated", "old", n.state.PNode, "new", msg.PNode)
		n.state.PNode = msg.PNode
	}
	if msg.TargetSNR > 0 && msg.TargetSNR != n.state.TargetSNR {
		n.state.TargetSNR = msg.TargetSNR
	}
}

// send encodes and broadcasts a message. Send failures are counted and
// logged; the heartbeat cadence is the only retry mechanism.
func (n *Node) send(msg *Message) {
	data, err := EncodeMessage(msg)
	if err != nil {
		n.stats.SendErrors++
		n.logger.Error("encode failed", "type", msg.Type, "error", err)
		return
	}
	if err := n.transport.Send(data); err != nil {
		n.stats.SendErrors++
		n.logger.Warn("send failed", "type", msg.Type, "error", err)
	}
}
