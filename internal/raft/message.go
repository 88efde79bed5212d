package raft

import (
	"encoding/json"
	"fmt"
)

// Message types carried in the wire envelope.
const (
	MsgRequestVote    = "RequestVote"
	MsgVoteResponse   = "VoteResponse"
	MsgAppendEntries  = "AppendEntries"
	MsgAppendResponse = "AppendResponse"
	MsgSNRReport      = "SNRReport"
)

// ChannelSample is the receiver-side channel observation for a single
// datagram. It is written into the envelope by the physical layer (the SNR
// injector in the flowgraph, or the simulated network in tests), never by
// the sender.
type ChannelSample struct {
	SNR float64 `json:"snr"`
}

// Message is the wire envelope for all node-to-node traffic. It is a tagged
// union: Type selects which fields are meaningful, the rest keep their
// defined defaults.
type Message struct {
	Type     string `json:"type"`
	Term     uint64 `json:"term"`
	SenderID int    `json:"sender_id"`

	// Log replication (AppendEntries).
	PrevLogIndex uint64      `json:"prev_log_index,omitempty"`
	PrevLogTerm  uint64      `json:"prev_log_term,omitempty"`
	Entries      []*LogEntry `json:"entries,omitempty"`
	LeaderCommit uint64      `json:"leader_commit,omitempty"`

	// Vote requests and responses.
	LastLogIndex uint64 `json:"last_log_index,omitempty"`
	LastLogTerm  uint64 `json:"last_log_term,omitempty"`
	Success      bool   `json:"success,omitempty"`
	VoteGranted  bool   `json:"vote_granted,omitempty"`

	// SNR reporting (leader -> followers, for gain tuning).
	SNRReport map[int]float64 `json:"snr_report,omitempty"`
	TargetSNR float64         `json:"target_snr,omitempty"`

	// Reliability experiment extras. PNode <= 0 means "not set"; receivers
	// keep their current value.
	PNode         float64 `json:"p_node,omitempty"`
	VoteRequestID uint64  `json:"vote_request_id,omitempty"`

	// Phy is attached by the transport on receipt; it is this receiver's
	// observation of this datagram.
	Phy ChannelSample `json:"phy_state"`
}

// EncodeMessage serializes a message to its wire form.
func EncodeMessage(m *Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return data, nil
}

// DecodeMessage parses and validates a wire datagram. Malformed or
// unknown-shape input yields an error, never a panic; callers drop and
// count such datagrams.
func DecodeMessage(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	switch m.Type {
	case MsgRequestVote, MsgVoteResponse, MsgAppendEntries, MsgAppendResponse, MsgSNRReport:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, m.Type)
	}
	if m.SenderID == 0 {
		return nil, fmt.Errorf("%w: missing sender id", ErrDecode)
	}
	for _, e := range m.Entries {
		if e == nil || e.Index == 0 {
			return nil, fmt.Errorf("%w: invalid log entry", ErrDecode)
		}
	}
	return &m, nil
}
