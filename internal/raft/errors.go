package raft

import "errors"

// Raft errors.
var (
	// ErrNotLeader is returned when a proposal is attempted on a non-leader node.
	ErrNotLeader = errors.New("raft: not the leader")

	// ErrNodeStopped is returned when an operation is attempted on a stopped node.
	ErrNodeStopped = errors.New("raft: node stopped")

	// ErrDecode is returned when an inbound datagram cannot be decoded.
	ErrDecode = errors.New("raft: message decode failed")

	// ErrEncode is returned when a message cannot be serialized.
	ErrEncode = errors.New("raft: message encode failed")

	// ErrUnknownMessageType is returned when the envelope carries an
	// unrecognized type tag.
	ErrUnknownMessageType = errors.New("raft: unknown message type")

	// ErrLogIndexOutOfRange is returned when accessing an invalid log index.
	ErrLogIndexOutOfRange = errors.New("raft: log index out of range")

	// ErrTransportClosed is returned when the transport is closed.
	ErrTransportClosed = errors.New("raft: transport closed")

	// ErrReceiveTimeout is returned when no datagram arrives within the
	// receive deadline. The receive loop treats it as an idle tick.
	ErrReceiveTimeout = errors.New("raft: receive timeout")

	// ErrInvalidConfig is returned when node configuration is invalid.
	ErrInvalidConfig = errors.New("raft: invalid configuration")

	// ErrNotReliabilityMode is returned when a decision round is started on
	// a node that is not running in reliability mode.
	ErrNotReliabilityMode = errors.New("raft: node not in reliability mode")
)
