// Package raft implements a Raft-derived replication protocol for
// clusters connected over an unreliable shared radio channel.
//
// Every message is a broadcast datagram carrying a receiver-side channel
// sample (SNR), and the protocol folds that link-quality signal back into
// its own control decisions.
//
// # Overview
//
// The package provides:
//   - Leader election with randomized, optionally SNR-adaptive timeouts
//   - Log replication over lossy broadcast with a single AppendEntries
//     serving all followers
//   - A fixed-leader mode for experiments that need a stable topology
//   - A reliability mode where followers answer decision rounds with
//     Bernoulli ballots and the leader aggregates them with SNR-derived
//     weights
//   - Per-peer SNR smoothing (EWMA) with a liveness window
//   - UDP and in-memory simulated transports
//
// # Architecture
//
// A node runs two goroutines: a receive loop that polls the transport
// with a bounded wait, and a tick loop that drives the election timer
// and the heartbeat cadence. Both funnel into one coarse mutex, so every
// state transition is atomic and the protocol logic stays sequential.
//
// Replication is broadcast-oriented: the leader sends one AppendEntries
// whose suffix starts at the smallest follower nextIndex, and each
// follower answers with its own log position. Commit advances when a
// strict majority of the configured cluster has acknowledged an index.
//
// # Usage
//
// Create a node over UDP:
//
//	cfg := raft.DefaultNodeConfig()
//	cfg.ID = 2
//	cfg.Total = 3
//
//	transport, err := raft.NewUDPTransport("0.0.0.0:52002", "127.0.0.1:52001")
//	if err != nil {
//	    return err
//	}
//	node, err := raft.NewNode(cfg, transport)
//	if err != nil {
//	    return err
//	}
//	node.Start()
//	defer node.Stop()
package raft
