package raft

import (
	"math"
	"testing"
	"time"
)

func TestPeerTrackerSmoothing(t *testing.T) {
	tracker := NewPeerTracker(0.3, 10*time.Second)
	now := time.Now()

	// First sample seeds the smoothed value directly.
	tracker.Observe(2, 10.0, now)
	if got := tracker.SNR(2); got != 10.0 {
		t.Errorf("first sample should seed SNR, got %v", got)
	}

	// Second sample blends: 0.3*20 + 0.7*10 = 13.
	tracker.Observe(2, 20.0, now.Add(time.Second))
	if got := tracker.SNR(2); math.Abs(got-13.0) > 1e-9 {
		t.Errorf("smoothed SNR = %v, want 13.0", got)
	}
}

func TestPeerTrackerZeroSampleKeepsSNR(t *testing.T) {
	tracker := NewPeerTracker(0.3, 10*time.Second)
	now := time.Now()

	tracker.Observe(3, 12.0, now)
	// The injector reports 0 when no measurement was taken; liveness
	// refreshes but the smoothed value must not decay toward zero.
	tracker.Observe(3, 0, now.Add(5*time.Second))

	if got := tracker.SNR(3); got != 12.0 {
		t.Errorf("zero sample disturbed SNR: got %v, want 12.0", got)
	}
	if tracker.LiveCount(now.Add(14*time.Second)) != 1 {
		t.Error("zero sample should have refreshed liveness")
	}
}

func TestPeerTrackerLivenessWindow(t *testing.T) {
	tracker := NewPeerTracker(0.3, 10*time.Second)
	now := time.Now()

	tracker.Observe(1, 8.0, now)
	tracker.Observe(2, 6.0, now.Add(8*time.Second))

	at := now.Add(11 * time.Second)
	live := tracker.Live(at)
	if len(live) != 1 || live[0].ID != 2 {
		t.Errorf("expected only peer 2 live, got %v", live)
	}

	// Expired peers keep their history and revive on the next datagram.
	tracker.Observe(1, 8.0, at)
	if tracker.LiveCount(at) != 2 {
		t.Error("peer 1 should be live again after new contact")
	}
	if got := tracker.SNR(1); got == 0 {
		t.Error("history lost across soft expiry")
	}
}

func TestPeerTrackerGamma(t *testing.T) {
	tracker := NewPeerTracker(0.3, 10*time.Second)
	now := time.Now()

	if got := tracker.Gamma(now); got != 0 {
		t.Errorf("empty tracker Gamma = %v, want 0", got)
	}

	tracker.Observe(1, 10.0, now)
	tracker.Observe(2, 5.0, now)
	tracker.Observe(3, 7.0, now.Add(-20*time.Second)) // will be expired

	// Observe uses the passed time as LastSeen, so peer 3 is outside the
	// window relative to now.
	if got := tracker.Gamma(now); math.Abs(got-15.0) > 1e-9 {
		t.Errorf("Gamma = %v, want 15.0", got)
	}
}

func TestPeerTrackerSnapshot(t *testing.T) {
	tracker := NewPeerTracker(0.3, 10*time.Second)
	now := time.Now()

	tracker.Observe(1, 9.0, now)
	tracker.Observe(4, 11.0, now)

	snap := tracker.Snapshot(now)
	if len(snap) != 2 || snap[1] != 9.0 || snap[4] != 11.0 {
		t.Errorf("snapshot mismatch: %v", snap)
	}

	// Mutating the snapshot must not touch the tracker.
	snap[1] = 99.0
	if tracker.SNR(1) != 9.0 {
		t.Error("snapshot aliases tracker state")
	}
}
