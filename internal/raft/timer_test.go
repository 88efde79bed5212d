package raft

import (
	"math/rand"
	"testing"
	"time"
)

func TestTimerStandardRange(t *testing.T) {
	cfg := TimerConfig{Min: 3 * time.Second, Max: 5 * time.Second}
	timer := NewElectionTimer(cfg, rand.New(rand.NewSource(1)))

	for i := 0; i < 100; i++ {
		d := timer.Next(nil, time.Now())
		if d < cfg.Min || d >= cfg.Max {
			t.Fatalf("timeout %v outside [%v, %v)", d, cfg.Min, cfg.Max)
		}
	}
}

func TestTimerAdaptiveNoPeers(t *testing.T) {
	cfg := TimerConfig{
		Adaptive:   true,
		Base:       3 * time.Second,
		Alpha:      50.0,
		JitterLow:  0.1,
		JitterHigh: 0.2,
	}
	timer := NewElectionTimer(cfg, rand.New(rand.NewSource(1)))
	tracker := NewPeerTracker(0.3, 10*time.Second)

	// No measured live peers: factor stays 1.0, leaving base plus jitter.
	for i := 0; i < 50; i++ {
		d := timer.Next(tracker, time.Now())
		lo := time.Duration(1.1 * float64(cfg.Base))
		hi := time.Duration(1.2 * float64(cfg.Base))
		if d < lo || d > hi {
			t.Fatalf("isolated-node timeout %v outside [%v, %v]", d, lo, hi)
		}
	}
}

func TestTimerAdaptiveShorterWithBetterLinks(t *testing.T) {
	cfg := TimerConfig{
		Adaptive:   true,
		Base:       3 * time.Second,
		Alpha:      50.0,
		JitterLow:  0.1,
		JitterHigh: 0.2,
	}
	now := time.Now()

	weak := NewPeerTracker(0.3, 10*time.Second)
	weak.Observe(2, 5.0, now)

	strong := NewPeerTracker(0.3, 10*time.Second)
	strong.Observe(2, 25.0, now)
	strong.Observe(3, 25.0, now)

	// Same seed on both sides so the jitter draw matches and only the
	// adaptive factor differs.
	weakTimer := NewElectionTimer(cfg, rand.New(rand.NewSource(7)))
	strongTimer := NewElectionTimer(cfg, rand.New(rand.NewSource(7)))

	for i := 0; i < 20; i++ {
		dWeak := weakTimer.Next(weak, now)
		dStrong := strongTimer.Next(strong, now)
		if dStrong >= dWeak {
			t.Fatalf("better links should shorten the timeout: strong %v >= weak %v", dStrong, dWeak)
		}
	}
}

func TestTimerAdaptiveGammaFloor(t *testing.T) {
	cfg := TimerConfig{
		Adaptive:   true,
		Base:       1 * time.Second,
		Alpha:      50.0,
		JitterLow:  0,
		JitterHigh: 0,
	}
	timer := NewElectionTimer(cfg, rand.New(rand.NewSource(1)))

	tracker := NewPeerTracker(0.3, 10*time.Second)
	now := time.Now()
	tracker.Observe(2, 0.25, now) // aggregate below 1.0

	// Gamma clamps at 1.0, so the factor caps at 1 + alpha.
	d := timer.Next(tracker, now)
	want := time.Duration((1.0 + cfg.Alpha) * float64(cfg.Base))
	if d != want {
		t.Errorf("timeout = %v, want %v (gamma floor)", d, want)
	}
}

func TestTimerAdaptiveNeverZero(t *testing.T) {
	cfg := TimerConfig{
		Adaptive:   true,
		Base:       2 * time.Second,
		Alpha:      50.0,
		JitterLow:  0.1,
		JitterHigh: 0.2,
	}
	timer := NewElectionTimer(cfg, rand.New(rand.NewSource(3)))

	tracker := NewPeerTracker(0.3, 10*time.Second)
	now := time.Now()
	for id := 2; id <= 20; id++ {
		tracker.Observe(id, 1000.0, now)
	}

	// Even with a huge aggregate SNR the timeout keeps at least base
	// plus the low jitter bound.
	d := timer.Next(tracker, now)
	if d < time.Duration(1.1*float64(cfg.Base)) {
		t.Errorf("timeout %v fell below base plus jitter", d)
	}
}
