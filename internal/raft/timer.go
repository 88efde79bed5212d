package raft

import (
	"math/rand"
	"time"
)

// TimerConfig controls election timeout computation.
type TimerConfig struct {
	// Standard mode: uniform draw in [Min, Max].
	Min time.Duration
	Max time.Duration

	// Adaptive mode: timeout = (1 + Alpha/max(Gamma,1)) * Base + jitter,
	// jitter drawn uniformly from [JitterLow, JitterHigh] * Base. Higher
	// aggregate SNR shortens the timeout, biasing well-connected nodes
	// toward winning elections. This is a heuristic, not a safety
	// mechanism: the result can never reach zero.
	Adaptive   bool
	Base       time.Duration
	Alpha      float64
	JitterLow  float64
	JitterHigh float64
}

// DefaultTimerConfig returns the timings used by the radio experiments.
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		Min:        3 * time.Second,
		Max:        5 * time.Second,
		Base:       3 * time.Second,
		Alpha:      50.0,
		JitterLow:  0.1,
		JitterHigh: 0.2,
	}
}

// ElectionTimer computes randomized election timeouts, optionally adapted
// to aggregate neighbor link quality.
type ElectionTimer struct {
	cfg TimerConfig
	rng *rand.Rand
}

// NewElectionTimer creates a timer. rng may be nil, in which case a
// time-seeded source is used.
func NewElectionTimer(cfg TimerConfig, rng *rand.Rand) *ElectionTimer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ElectionTimer{cfg: cfg, rng: rng}
}

// Next returns the duration a follower or candidate should wait before
// starting the next election.
func (t *ElectionTimer) Next(tracker *PeerTracker, now time.Time) time.Duration {
	if !t.cfg.Adaptive {
		span := t.cfg.Max - t.cfg.Min
		if span <= 0 {
			return t.cfg.Min
		}
		return t.cfg.Min + time.Duration(t.rng.Int63n(int64(span)))
	}

	factor := 1.0
	if tracker != nil {
		measured := 0
		gamma := 0.0
		for _, p := range tracker.Live(now) {
			if p.SmoothedSNR > 0 {
				gamma += p.SmoothedSNR
				measured++
			}
		}
		// Isolated nodes fall back to the standard factor instead of
		// being penalized.
		if measured > 0 {
			if gamma < 1.0 {
				gamma = 1.0
			}
			factor = 1.0 + t.cfg.Alpha/gamma
		}
	}

	jitterSpan := t.cfg.JitterHigh - t.cfg.JitterLow
	jitter := (t.cfg.JitterLow + t.rng.Float64()*jitterSpan) * float64(t.cfg.Base)
	return time.Duration(factor*float64(t.cfg.Base) + jitter)
}
