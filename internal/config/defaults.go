package config

import "time"

// DefaultConfig returns a Config with sensible default values. The
// timings match the over-the-air experiments: second-scale heartbeats
// and multi-second election timeouts, sized for a slow radio channel.
func DefaultConfig() *Config {
	return &Config{
		Node: NodeConfig{
			ID:       1,
			Total:    3,
			Mode:     "standard",
			LeaderID: 1,
		},
		Transport: TransportConfig{
			RXAddress:      "0.0.0.0:52002",
			TXAddress:      "127.0.0.1:52001",
			ReceiveTimeout: 100 * time.Millisecond,
			SNRThreshold:   0,
		},
		Timing: TimingConfig{
			HeartbeatInterval:  1 * time.Second,
			TickInterval:       50 * time.Millisecond,
			SNRReportInterval:  0,
			ElectionTimeoutMin: 3 * time.Second,
			ElectionTimeoutMax: 5 * time.Second,
			AdaptiveTimeout:    false,
			AdaptiveBase:       3 * time.Second,
			AdaptiveAlpha:      50.0,
			PeerSmoothing:      0.3,
			LivenessWindow:     10 * time.Second,
		},
		Reliability: ReliabilityConfig{
			PNode:           1.0,
			TargetSNR:       16.0,
			Epsilon:         0.001,
			LeaderSNRMargin: 2.0,
			RoundDeadline:   3 * time.Second,
			ResendInterval:  500 * time.Millisecond,
		},
		Gain: GainConfig{
			ControlAddress: "",
			Initial:        0.5,
			Step:           0.05,
			Min:            0.1,
			Max:            0.8,
			Tolerance:      2.0,
		},
		Logging: LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}
