// Package config provides configuration parsing for the airraft node.
package config

import "time"

// Config holds the complete node configuration.
type Config struct {
	Node        NodeConfig        `yaml:"node"`
	Transport   TransportConfig   `yaml:"transport"`
	Timing      TimingConfig      `yaml:"timing"`
	Reliability ReliabilityConfig `yaml:"reliability"`
	Gain        GainConfig        `yaml:"gain"`
	Logging     LogConfig         `yaml:"logging"`
}

// NodeConfig holds the node's identity and protocol variant.
type NodeConfig struct {
	ID       int    `yaml:"id"`
	Total    int    `yaml:"total"`
	Mode     string `yaml:"mode"` // standard, fixed-leader, reliability
	LeaderID int    `yaml:"leaderId"`
}

// TransportConfig holds the UDP endpoints toward the radio stack.
type TransportConfig struct {
	RXAddress      string        `yaml:"rxAddress"`
	TXAddress      string        `yaml:"txAddress"`
	ReceiveTimeout time.Duration `yaml:"receiveTimeout"`
	SNRThreshold   float64       `yaml:"snrThreshold"`
}

// TimingConfig holds the protocol cadence and election timer tuning.
type TimingConfig struct {
	HeartbeatInterval  time.Duration `yaml:"heartbeatInterval"`
	TickInterval       time.Duration `yaml:"tickInterval"`
	SNRReportInterval  time.Duration `yaml:"snrReportInterval"`
	ElectionTimeoutMin time.Duration `yaml:"electionTimeoutMin"`
	ElectionTimeoutMax time.Duration `yaml:"electionTimeoutMax"`
	AdaptiveTimeout    bool          `yaml:"adaptiveTimeout"`
	AdaptiveBase       time.Duration `yaml:"adaptiveBase"`
	AdaptiveAlpha      float64       `yaml:"adaptiveAlpha"`
	PeerSmoothing      float64       `yaml:"peerSmoothing"`
	LivenessWindow     time.Duration `yaml:"livenessWindow"`
}

// ReliabilityConfig holds the decision-round experiment tuning.
type ReliabilityConfig struct {
	PNode           float64       `yaml:"pNode"`
	TargetSNR       float64       `yaml:"targetSnr"`
	Epsilon         float64       `yaml:"epsilon"`
	LeaderSNRMargin float64       `yaml:"leaderSnrMargin"`
	RoundDeadline   time.Duration `yaml:"roundDeadline"`
	ResendInterval  time.Duration `yaml:"resendInterval"`
}

// GainConfig holds the gain-control side channel and tuning bounds.
type GainConfig struct {
	ControlAddress string  `yaml:"controlAddress"`
	Initial        float64 `yaml:"initial"`
	Step           float64 `yaml:"step"`
	Min            float64 `yaml:"min"`
	Max            float64 `yaml:"max"`
	Tolerance      float64 `yaml:"tolerance"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}
