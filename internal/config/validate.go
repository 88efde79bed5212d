package config

import (
	"fmt"
	"net"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig validates the configuration and returns a list of
// validation errors. An empty slice indicates the configuration is valid.
func ValidateConfig(config *Config) []error {
	var errs []error

	errs = append(errs, validateNodeConfig(&config.Node)...)
	errs = append(errs, validateTransportConfig(&config.Transport)...)
	errs = append(errs, validateTimingConfig(&config.Timing)...)
	errs = append(errs, validateReliabilityConfig(&config.Reliability)...)
	errs = append(errs, validateGainConfig(&config.Gain)...)
	errs = append(errs, validateLogConfig(&config.Logging)...)

	return errs
}

func validateNodeConfig(config *NodeConfig) []error {
	var errs []error

	if config.ID < 1 {
		errs = append(errs, ValidationError{
			Field:   "node.id",
			Message: "node ID must be at least 1",
		})
	}
	if config.Total < 1 {
		errs = append(errs, ValidationError{
			Field:   "node.total",
			Message: "cluster size must be at least 1",
		})
	}
	if config.ID > config.Total {
		errs = append(errs, ValidationError{
			Field:   "node.id",
			Message: "node ID must not exceed cluster size",
		})
	}

	switch config.Mode {
	case "standard", "fixed-leader", "reliability":
	default:
		errs = append(errs, ValidationError{
			Field:   "node.mode",
			Message: fmt.Sprintf("unknown mode %q", config.Mode),
		})
	}

	if config.Mode != "standard" {
		if config.LeaderID < 1 || config.LeaderID > config.Total {
			errs = append(errs, ValidationError{
				Field:   "node.leaderId",
				Message: "leader ID must name a cluster member",
			})
		}
	}
	return errs
}

func validateTransportConfig(config *TransportConfig) []error {
	var errs []error

	if err := validateAddress(config.RXAddress); err != nil {
		errs = append(errs, ValidationError{
			Field:   "transport.rxAddress",
			Message: err.Error(),
		})
	}
	if err := validateAddress(config.TXAddress); err != nil {
		errs = append(errs, ValidationError{
			Field:   "transport.txAddress",
			Message: err.Error(),
		})
	}
	if config.ReceiveTimeout <= 0 {
		errs = append(errs, ValidationError{
			Field:   "transport.receiveTimeout",
			Message: "receive timeout must be positive",
		})
	}
	return errs
}

func validateTimingConfig(config *TimingConfig) []error {
	var errs []error

	if config.HeartbeatInterval <= 0 {
		errs = append(errs, ValidationError{
			Field:   "timing.heartbeatInterval",
			Message: "heartbeat interval must be positive",
		})
	}
	if config.TickInterval <= 0 {
		errs = append(errs, ValidationError{
			Field:   "timing.tickInterval",
			Message: "tick interval must be positive",
		})
	}
	if config.ElectionTimeoutMin <= 0 || config.ElectionTimeoutMax < config.ElectionTimeoutMin {
		errs = append(errs, ValidationError{
			Field:   "timing.electionTimeoutMax",
			Message: "election timeout range must satisfy 0 < min <= max",
		})
	}
	if config.ElectionTimeoutMin <= config.HeartbeatInterval {
		errs = append(errs, ValidationError{
			Field:   "timing.electionTimeoutMin",
			Message: "election timeout must exceed the heartbeat interval",
		})
	}
	if config.AdaptiveTimeout && config.AdaptiveBase <= 0 {
		errs = append(errs, ValidationError{
			Field:   "timing.adaptiveBase",
			Message: "adaptive base must be positive",
		})
	}
	if config.PeerSmoothing <= 0 || config.PeerSmoothing > 1 {
		errs = append(errs, ValidationError{
			Field:   "timing.peerSmoothing",
			Message: "smoothing weight must be in (0, 1]",
		})
	}
	if config.LivenessWindow <= 0 {
		errs = append(errs, ValidationError{
			Field:   "timing.livenessWindow",
			Message: "liveness window must be positive",
		})
	}
	return errs
}

func validateReliabilityConfig(config *ReliabilityConfig) []error {
	var errs []error

	if config.PNode < 0 || config.PNode > 1 {
		errs = append(errs, ValidationError{
			Field:   "reliability.pNode",
			Message: "pNode must be a probability in [0, 1]",
		})
	}
	if config.Epsilon < 0 {
		errs = append(errs, ValidationError{
			Field:   "reliability.epsilon",
			Message: "epsilon must be non-negative",
		})
	}
	if config.RoundDeadline <= 0 {
		errs = append(errs, ValidationError{
			Field:   "reliability.roundDeadline",
			Message: "round deadline must be positive",
		})
	}
	return errs
}

func validateGainConfig(config *GainConfig) []error {
	var errs []error

	if config.ControlAddress != "" {
		if err := validateAddress(config.ControlAddress); err != nil {
			errs = append(errs, ValidationError{
				Field:   "gain.controlAddress",
				Message: err.Error(),
			})
		}
	}
	if config.Min > config.Max {
		errs = append(errs, ValidationError{
			Field:   "gain.min",
			Message: "gain range must satisfy min <= max",
		})
	}
	if config.Initial < config.Min || config.Initial > config.Max {
		errs = append(errs, ValidationError{
			Field:   "gain.initial",
			Message: "initial gain must be within [min, max]",
		})
	}
	if config.Step <= 0 {
		errs = append(errs, ValidationError{
			Field:   "gain.step",
			Message: "gain step must be positive",
		})
	}
	return errs
}

func validateLogConfig(config *LogConfig) []error {
	var errs []error

	switch config.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown log level %q", config.Level),
		})
	}
	switch config.Format {
	case "", "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("unknown log format %q", config.Format),
		})
	}
	return errs
}

// validateAddress checks a host:port address.
func validateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("address is required")
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address format: %v", err)
	}
	if port == "" {
		return fmt.Errorf("port is required")
	}
	return nil
}
