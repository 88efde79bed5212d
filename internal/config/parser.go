package config

import (
	"errors"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Parser errors.
var (
	ErrInvalidYAML     = errors.New("invalid YAML format")
	ErrInvalidDuration = errors.New("invalid duration format")
	ErrInvalidNumber   = errors.New("invalid number format")
	ErrFileNotFound    = errors.New("configuration file not found")
	ErrUnknownSection  = errors.New("unknown configuration section")
)

// LoadConfig loads configuration from a file path.
// It reads the file, substitutes environment variables, parses YAML,
// and applies defaults for missing values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig parses configuration from YAML data.
// It substitutes environment variables and applies defaults for missing values.
func ParseConfig(data []byte) (*Config, error) {
	data = substituteEnvVars(data)

	config := DefaultConfig()
	if err := parseYAML(data, config); err != nil {
		return nil, err
	}
	return config, nil
}

// substituteEnvVars replaces ${VAR} and ${VAR:-default} patterns with
// environment variable values.
func substituteEnvVars(data []byte) []byte {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllFunc(data, func(match []byte) []byte {
		content := string(match[2 : len(match)-1])

		// VAR:-default syntax
		if idx := strings.Index(content, ":-"); idx != -1 {
			varName := content[:idx]
			defaultVal := content[idx+2:]
			if val := os.Getenv(varName); val != "" {
				return []byte(val)
			}
			return []byte(defaultVal)
		}
		return []byte(os.Getenv(content))
	})
}

// parseYAML parses the two-level section/key layout into the config
// struct. The configuration schema is flat (no lists, no deep nesting),
// so a full YAML parser is not needed.
func parseYAML(data []byte, config *Config) error {
	var section string

	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		colonIdx := strings.Index(trimmed, ":")
		if colonIdx == -1 {
			return ErrInvalidYAML
		}
		key := strings.TrimSpace(trimmed[:colonIdx])
		value := unquote(strings.TrimSpace(trimmed[colonIdx+1:]))

		// An unindented line opens a section.
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			if value != "" {
				return ErrInvalidYAML
			}
			section = key
			continue
		}

		if err := applyValue(config, section, key, value); err != nil {
			return err
		}
	}
	return nil
}

// applyValue sets one key in its section. Empty values keep defaults.
func applyValue(config *Config, section, key, value string) error {
	if value == "" {
		return nil
	}
	switch section {
	case "node":
		return applyNode(&config.Node, key, value)
	case "transport":
		return applyTransport(&config.Transport, key, value)
	case "timing":
		return applyTiming(&config.Timing, key, value)
	case "reliability":
		return applyReliability(&config.Reliability, key, value)
	case "gain":
		return applyGain(&config.Gain, key, value)
	case "logging":
		return applyLogging(&config.Logging, key, value)
	default:
		return ErrUnknownSection
	}
}

func applyNode(c *NodeConfig, key, value string) error {
	var err error
	switch key {
	case "id":
		c.ID, err = parseInt(value)
	case "total":
		c.Total, err = parseInt(value)
	case "mode":
		c.Mode = value
	case "leaderId":
		c.LeaderID, err = parseInt(value)
	}
	return err
}

func applyTransport(c *TransportConfig, key, value string) error {
	var err error
	switch key {
	case "rxAddress":
		c.RXAddress = value
	case "txAddress":
		c.TXAddress = value
	case "receiveTimeout":
		c.ReceiveTimeout, err = parseDuration(value)
	case "snrThreshold":
		c.SNRThreshold, err = parseFloat(value)
	}
	return err
}

func applyTiming(c *TimingConfig, key, value string) error {
	var err error
	switch key {
	case "heartbeatInterval":
		c.HeartbeatInterval, err = parseDuration(value)
	case "tickInterval":
		c.TickInterval, err = parseDuration(value)
	case "snrReportInterval":
		c.SNRReportInterval, err = parseDuration(value)
	case "electionTimeoutMin":
		c.ElectionTimeoutMin, err = parseDuration(value)
	case "electionTimeoutMax":
		c.ElectionTimeoutMax, err = parseDuration(value)
	case "adaptiveTimeout":
		c.AdaptiveTimeout = parseBool(value)
	case "adaptiveBase":
		c.AdaptiveBase, err = parseDuration(value)
	case "adaptiveAlpha":
		c.AdaptiveAlpha, err = parseFloat(value)
	case "peerSmoothing":
		c.PeerSmoothing, err = parseFloat(value)
	case "livenessWindow":
		c.LivenessWindow, err = parseDuration(value)
	}
	return err
}

func applyReliability(c *ReliabilityConfig, key, value string) error {
	var err error
	switch key {
	case "pNode":
		c.PNode, err = parseFloat(value)
	case "targetSnr":
		c.TargetSNR, err = parseFloat(value)
	case "epsilon":
		c.Epsilon, err = parseFloat(value)
	case "leaderSnrMargin":
		c.LeaderSNRMargin, err = parseFloat(value)
	case "roundDeadline":
		c.RoundDeadline, err = parseDuration(value)
	case "resendInterval":
		c.ResendInterval, err = parseDuration(value)
	}
	return err
}

func applyGain(c *GainConfig, key, value string) error {
	var err error
	switch key {
	case "controlAddress":
		c.ControlAddress = value
	case "initial":
		c.Initial, err = parseFloat(value)
	case "step":
		c.Step, err = parseFloat(value)
	case "min":
		c.Min, err = parseFloat(value)
	case "max":
		c.Max, err = parseFloat(value)
	case "tolerance":
		c.Tolerance, err = parseFloat(value)
	}
	return err
}

func applyLogging(c *LogConfig, key, value string) error {
	switch key {
	case "level":
		c.Level = value
	case "format":
		c.Format = value
	case "output":
		c.Output = value
	}
	return nil
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func parseInt(s string) (int, error) {
	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidNumber
	}
	return val, nil
}

func parseFloat(s string) (float64, error) {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidNumber
	}
	return val, nil
}

// parseDuration parses a duration string, supporting a day suffix on top
// of the standard library formats.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if strings.HasSuffix(s, "d") {
		numStr := strings.TrimSuffix(s, "d")
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, ErrInvalidDuration
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return 0, ErrInvalidDuration
	}
	return dur, nil
}

// parseBool parses a boolean string.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}
