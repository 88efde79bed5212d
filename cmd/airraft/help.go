package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage information to the given writer.
func printUsage(w io.Writer) {
	fmt.Fprint(w, `airraft - Raft-derived consensus node for broadcast radio links

Usage:
  airraft <command> [options]

Commands:
  serve       Run a consensus node
  experiment  Run a reliability sweep from the fixed leader
  gain        One-shot radio gain control
  version     Show version information

Use "airraft <command> -h" for more information about a command.
`)
}

// printServeUsage prints the serve command usage.
func printServeUsage(w io.Writer) {
	fmt.Fprint(w, `Run a consensus node

Usage:
  airraft serve [options]

Options:
  -config string
        Path to configuration file
  -id int
        Node ID (overrides config)
  -total int
        Cluster size (overrides config)
  -mode string
        Protocol mode: standard, fixed-leader, reliability (overrides config)
  -rx string
        UDP receive address (overrides config, default "0.0.0.0:52002")
  -tx string
        UDP transmit address (overrides config, default "127.0.0.1:52001")
  -log-level string
        Log level: debug, info, warn, error (overrides config)
  -propose-every duration
        Leader proposes a test command at this interval (0 disables)
  -h, -help
        Show this help message
`)
}

// printExperimentUsage prints the experiment command usage.
func printExperimentUsage(w io.Writer) {
	fmt.Fprint(w, `Run a reliability sweep from the fixed leader

The node runs in reliability mode as the leader, steps through the given
pNode values, runs a batch of decision rounds at each, and writes the
measured consensus probability per sweep point to a JSON file.

Usage:
  airraft experiment [options]

Options:
  -config string
        Path to configuration file
  -pnodes string
        Comma-separated pNode sweep values (default "0.5,0.6,0.7,0.8,0.9,1.0")
  -rounds int
        Decision rounds per sweep point (default 30)
  -snr float
        Nominal channel SNR recorded with the results
  -out string
        Output file for sweep results (default "results.json")
  -log-level string
        Log level: debug, info, warn, error (overrides config)
  -h, -help
        Show this help message
`)
}

// printGainUsage prints the gain command usage.
func printGainUsage(w io.Writer) {
	fmt.Fprint(w, `One-shot radio gain control

Usage:
  airraft gain [options]

Options:
  -addr string
        Radio control port address (default "127.0.0.1:52010")
  -tx float
        Set TX gain (0..1)
  -rx float
        Set RX gain (0..1)
  -ping
        Probe the control port
  -timeout duration
        Control reply timeout (default 1s)
  -h, -help
        Show this help message
`)
}

// printVersionUsage prints the version command usage.
func printVersionUsage(w io.Writer) {
	fmt.Fprint(w, `Show version information

Usage:
  airraft version [options]

Options:
  -short
        Show only version number
  -h, -help
        Show this help message
`)
}
