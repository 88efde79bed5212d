// Package main provides the gain command for manual radio gain control.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/airraft/airraft/internal/phy"
)

// gainCmd handles the gain command: one-shot gain changes and pings
// against the radio's control port, useful when setting up a bench.
func gainCmd(args []string) int {
	fs := flag.NewFlagSet("gain", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	addr := fs.String("addr", "127.0.0.1:52010", "Radio control port address")
	tx := fs.Float64("tx", -1, "Set TX gain (0..1)")
	rx := fs.Float64("rx", -1, "Set RX gain (0..1)")
	ping := fs.Bool("ping", false, "Probe the control port")
	timeout := fs.Duration("timeout", 1*time.Second, "Control reply timeout")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *help || *helpLong {
		printGainUsage(os.Stdout)
		return 0
	}
	if !*ping && *tx < 0 && *rx < 0 {
		fmt.Fprintln(os.Stderr, "nothing to do: give -ping, -tx, or -rx")
		return 1
	}

	ctl, err := phy.NewController(*addr, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "control connection failed: %v\n", err)
		return 1
	}
	defer ctl.Close()

	if *ping {
		if err := ctl.Ping(); err != nil {
			fmt.Fprintf(os.Stderr, "ping failed: %v\n", err)
			return 1
		}
		fmt.Println("pong")
	}
	if *tx >= 0 {
		if err := ctl.SetTXGain(*tx); err != nil {
			fmt.Fprintf(os.Stderr, "set tx gain failed: %v\n", err)
			return 1
		}
		fmt.Printf("tx gain set to %v\n", *tx)
	}
	if *rx >= 0 {
		if err := ctl.SetRXGain(*rx); err != nil {
			fmt.Fprintf(os.Stderr, "set rx gain failed: %v\n", err)
			return 1
		}
		fmt.Printf("rx gain set to %v\n", *rx)
	}
	return 0
}
