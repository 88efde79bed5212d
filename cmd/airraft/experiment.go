// Package main provides the experiment command: it runs a reliability
// sweep from the fixed leader and writes the measured consensus
// probabilities to a JSON file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/airraft/airraft/internal/config"
	"github.com/airraft/airraft/internal/experiment"
	"github.com/airraft/airraft/internal/logging"
)

// experimentCmd handles the experiment command.
func experimentCmd(args []string) int {
	fs := flag.NewFlagSet("experiment", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	configFile := fs.String("config", "", "Path to configuration file")
	pnodes := fs.String("pnodes", "0.5,0.6,0.7,0.8,0.9,1.0", "Comma-separated pNode sweep values")
	rounds := fs.Int("rounds", 30, "Decision rounds per sweep point")
	snr := fs.Float64("snr", 0, "Nominal channel SNR recorded with the results")
	out := fs.String("out", "results.json", "Output file for sweep results")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *help || *helpLong {
		printExperimentUsage(os.Stdout)
		return 0
	}

	sweep, err := parsePNodes(*pnodes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -pnodes: %v\n", err)
		return 1
	}

	cfg, ok := loadConfig(*configFile)
	if !ok {
		return 1
	}
	// The experiment command always runs the fixed reliability leader.
	cfg.Node.Mode = "reliability"
	cfg.Node.LeaderID = cfg.Node.ID
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	if errs := config.ValidateConfig(cfg); len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		}
		return 1
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}).WithNode(cfg.Node.ID)

	node, transport, err := buildNode(cfg, logger)
	if err != nil {
		logger.Error("failed to build node", "error", err)
		return 1
	}
	defer transport.Close()

	runner, err := experiment.NewRunner(node, experiment.Params{
		SNR:            *snr,
		ClusterSize:    cfg.Node.Total,
		PNodes:         sweep,
		Rounds:         *rounds,
		RoundDeadline:  cfg.Reliability.RoundDeadline,
		ResendInterval: cfg.Reliability.ResendInterval,
		Pause:          cfg.Timing.HeartbeatInterval,
	}, logger)
	if err != nil {
		logger.Error("invalid experiment parameters", "error", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("experiment starting",
		"pnodes", *pnodes,
		"rounds", *rounds,
		"total", cfg.Node.Total,
		"out", *out)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(node.ReceiveLoop)
	g.Go(node.TickLoop)

	var results []*experiment.Result
	g.Go(func() error {
		defer node.Stop()
		var runErr error
		results, runErr = runner.Run(ctx)
		return runErr
	})

	err = g.Wait()
	if len(results) > 0 {
		if werr := experiment.WriteResults(*out, results); werr != nil {
			logger.Error("failed to write results", "path", *out, "error", werr)
			return 1
		}
		logger.Info("results written", "path", *out, "sweepPoints", len(results))
	}
	if err != nil && err != context.Canceled {
		logger.Error("experiment failed", "error", err)
		return 1
	}
	return 0
}

// parsePNodes parses the comma-separated sweep list.
func parsePNodes(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", part)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no values given")
	}
	return values, nil
}
