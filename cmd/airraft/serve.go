// Package main provides the serve command for the airraft node.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/airraft/airraft/internal/config"
	"github.com/airraft/airraft/internal/logging"
	"github.com/airraft/airraft/internal/phy"
	"github.com/airraft/airraft/internal/raft"
)

// serveCmd handles the serve command.
func serveCmd(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	configFile := fs.String("config", "", "Path to configuration file")
	nodeID := fs.Int("id", 0, "Node ID (overrides config)")
	total := fs.Int("total", 0, "Cluster size (overrides config)")
	mode := fs.String("mode", "", "Protocol mode: standard, fixed-leader, reliability (overrides config)")
	rxAddr := fs.String("rx", "", "UDP receive address (overrides config)")
	txAddr := fs.String("tx", "", "UDP transmit address (overrides config)")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	proposeEvery := fs.Duration("propose-every", 0, "Leader proposes a test command at this interval (0 disables)")
	help := fs.Bool("h", false, "Show help message")
	helpLong := fs.Bool("help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *help || *helpLong {
		printServeUsage(os.Stdout)
		return 0
	}

	cfg, ok := loadConfig(*configFile)
	if !ok {
		return 1
	}
	if *nodeID > 0 {
		cfg.Node.ID = *nodeID
	}
	if *total > 0 {
		cfg.Node.Total = *total
	}
	if *mode != "" {
		cfg.Node.Mode = *mode
	}
	if *rxAddr != "" {
		cfg.Transport.RXAddress = *rxAddr
	}
	if *txAddr != "" {
		cfg.Transport.TXAddress = *txAddr
	}
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

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("node starting",
		"mode", cfg.Node.Mode,
		"total", cfg.Node.Total,
		"rx", cfg.Transport.RXAddress,
		"tx", cfg.Transport.TXAddress)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(node.ReceiveLoop)
	g.Go(node.TickLoop)
	g.Go(func() error {
		<-ctx.Done()
		node.Stop()
		return nil
	})
	if *proposeEvery > 0 {
		g.Go(func() error {
			return proposeLoop(ctx, node, *proposeEvery, logger)
		})
	}

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("node exited with error", "error", err)
		return 1
	}
	logger.Info("node stopped")
	return 0
}

// loadConfig loads the config file, or defaults when no path is given.
func loadConfig(path string) (*config.Config, bool) {
	if path == "" {
		return config.DefaultConfig(), true
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", path, err)
		return nil, false
	}
	return cfg, true
}

// buildNode assembles a node from the file configuration: transport,
// protocol tuning, and the optional gain-control side channel.
func buildNode(cfg *config.Config, logger logging.Logger) (*raft.Node, raft.Transport, error) {
	transport, err := raft.NewUDPTransport(cfg.Transport.RXAddress, cfg.Transport.TXAddress)
	if err != nil {
		return nil, nil, err
	}

	nodeCfg := raft.DefaultNodeConfig()
	nodeCfg.ID = cfg.Node.ID
	nodeCfg.Total = cfg.Node.Total
	nodeCfg.Mode = raft.ParseMode(cfg.Node.Mode)
	nodeCfg.LeaderID = cfg.Node.LeaderID
	nodeCfg.HeartbeatInterval = cfg.Timing.HeartbeatInterval
	nodeCfg.SNRReportInterval = cfg.Timing.SNRReportInterval
	nodeCfg.TickInterval = cfg.Timing.TickInterval
	nodeCfg.ReceiveTimeout = cfg.Transport.ReceiveTimeout
	nodeCfg.SNRThreshold = cfg.Transport.SNRThreshold
	nodeCfg.PeerSmoothing = cfg.Timing.PeerSmoothing
	nodeCfg.LivenessWindow = cfg.Timing.LivenessWindow
	nodeCfg.Timer = raft.TimerConfig{
		Min:        cfg.Timing.ElectionTimeoutMin,
		Max:        cfg.Timing.ElectionTimeoutMax,
		Adaptive:   cfg.Timing.AdaptiveTimeout,
		Base:       cfg.Timing.AdaptiveBase,
		Alpha:      cfg.Timing.AdaptiveAlpha,
		JitterLow:  0.1,
		JitterHigh: 0.2,
	}
	nodeCfg.PNode = cfg.Reliability.PNode
	nodeCfg.TargetSNR = cfg.Reliability.TargetSNR
	nodeCfg.Epsilon = cfg.Reliability.Epsilon
	nodeCfg.LeaderSNRMargin = cfg.Reliability.LeaderSNRMargin
	nodeCfg.GainInitial = cfg.Gain.Initial
	nodeCfg.GainStep = cfg.Gain.Step
	nodeCfg.GainMin = cfg.Gain.Min
	nodeCfg.GainMax = cfg.Gain.Max
	nodeCfg.SNRTolerance = cfg.Gain.Tolerance

	node, err := raft.NewNode(nodeCfg, transport)
	if err != nil {
		transport.Close()
		return nil, nil, err
	}
	node.SetLogger(logger)

	if cfg.Gain.ControlAddress != "" {
		ctl, err := phy.NewController(cfg.Gain.ControlAddress, cfg.Transport.ReceiveTimeout)
		if err != nil {
			logger.Warn("gain control unavailable", "error", err)
		} else {
			node.SetGainController(ctl)
			if err := ctl.SetTXGain(cfg.Gain.Initial); err != nil {
				logger.Warn("initial gain set failed", "error", err)
			}
		}
	}
	return node, transport, nil
}

// proposeLoop generates periodic test commands while this node leads.
func proposeLoop(ctx context.Context, node *raft.Node, every time.Duration, logger logging.Logger) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	seq := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !node.IsLeader() {
				continue
			}
			seq++
			cmd := fmt.Sprintf("cmd-%d", seq)
			if err := node.Propose(cmd); err != nil {
				logger.Warn("propose failed", "command", cmd, "error", err)
			}
		}
	}
}
