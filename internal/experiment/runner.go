package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/airraft/airraft/internal/logging"
	"github.com/airraft/airraft/internal/raft"
)

// RoundDriver is the slice of the leader node the runner needs. It is an
// interface so sweeps can run against a simulated cluster in tests.
type RoundDriver interface {
	SetPNode(p float64) error
	RunDecisionRound(command string, deadline, resendEvery time.Duration) (*raft.RoundResult, error)
}

// Params configures one measurement campaign.
type Params struct {
	SNR            float64       // nominal channel SNR, recorded with the results
	ClusterSize    int           // n, including the leader
	PNodes         []float64     // trustworthiness sweep values
	Rounds         int           // decision rounds per sweep point
	RoundDeadline  time.Duration // ballot collection window per round
	ResendInterval time.Duration // round rebroadcast cadence, 0 disables
	Pause          time.Duration // settle time between rounds
}

// Validate checks the campaign parameters.
func (p *Params) Validate() error {
	if p.ClusterSize < 1 {
		return fmt.Errorf("experiment: cluster size must be at least 1")
	}
	if len(p.PNodes) == 0 {
		return fmt.Errorf("experiment: at least one pNode value is required")
	}
	for _, v := range p.PNodes {
		if v < 0 || v > 1 {
			return fmt.Errorf("experiment: pNode %v outside [0, 1]", v)
		}
	}
	if p.Rounds < 1 {
		return fmt.Errorf("experiment: at least one round per sweep point is required")
	}
	if p.RoundDeadline <= 0 {
		return fmt.Errorf("experiment: round deadline must be positive")
	}
	return nil
}

// Runner executes a pNode sweep against a reliability-mode leader.
type Runner struct {
	driver RoundDriver
	params Params
	logger logging.Logger
}

// NewRunner creates a sweep runner.
func NewRunner(driver RoundDriver, params Params, logger logging.Logger) (*Runner, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{driver: driver, params: params, logger: logger}, nil
}

// Run executes the full sweep. Each pNode value is pushed to the cluster
// through the leader's broadcasts before its rounds start, so followers
// draw their ballots at the same setting. Cancelling the context stops
// the sweep between rounds and returns the points finished so far.
func (r *Runner) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, 0, len(r.params.PNodes))

	for _, pNode := range r.params.PNodes {
		res, err := r.runSweepPoint(ctx, pNode)
		if err != nil {
			return results, err
		}
		results = append(results, res)
		r.logger.Info("sweep point finished",
			"pNode", pNode,
			"pSys", res.PSys,
			"pSysTheory", res.PSysTheory,
			"avgEffectiveScale", res.AvgEffectiveScale,
			"packetLossRate", res.PacketLossRate)
	}
	return results, nil
}

func (r *Runner) runSweepPoint(ctx context.Context, pNode float64) (*Result, error) {
	if err := r.driver.SetPNode(pNode); err != nil {
		return nil, err
	}

	successes := 0
	scales := make([]int, 0, r.params.Rounds)

	for round := 1; round <= r.params.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		command := fmt.Sprintf("decision-%v-%d", pNode, round)
		outcome, err := r.driver.RunDecisionRound(command, r.params.RoundDeadline, r.params.ResendInterval)
		if err != nil {
			return nil, err
		}

		if outcome.Outcome.Consensus {
			successes++
		}
		scales = append(scales, outcome.Replies)
		r.logger.Debug("round finished",
			"round", round,
			"consensus", outcome.Outcome.Consensus,
			"replies", outcome.Replies,
			"yes", outcome.Yes, "no", outcome.No)

		if r.params.Pause > 0 && round < r.params.Rounds {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.params.Pause):
			}
		}
	}

	return aggregate(r.params.SNR, pNode, r.params.ClusterSize, successes, scales), nil
}
