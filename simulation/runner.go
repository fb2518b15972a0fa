package simulation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"

	"github.com/dragonfly-xyz/nottingham-contracts/protocols/partialamm"
)

// Runner drives the pools of a scenario through their public operations and
// records what happened.
type Runner struct {
	logger  partialamm.Logger
	metrics *partialamm.Metrics
}

// NewRunner returns a Runner. A nil logger discards output; a nil metrics
// records nothing.
func NewRunner(logger partialamm.Logger, metrics *partialamm.Metrics) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{logger: logger, metrics: metrics}
}

// Run builds the scenario's pools and executes its steps in order. Rejected
// operations are recorded on the step and leave the pool untouched; with
// HaltOnError the first rejection also ends the run and is returned alongside
// the partial trajectory. Run stops between operations when ctx is done.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Trajectory, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	pools := partialamm.NewRegistry()
	for _, cfg := range sc.Pools {
		pool, err := partialamm.NewReservePool(
			(*big.Int)(&cfg.Reserve0),
			(*big.Int)(&cfg.Reserve1),
			partialamm.WithName(cfg.Name),
			partialamm.WithLogger(r.logger),
			partialamm.WithMetrics(r.metrics),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: pool %q: %w", ErrInvalidScenario, cfg.Name, err)
		}
		if err := pools.Add(pool); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
		}
	}

	// Initial, the step diffs and Final each hold their own snapshots so that
	// no two of them share reserves.
	state := pools.View()
	traj := &Trajectory{
		Scenario: sc.Name,
		Initial:  pools.View(),
	}
	r.logger.Info("scenario started", "scenario", sc.Name, "pools", pools.Len(), "steps", len(sc.Steps))

	for _, cfg := range sc.Steps {
		for i := 0; i < cfg.repeat(); i++ {
			for _, name := range sc.targets(cfg) {
				if err := ctx.Err(); err != nil {
					traj.Final = pools.View()
					return traj, err
				}

				pool, _ := pools.Get(name)
				step := apply(pool, cfg)
				step.Index = len(traj.Steps)

				next := pools.View()
				step.Diff = partialamm.Differ(state, next)
				state = next
				traj.Steps = append(traj.Steps, step)

				if step.Err != nil {
					r.logger.Warn("step rejected", "index", step.Index, "pool", name, "action", cfg.Action, "amount", step.AmountIn, "error", step.Err)
					if sc.HaltOnError {
						traj.Final = pools.View()
						return traj, fmt.Errorf("step %d (%s %s): %w", step.Index, cfg.Action, name, step.Err)
					}
				}
			}
		}
	}

	traj.Final = pools.View()
	r.logger.Info("scenario finished", "scenario", sc.Name, "steps", len(traj.Steps), "rejected", traj.Rejected())
	return traj, nil
}

func apply(pool *partialamm.ReservePool, cfg StepConfig) Step {
	r0, _ := pool.Reserves()
	step := Step{
		Pool:     pool.Name(),
		Action:   cfg.Action,
		AmountIn: cfg.amount(r0),
	}

	switch cfg.Action {
	case ActionBuy0:
		step.AmountOut, step.Err = pool.Buy0(step.AmountIn)
	case ActionSell0:
		step.AmountOut, step.Err = pool.Sell0(step.AmountIn)
	case ActionDonate0:
		_, step.Err = pool.Donate0(step.AmountIn)
	}

	// The pool is not shared outside the runner, so this read matches the
	// state the operation left behind.
	step.Price0, _ = pool.Price0()
	return step
}
