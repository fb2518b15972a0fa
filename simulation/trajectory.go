package simulation

import (
	"fmt"
	"math/big"

	"github.com/dragonfly-xyz/nottingham-contracts/protocols/partialamm"
)

// Step is one executed pool operation.
type Step struct {
	Index  int    `json:"index"`
	Pool   string `json:"pool"`
	Action Action `json:"action"`
	// AmountIn is the asset-0 amount traded or donated.
	AmountIn *big.Int `json:"amountIn"`
	// AmountOut is the asset-1 amount paid (buy0) or received (sell0). It is
	// nil for donations and rejected operations.
	AmountOut *big.Int `json:"amountOut,omitempty"`
	// Price0 is the pool's price after the operation.
	Price0 float64 `json:"price0"`
	Err    error   `json:"-"`
	// Diff is the change to the set of pool snapshots caused by this step.
	Diff partialamm.PartialAMMSystemDiff `json:"diff"`
}

// Trajectory is the record of a scenario run.
type Trajectory struct {
	Scenario string            `json:"scenario"`
	Initial  []partialamm.Pool `json:"initial"`
	Steps    []Step            `json:"steps"`
	Final    []partialamm.Pool `json:"final"`
}

// Prices returns the named pool's initial price followed by its price after
// each of its successful steps.
func (t *Trajectory) Prices(pool string) []float64 {
	var prices []float64
	for _, p := range t.Initial {
		if p.Name == pool {
			price, _ := p.Price0()
			prices = append(prices, price)
		}
	}
	if prices == nil {
		return nil
	}
	for _, step := range t.Steps {
		if step.Pool == pool && step.Err == nil {
			prices = append(prices, step.Price0)
		}
	}
	return prices
}

// Rejected returns the number of steps whose operation failed.
func (t *Trajectory) Rejected() int {
	n := 0
	for _, step := range t.Steps {
		if step.Err != nil {
			n++
		}
	}
	return n
}

// StateAt rebuilds the pool snapshots as they were after step index by
// replaying step diffs over the initial state. An index of -1 returns the
// initial state.
func (t *Trajectory) StateAt(index int) ([]partialamm.Pool, error) {
	if index < -1 || index >= len(t.Steps) {
		return nil, fmt.Errorf("step %d out of range [-1, %d)", index, len(t.Steps))
	}

	state, err := partialamm.Patcher(t.Initial, partialamm.PartialAMMSystemDiff{})
	if err != nil {
		return nil, err
	}
	for i := 0; i <= index; i++ {
		state, err = partialamm.Patcher(state, t.Steps[i].Diff)
		if err != nil {
			return nil, fmt.Errorf("replay step %d: %w", i, err)
		}
	}
	return state, nil
}
