package simulation

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"gopkg.in/yaml.v3"
)

// Action names a pool operation a scenario step performs.
type Action string

const (
	ActionBuy0    Action = "buy0"
	ActionSell0   Action = "sell0"
	ActionDonate0 Action = "donate0"
)

// bpsDenominator is 100% in basis points.
const bpsDenominator = 10_000

var (
	// ErrInvalidScenario is returned when a scenario fails validation.
	ErrInvalidScenario = errors.New("invalid scenario")

	//go:embed scenarios/demo.yaml
	demoScenario []byte
)

// Scenario describes a set of pools and the trades driven against them.
type Scenario struct {
	Name        string       `yaml:"name"`
	HaltOnError bool         `yaml:"haltOnError"`
	Pools       []PoolConfig `yaml:"pools"`
	Steps       []StepConfig `yaml:"steps"`
}

// PoolConfig is the initial state of one pool. Reserves accept decimal or
// 0x-prefixed hex values up to 256 bits.
type PoolConfig struct {
	Name     string               `yaml:"name"`
	Reserve0 math.HexOrDecimal256 `yaml:"reserve0"`
	Reserve1 math.HexOrDecimal256 `yaml:"reserve1"`
}

// StepConfig is one scripted operation. Exactly one of Amount and FractionBps
// must be set; FractionBps sizes the trade as a share of the pool's current
// asset-0 reserve. An empty Pools list targets every pool.
type StepConfig struct {
	Pools       []string              `yaml:"pools,omitempty"`
	Action      Action                `yaml:"action"`
	Amount      *math.HexOrDecimal256 `yaml:"amount,omitempty"`
	FractionBps uint64                `yaml:"fractionBps,omitempty"`
	Repeat      int                   `yaml:"repeat,omitempty"`
}

// LoadScenario reads and validates a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// DemoScenario returns the built-in scenario: three pools of increasing depth
// each bought 5% of their asset-0 reserve ten times, and a balanced pool sold
// its whole asset-0 reserve.
func DemoScenario() *Scenario {
	sc, err := ParseScenario(demoScenario)
	if err != nil {
		panic(fmt.Sprintf("embedded demo scenario is invalid: %v", err))
	}
	return sc
}

// ParseScenario decodes and validates a YAML scenario. Unknown fields are rejected.
func ParseScenario(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks pool names and step references. Amount ranges are left to
// the pools, whose rejections are recorded as step errors.
func (sc *Scenario) Validate() error {
	if len(sc.Pools) == 0 {
		return fmt.Errorf("%w: no pools", ErrInvalidScenario)
	}

	names := make(map[string]struct{}, len(sc.Pools))
	for i, pool := range sc.Pools {
		if pool.Name == "" {
			return fmt.Errorf("%w: pool %d has no name", ErrInvalidScenario, i)
		}
		if _, exists := names[pool.Name]; exists {
			return fmt.Errorf("%w: pool %q defined more than once", ErrInvalidScenario, pool.Name)
		}
		names[pool.Name] = struct{}{}
	}

	for i, step := range sc.Steps {
		switch step.Action {
		case ActionBuy0, ActionSell0, ActionDonate0:
		default:
			return fmt.Errorf("%w: step %d has unknown action %q", ErrInvalidScenario, i, step.Action)
		}
		for _, name := range step.Pools {
			if _, exists := names[name]; !exists {
				return fmt.Errorf("%w: step %d references unknown pool %q", ErrInvalidScenario, i, name)
			}
		}
		if (step.Amount == nil) == (step.FractionBps == 0) {
			return fmt.Errorf("%w: step %d must set exactly one of amount and fractionBps", ErrInvalidScenario, i)
		}
		if step.FractionBps > bpsDenominator {
			return fmt.Errorf("%w: step %d fractionBps %d exceeds %d", ErrInvalidScenario, i, step.FractionBps, bpsDenominator)
		}
		if step.Repeat < 0 {
			return fmt.Errorf("%w: step %d has negative repeat", ErrInvalidScenario, i)
		}
	}
	return nil
}

// targets returns the pool names a step applies to, in scenario order.
func (sc *Scenario) targets(step StepConfig) []string {
	if len(step.Pools) > 0 {
		return step.Pools
	}
	names := make([]string, len(sc.Pools))
	for i, pool := range sc.Pools {
		names[i] = pool.Name
	}
	return names
}

// amount resolves the step's trade size against the current asset-0 reserve.
func (step StepConfig) amount(reserve0 *big.Int) *big.Int {
	if step.Amount != nil {
		return new(big.Int).Set((*big.Int)(step.Amount))
	}
	a0 := new(big.Int).Mul(reserve0, new(big.Int).SetUint64(step.FractionBps))
	return a0.Quo(a0, big.NewInt(bpsDenominator))
}

func (step StepConfig) repeat() int {
	if step.Repeat == 0 {
		return 1
	}
	return step.Repeat
}
