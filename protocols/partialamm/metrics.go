package partialamm

import (
	"errors"
	"math/big"

	"github.com/dragonfly-xyz/nottingham-contracts/protocols/partialamm/calculator"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors shared by every ReservePool that is
// built WithMetrics. A nil *Metrics records nothing.
type Metrics struct {
	trades   *prometheus.CounterVec
	reserves *prometheus.GaugeVec
	price    *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
// It panics if they are already registered, like prometheus.MustRegister.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		trades: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "partialamm",
				Name:      "operations_total",
				Help:      "Pool operations by pool, operation and outcome.",
			},
			[]string{"pool", "operation", "outcome"},
		),
		reserves: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "partialamm",
				Name:      "reserve",
				Help:      "Current reserve of each asset, as a float approximation.",
			},
			[]string{"pool", "asset"},
		),
		price: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "partialamm",
				Name:      "price0",
				Help:      "Marginal price of asset-0 denominated in asset-1.",
			},
			[]string{"pool"},
		),
	}
	reg.MustRegister(m.trades, m.reserves, m.price)
	return m
}

func (m *Metrics) observeOperation(pool, operation string, err error) {
	if m == nil {
		return
	}
	m.trades.WithLabelValues(pool, operation, outcome(err)).Inc()
}

func (m *Metrics) observeState(pool string, r0, r1 *uint256.Int, price float64) {
	if m == nil {
		return
	}
	m.reserves.WithLabelValues(pool, "0").Set(approx(r0))
	m.reserves.WithLabelValues(pool, "1").Set(approx(r1))
	m.price.WithLabelValues(pool).Set(price)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, calculator.ErrInsufficientReserve):
		return "insufficient_reserve"
	case errors.Is(err, calculator.ErrReserveExhausted):
		return "reserve_exhausted"
	case errors.Is(err, calculator.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, calculator.ErrArithmeticOverflow):
		return "overflow"
	case errors.Is(err, calculator.ErrInvalidState):
		return "invalid_state"
	default:
		return "error"
	}
}

func approx(v *uint256.Int) float64 {
	f, _ := new(big.Float).SetInt(v.ToBig()).Float64()
	return f
}
