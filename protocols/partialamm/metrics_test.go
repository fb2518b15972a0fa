package partialamm

import (
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	p := newTestPool(t, 10_000, 10_000, WithName("deep"), WithMetrics(m))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.price.WithLabelValues("deep")))

	_, err := p.Sell0(big.NewInt(10_000))
	require.NoError(t, err)
	_, err = p.Buy0(big.NewInt(20_000))
	require.Error(t, err)
	_, err = p.Donate0(big.NewInt(-1))
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.trades.WithLabelValues("deep", "sell0", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.trades.WithLabelValues("deep", "buy0", "insufficient_reserve")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.trades.WithLabelValues("deep", "donate0", "invalid_argument")))
	assert.Equal(t, 20_000.0, testutil.ToFloat64(m.reserves.WithLabelValues("deep", "0")))
	assert.Equal(t, 5_000.0, testutil.ToFloat64(m.reserves.WithLabelValues("deep", "1")))
	assert.Equal(t, 0.25, testutil.ToFloat64(m.price.WithLabelValues("deep")))

	assert.Panics(t, func() { NewMetrics(registry) }, "collectors can only be registered once per registry")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observeOperation("pool", "buy0", nil)
		m.observeState("pool", nil, nil, 0)
	})
}
