package simulation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("testdata", "rejections.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "rejections", sc.Name)
	assert.False(t, sc.HaltOnError)
	require.Len(t, sc.Pools, 1)
	assert.Equal(t, "main", sc.Pools[0].Name)
	assert.Equal(t, "10000", bigOf(sc.Pools[0].Reserve0).String(), "hex reserves are accepted")
	assert.Equal(t, "10000", bigOf(sc.Pools[0].Reserve1).String())

	require.Len(t, sc.Steps, 4)
	assert.Equal(t, ActionBuy0, sc.Steps[0].Action)
	require.NotNil(t, sc.Steps[0].Amount)
	assert.Equal(t, "90", bigOf(*sc.Steps[0].Amount).String())
	assert.Nil(t, sc.Steps[3].Amount)
	assert.Equal(t, uint64(10_000), sc.Steps[3].FractionBps)

	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestDemoScenario(t *testing.T) {
	sc := DemoScenario()

	names := make([]string, len(sc.Pools))
	for i, p := range sc.Pools {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"shallow", "mid", "deep", "balanced"}, names)
	require.Len(t, sc.Steps, 2)
	assert.Equal(t, 10, sc.Steps[0].Repeat)
	assert.Equal(t, uint64(500), sc.Steps[0].FractionBps)
}

func TestParseScenario_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{name: "Malformed YAML", yaml: "pools: [\n"},
		{name: "Unknown field", yaml: "pools: [{name: a, reserve0: 1, reserve1: 1, fee: 3}]"},
		{name: "No pools", yaml: "name: empty"},
		{name: "Unnamed pool", yaml: "pools: [{reserve0: 1, reserve1: 1}]"},
		{name: "Duplicate pool", yaml: "pools: [{name: a, reserve0: 1, reserve1: 1}, {name: a, reserve0: 2, reserve1: 2}]"},
		{name: "Reserve wider than 256 bits", yaml: "pools: [{name: a, reserve0: 0x1" + zeros(64) + ", reserve1: 1}]"},
		{
			name: "Unknown action",
			yaml: "pools: [{name: a, reserve0: 1, reserve1: 1}]\nsteps: [{action: swap, amount: 1}]",
		},
		{
			name: "Unknown pool reference",
			yaml: "pools: [{name: a, reserve0: 1, reserve1: 1}]\nsteps: [{pools: [b], action: buy0, amount: 1}]",
		},
		{
			name: "Amount and fraction",
			yaml: "pools: [{name: a, reserve0: 1, reserve1: 1}]\nsteps: [{action: buy0, amount: 1, fractionBps: 5}]",
		},
		{
			name: "Neither amount nor fraction",
			yaml: "pools: [{name: a, reserve0: 1, reserve1: 1}]\nsteps: [{action: buy0}]",
		},
		{
			name: "Fraction above one",
			yaml: "pools: [{name: a, reserve0: 1, reserve1: 1}]\nsteps: [{action: buy0, fractionBps: 10001}]",
		},
		{
			name: "Negative repeat",
			yaml: "pools: [{name: a, reserve0: 1, reserve1: 1}]\nsteps: [{action: buy0, amount: 1, repeat: -1}]",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sc, err := ParseScenario([]byte(tc.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidScenario)
			assert.Nil(t, sc)
		})
	}
}

func zeros(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '0'
	}
	return string(b)
}
