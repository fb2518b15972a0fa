package partialamm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findPoolByName finds a pool in a slice, for testing assertions.
func findPoolByName(pools []Pool, name string) *Pool {
	for i := range pools {
		if pools[i].Name == name {
			return &pools[i]
		}
	}
	return nil
}

func TestPatcher(t *testing.T) {
	initialState := []Pool{
		{Name: "shallow", Reserve0: big.NewInt(100), Reserve1: big.NewInt(10)},
		{Name: "mid", Reserve0: big.NewInt(1000), Reserve1: big.NewInt(100)},
		{Name: "deep", Reserve0: big.NewInt(10000), Reserve1: big.NewInt(1000)},
	}

	t.Run("should apply a mix of operations", func(t *testing.T) {
		diff := PartialAMMSystemDiff{
			Additions: []Pool{{Name: "fresh", Reserve0: big.NewInt(5), Reserve1: big.NewInt(5)}},
			Updates:   []Pool{{Name: "mid", Reserve0: big.NewInt(950), Reserve1: big.NewInt(106)}},
			Deletions: []string{"deep"},
		}

		newState, err := Patcher(initialState, diff)
		require.NoError(t, err)

		require.Len(t, newState, 3)
		assert.Equal(t, []string{"fresh", "mid", "shallow"}, []string{newState[0].Name, newState[1].Name, newState[2].Name})
		assert.Nil(t, findPoolByName(newState, "deep"))
		mid := findPoolByName(newState, "mid")
		require.NotNil(t, mid)
		assert.Equal(t, int64(950), mid.Reserve0.Int64())
		assert.Equal(t, int64(106), mid.Reserve1.Int64())
	})

	t.Run("should isolate new state from the old one", func(t *testing.T) {
		local := []Pool{{Name: "shallow", Reserve0: big.NewInt(100), Reserve1: big.NewInt(10)}}

		newState, err := Patcher(local, PartialAMMSystemDiff{})
		require.NoError(t, err)

		local[0].Reserve0.SetInt64(9999)
		assert.Equal(t, int64(100), newState[0].Reserve0.Int64())
	})

	t.Run("should reject inconsistent diffs", func(t *testing.T) {
		_, err := Patcher(initialState, PartialAMMSystemDiff{Deletions: []string{"missing"}})
		assert.Error(t, err)

		_, err = Patcher(initialState, PartialAMMSystemDiff{Updates: []Pool{{Name: "missing"}}})
		assert.Error(t, err)

		_, err = Patcher(initialState, PartialAMMSystemDiff{Additions: []Pool{{Name: "mid"}}})
		assert.Error(t, err)
	})

	t.Run("should round trip with Differ", func(t *testing.T) {
		target := []Pool{
			{Name: "shallow", Reserve0: big.NewInt(95), Reserve1: big.NewInt(11)},
			{Name: "deep", Reserve0: big.NewInt(10000), Reserve1: big.NewInt(1000)},
			{Name: "fresh", Reserve0: big.NewInt(7), Reserve1: big.NewInt(3)},
		}

		newState, err := Patcher(initialState, Differ(initialState, target))
		require.NoError(t, err)
		assert.True(t, Differ(newState, target).IsEmpty())
		assert.Len(t, newState, 3)
	})
}

func TestPoolSnapshot(t *testing.T) {
	p := Pool{Reserve0: big.NewInt(20000), Reserve1: big.NewInt(5000)}
	assert.Equal(t, "100000000", p.Invariant().String())

	price, ok := p.Price0()
	require.True(t, ok)
	assert.Equal(t, 0.25, price)

	_, ok = Pool{Reserve0: big.NewInt(0), Reserve1: big.NewInt(1)}.Price0()
	assert.False(t, ok)
	assert.Equal(t, "0", Pool{}.Invariant().String())
}
