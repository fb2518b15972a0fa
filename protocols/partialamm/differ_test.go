package partialamm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffer(t *testing.T) {
	shallowOld := Pool{Name: "shallow", ID: "a1f0", Reserve0: big.NewInt(100), Reserve1: big.NewInt(10)}
	midOld := Pool{Name: "mid", ID: "07c2", Reserve0: big.NewInt(1000), Reserve1: big.NewInt(100)}
	deepOld := Pool{Name: "deep", ID: "9e4b", Reserve0: big.NewInt(10000), Reserve1: big.NewInt(1000)}

	t.Run("should identify additions correctly", func(t *testing.T) {
		diff := Differ([]Pool{shallowOld}, []Pool{shallowOld, midOld})

		assert.Len(t, diff.Additions, 1)
		assert.Equal(t, "mid", diff.Additions[0].Name)
		assert.Empty(t, diff.Updates)
		assert.Empty(t, diff.Deletions)
		assert.False(t, diff.IsEmpty())
	})

	t.Run("should identify deletions correctly", func(t *testing.T) {
		diff := Differ([]Pool{shallowOld, midOld}, []Pool{shallowOld})

		assert.Empty(t, diff.Additions)
		assert.Empty(t, diff.Updates)
		assert.Equal(t, []string{"mid"}, diff.Deletions)
	})

	t.Run("should identify reserve updates", func(t *testing.T) {
		shallowBought := Pool{Name: "shallow", ID: "a1f0", Reserve0: big.NewInt(95), Reserve1: big.NewInt(11)}

		diff := Differ([]Pool{shallowOld}, []Pool{shallowBought})

		assert.Empty(t, diff.Additions)
		require.Len(t, diff.Updates, 1)
		assert.Equal(t, int64(95), diff.Updates[0].Reserve0.Int64())
		assert.Empty(t, diff.Deletions)
	})

	t.Run("should ignore display identifier changes", func(t *testing.T) {
		relabelled := shallowOld
		relabelled.ID = "ffff"

		diff := Differ([]Pool{shallowOld}, []Pool{relabelled})
		assert.True(t, diff.IsEmpty())
	})

	t.Run("should handle a mix and sort by name", func(t *testing.T) {
		deepDonated := Pool{Name: "deep", ID: "9e4b", Reserve0: big.NewInt(20000), Reserve1: big.NewInt(1000)}
		midSold := Pool{Name: "mid", ID: "07c2", Reserve0: big.NewInt(1100), Reserve1: big.NewInt(91)}
		added := []Pool{
			{Name: "zeta", Reserve0: big.NewInt(1), Reserve1: big.NewInt(1)},
			{Name: "alpha", Reserve0: big.NewInt(2), Reserve1: big.NewInt(2)},
		}

		oldState := []Pool{shallowOld, midOld, deepOld}
		newState := append([]Pool{midSold, deepDonated}, added...)

		diff := Differ(oldState, newState)

		require.Len(t, diff.Additions, 2)
		assert.Equal(t, "alpha", diff.Additions[0].Name)
		assert.Equal(t, "zeta", diff.Additions[1].Name)
		require.Len(t, diff.Updates, 2)
		assert.Equal(t, "deep", diff.Updates[0].Name)
		assert.Equal(t, "mid", diff.Updates[1].Name)
		assert.Equal(t, []string{"shallow"}, diff.Deletions)
	})

	t.Run("should produce an empty diff when there are no changes", func(t *testing.T) {
		diff := Differ([]Pool{shallowOld, midOld}, []Pool{shallowOld, midOld})
		assert.True(t, diff.IsEmpty())
	})

	t.Run("should handle empty states", func(t *testing.T) {
		diff := Differ(nil, []Pool{})
		assert.True(t, diff.IsEmpty())
	})
}
