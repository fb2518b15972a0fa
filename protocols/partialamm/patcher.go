package partialamm

import (
	"fmt"
	"math/big"
)

// deepCopyPool creates a new Pool with its own *big.Int reserves so the patched
// state never shares memory with the previous one.
func deepCopyPool(p Pool) Pool {
	newPool := p
	if p.Reserve0 != nil {
		newPool.Reserve0 = new(big.Int).Set(p.Reserve0)
	}
	if p.Reserve1 != nil {
		newPool.Reserve1 = new(big.Int).Set(p.Reserve1)
	}
	return newPool
}

// Patcher applies a diff to a previous set of snapshots and returns the new set,
// sorted by name. prevState is never mutated.
func Patcher(prevState []Pool, diff PartialAMMSystemDiff) ([]Pool, error) {
	newStateMap := make(map[string]Pool, len(prevState))
	for _, pool := range prevState {
		newStateMap[pool.Name] = deepCopyPool(pool)
	}

	for _, name := range diff.Deletions {
		if _, exists := newStateMap[name]; !exists {
			return nil, fmt.Errorf("patcher: cannot delete unknown pool %q", name)
		}
		delete(newStateMap, name)
	}

	for _, updatedPool := range diff.Updates {
		if _, exists := newStateMap[updatedPool.Name]; !exists {
			return nil, fmt.Errorf("patcher: cannot update unknown pool %q", updatedPool.Name)
		}
		newStateMap[updatedPool.Name] = deepCopyPool(updatedPool)
	}

	for _, addedPool := range diff.Additions {
		if _, exists := newStateMap[addedPool.Name]; exists {
			return nil, fmt.Errorf("patcher: pool %q already exists", addedPool.Name)
		}
		newStateMap[addedPool.Name] = deepCopyPool(addedPool)
	}

	finalState := make([]Pool, 0, len(newStateMap))
	for _, pool := range newStateMap {
		finalState = append(finalState, pool)
	}
	sortByName(finalState)

	return finalState, nil
}

// cmpNilable reports whether two possibly nil reserves are equal.
func cmpNilable(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}
