package partialamm

import "sort"

// PartialAMMSystemDiff is the change set between two sets of pool snapshots.
type PartialAMMSystemDiff struct {
	Additions []Pool   `json:"additions,omitempty"`
	Updates   []Pool   `json:"updates,omitempty"`
	Deletions []string `json:"deletions,omitempty"`
}

// IsEmpty returns true if the diff contains no changes.
func (d PartialAMMSystemDiff) IsEmpty() bool {
	return len(d.Additions) == 0 && len(d.Updates) == 0 && len(d.Deletions) == 0
}

// Differ calculates the difference between two sets of pool snapshots, keyed by
// pool name. Only reserve changes count as updates. Output slices are sorted by
// name so that trajectories are reproducible.
func Differ(old, new []Pool) PartialAMMSystemDiff {
	oldPoolsMap := make(map[string]Pool, len(old))
	for _, pool := range old {
		oldPoolsMap[pool.Name] = pool
	}

	newPoolsMap := make(map[string]Pool, len(new))
	for _, pool := range new {
		newPoolsMap[pool.Name] = pool
	}

	var additions []Pool
	var updates []Pool
	var deletions []string

	for name, newPool := range newPoolsMap {
		oldPool, exists := oldPoolsMap[name]
		if !exists {
			additions = append(additions, newPool)
			continue
		}
		if !sameReserves(oldPool, newPool) {
			updates = append(updates, newPool)
		}
	}

	for name := range oldPoolsMap {
		if _, exists := newPoolsMap[name]; !exists {
			deletions = append(deletions, name)
		}
	}

	sortByName(additions)
	sortByName(updates)
	sort.Strings(deletions)

	return PartialAMMSystemDiff{
		Additions: additions,
		Updates:   updates,
		Deletions: deletions,
	}
}

func sameReserves(a, b Pool) bool {
	return cmpNilable(a.Reserve0, b.Reserve0) && cmpNilable(a.Reserve1, b.Reserve1)
}

func sortByName(pools []Pool) {
	sort.Slice(pools, func(i, j int) bool { return pools[i].Name < pools[j].Name })
}
