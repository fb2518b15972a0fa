package partialamm

import "math/big"

// Pool is an immutable snapshot of a ReservePool.
// Name keys the pool inside a set of snapshots; ID is display only.
type Pool struct {
	Name     string   `json:"name" yaml:"name"`
	ID       string   `json:"id" yaml:"id"`
	Reserve0 *big.Int `json:"reserve0" yaml:"reserve0"`
	Reserve1 *big.Int `json:"reserve1" yaml:"reserve1"`
}

// Invariant returns Reserve0 * Reserve1. Snapshots hold arbitrary precision
// values, so this never overflows.
func (p Pool) Invariant() *big.Int {
	if p.Reserve0 == nil || p.Reserve1 == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(p.Reserve0, p.Reserve1)
}

// Price0 returns Reserve1 / Reserve0, or false when Reserve0 is zero.
func (p Pool) Price0() (float64, bool) {
	if p.Reserve0 == nil || p.Reserve1 == nil || p.Reserve0.Sign() == 0 {
		return 0, false
	}
	price, _ := new(big.Rat).SetFrac(p.Reserve1, p.Reserve0).Float64()
	return price, true
}
