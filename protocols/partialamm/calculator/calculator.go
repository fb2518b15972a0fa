package calculator

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

var (
	one = uint256.NewInt(1)

	// ErrInvalidArgument is returned when a trade amount or reserve is non-positive.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNilAmount is returned when a nil pointer is passed for an amount.
	ErrNilAmount = fmt.Errorf("%w: nil pointer passed as amount", ErrInvalidArgument)
	// ErrInsufficientReserve is returned when a buy asks for the whole asset-0 reserve or more.
	ErrInsufficientReserve = errors.New("insufficient reserve")
	// ErrReserveExhausted is returned when a sell would pay out the whole asset-1 reserve or more.
	ErrReserveExhausted = errors.New("reserve exhausted")
	// ErrInvalidState is returned when a computation needs a reserve that is zero.
	ErrInvalidState = errors.New("invalid pool state")
	// ErrDivisionByZero is returned for a zero denominator.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrArithmeticOverflow is returned when a value does not fit in 256 bits.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
)

// CeilDiv returns ceil(n / d).
// The quotient is bumped when the remainder is non-zero, which is the same as
// (n + d - 1) / d without the intermediate sum.
func CeilDiv(n, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, fmt.Errorf("%w: ceil(%s / 0)", ErrDivisionByZero, n.Dec())
	}
	quo, rem := new(uint256.Int).DivMod(n, d, new(uint256.Int))
	if !rem.IsZero() {
		quo.Add(quo, one)
	}
	return quo, nil
}

// Invariant returns k = r0 * r1.
func Invariant(r0, r1 *uint256.Int) (*uint256.Int, error) {
	k, overflow := new(uint256.Int).MulOverflow(r0, r1)
	if overflow {
		return nil, fmt.Errorf("%w: r0 (%s) * r1 (%s)", ErrArithmeticOverflow, r0.Dec(), r1.Dec())
	}
	return k, nil
}

// QuoteBuy0 returns the asset-1 payment required to take a0 of asset-0 out of
// a pool holding (r0, r1). The payment is rounded up so that the post-trade
// product never drops below k.
func QuoteBuy0(a0, r0, r1 *uint256.Int) (*uint256.Int, error) {
	if err := checkTrade(a0, r0, r1); err != nil {
		return nil, err
	}
	if !a0.Lt(r0) {
		return nil, fmt.Errorf("%w: a0 (%s) >= r0 (%s)", ErrInsufficientReserve, a0.Dec(), r0.Dec())
	}

	k, err := Invariant(r0, r1)
	if err != nil {
		return nil, err
	}

	// a1 = ceil(k / (r0 - a0)) - r1
	newReserve1, err := CeilDiv(k, new(uint256.Int).Sub(r0, a0))
	if err != nil {
		return nil, err
	}
	return newReserve1.Sub(newReserve1, r1), nil
}

// QuoteSell0 returns the asset-1 payout for putting a0 of asset-0 into a pool
// holding (r0, r1). The new asset-1 reserve is floored, so the pool can end up
// with a product up to one asset-1 unit below k.
func QuoteSell0(a0, r0, r1 *uint256.Int) (*uint256.Int, error) {
	if err := checkTrade(a0, r0, r1); err != nil {
		return nil, err
	}

	k, err := Invariant(r0, r1)
	if err != nil {
		return nil, err
	}
	newReserve0, overflow := new(uint256.Int).AddOverflow(r0, a0)
	if overflow {
		return nil, fmt.Errorf("%w: r0 (%s) + a0 (%s)", ErrArithmeticOverflow, r0.Dec(), a0.Dec())
	}

	// a1 = r1 - floor(k / (r0 + a0))
	newReserve1 := new(uint256.Int).Div(k, newReserve0)
	a1 := new(uint256.Int).Sub(r1, newReserve1)
	if !a1.Lt(r1) {
		return nil, fmt.Errorf("%w: a1 (%s) >= r1 (%s)", ErrReserveExhausted, a1.Dec(), r1.Dec())
	}
	return a1, nil
}

// Price0 returns r1 / r0, the marginal price of asset-0 in asset-1.
func Price0(r0, r1 *uint256.Int) (float64, error) {
	if r0.IsZero() {
		return 0, fmt.Errorf("%w: price0 with r0 = 0: %w", ErrInvalidState, ErrDivisionByZero)
	}
	price, _ := new(big.Rat).SetFrac(r1.ToBig(), r0.ToBig()).Float64()
	return price, nil
}

// ToUint256 converts a caller supplied amount, rejecting nil, negative and
// values wider than 256 bits.
func ToUint256(amount *big.Int) (*uint256.Int, error) {
	if amount == nil {
		return nil, ErrNilAmount
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative amount %s", ErrInvalidArgument, amount.String())
	}
	v, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, fmt.Errorf("%w: amount %s exceeds 256 bits", ErrArithmeticOverflow, amount.String())
	}
	return v, nil
}

func checkTrade(a0, r0, r1 *uint256.Int) error {
	if a0.IsZero() {
		return fmt.Errorf("%w: a0 must be greater than zero", ErrInvalidArgument)
	}
	if r0.IsZero() || r1.IsZero() {
		return fmt.Errorf("%w: zero reserve (r0=%s, r1=%s)", ErrInvalidState, r0.Dec(), r1.Dec())
	}
	return nil
}
