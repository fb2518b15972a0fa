package partialamm

import (
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"

	"github.com/dragonfly-xyz/nottingham-contracts/protocols/partialamm/calculator"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ReservePool is a two-asset constant-product pool holding integer reserves
// r0 and r1. It is safe for concurrent use: quotes and reads share a read lock,
// trades and donations hold the write lock across their quote and update.
type ReservePool struct {
	mu sync.RWMutex
	r0 *uint256.Int
	r1 *uint256.Int

	// Immutable after construction
	id      string
	name    string
	logger  Logger
	metrics *Metrics
}

// Option configures a ReservePool.
type Option interface {
	apply(*ReservePool)
}

type funcOption func(*ReservePool)

func (f funcOption) apply(p *ReservePool) {
	f(p)
}

func newOption(f func(*ReservePool)) Option {
	return funcOption(f)
}

// WithLogger sets the logger used for trade diagnostics.
func WithLogger(logger Logger) Option {
	return newOption(func(p *ReservePool) {
		if logger != nil {
			p.logger = logger
		}
	})
}

// WithMetrics reports operations and reserves to m.
func WithMetrics(m *Metrics) Option {
	return newOption(func(p *ReservePool) {
		p.metrics = m
	})
}

// WithName attaches a caller chosen label to the pool.
func WithName(name string) Option {
	return newOption(func(p *ReservePool) {
		p.name = name
	})
}

// WithID overrides the random display identifier.
func WithID(id string) Option {
	return newOption(func(p *ReservePool) {
		if id != "" {
			p.id = id
		}
	})
}

// NewReservePool creates a pool with initial reserves r0 and r1. Both must be
// strictly positive and their product must fit in 256 bits.
func NewReservePool(r0, r1 *big.Int, opts ...Option) (*ReservePool, error) {
	reserve0, err := calculator.ToUint256(r0)
	if err != nil {
		return nil, fmt.Errorf("reserve0: %w", err)
	}
	reserve1, err := calculator.ToUint256(r1)
	if err != nil {
		return nil, fmt.Errorf("reserve1: %w", err)
	}
	if reserve0.IsZero() || reserve1.IsZero() {
		return nil, fmt.Errorf("%w: reserves must be greater than zero (r0=%s, r1=%s)", calculator.ErrInvalidArgument, reserve0.Dec(), reserve1.Dec())
	}
	if _, err := calculator.Invariant(reserve0, reserve1); err != nil {
		return nil, err
	}

	p := &ReservePool{
		r0:     reserve0,
		r1:     reserve1,
		id:     newID(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt.apply(p)
	}

	price, _ := calculator.Price0(p.r0, p.r1)
	p.metrics.observeState(p.label(), p.r0, p.r1, price)
	return p, nil
}

// newID returns the last four characters of a random UUID.
func newID() string {
	id := uuid.NewString()
	return id[len(id)-4:]
}

// ID returns the display identifier.
func (p *ReservePool) ID() string {
	return p.id
}

// Name returns the label set WithName, or "".
func (p *ReservePool) Name() string {
	return p.name
}

func (p *ReservePool) label() string {
	if p.name != "" {
		return p.name
	}
	return p.id
}

// --- Read Methods ---

// QuoteBuy0 returns the asset-1 amount a caller must pay to receive a0 of asset-0.
func (p *ReservePool) QuoteBuy0(a0 *big.Int) (*big.Int, error) {
	amount, err := calculator.ToUint256(a0)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	a1, err := calculator.QuoteBuy0(amount, p.r0, p.r1)
	if err != nil {
		return nil, err
	}
	return a1.ToBig(), nil
}

// QuoteSell0 returns the asset-1 amount a caller receives for a0 of asset-0.
func (p *ReservePool) QuoteSell0(a0 *big.Int) (*big.Int, error) {
	amount, err := calculator.ToUint256(a0)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	a1, err := calculator.QuoteSell0(amount, p.r0, p.r1)
	if err != nil {
		return nil, err
	}
	return a1.ToBig(), nil
}

// Price0 returns r1 / r0.
func (p *ReservePool) Price0() (float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return calculator.Price0(p.r0, p.r1)
}

// Reserves returns copies of r0 and r1.
func (p *ReservePool) Reserves() (r0, r1 *big.Int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.r0.ToBig(), p.r1.ToBig()
}

// Invariant returns k = r0 * r1.
func (p *ReservePool) Invariant() (*big.Int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	k, err := calculator.Invariant(p.r0, p.r1)
	if err != nil {
		return nil, err
	}
	return k.ToBig(), nil
}

// View returns a snapshot of the pool that shares no memory with it.
func (p *ReservePool) View() Pool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Pool{
		Name:     p.name,
		ID:       p.id,
		Reserve0: p.r0.ToBig(),
		Reserve1: p.r1.ToBig(),
	}
}

func (p *ReservePool) String() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	r0, r1 := p.r0.ToBig(), p.r1.ToBig()
	k := new(big.Int).Mul(r0, r1)
	price := "NaN"
	if v, err := calculator.Price0(p.r0, p.r1); err == nil {
		price = fmt.Sprint(v)
	}
	return fmt.Sprintf("<ReservePool:%s> r0=%s, r1=%s, k=%s, p=%s", p.id, r0, r1, k, price)
}

// --- Write Methods ---

// Buy0 takes a0 of asset-0 out of the pool in exchange for the quoted asset-1
// payment, and returns that payment.
func (p *ReservePool) Buy0(a0 *big.Int) (*big.Int, error) {
	amount, err := calculator.ToUint256(a0)
	if err != nil {
		p.rejected("buy0", a0, err)
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	a1, err := calculator.QuoteBuy0(amount, p.r0, p.r1)
	if err != nil {
		p.rejected("buy0", a0, err)
		return nil, err
	}

	newReserve0 := new(uint256.Int).Sub(p.r0, amount)
	newReserve1 := new(uint256.Int).Add(p.r1, a1) // ceil(k / newReserve0) <= k, cannot wrap
	if _, err := calculator.Invariant(newReserve0, newReserve1); err != nil {
		p.rejected("buy0", a0, err)
		return nil, err
	}

	p.commit("buy0", amount, a1, newReserve0, newReserve1)
	return a1.ToBig(), nil
}

// Sell0 puts a0 of asset-0 into the pool and returns the asset-1 payout.
func (p *ReservePool) Sell0(a0 *big.Int) (*big.Int, error) {
	amount, err := calculator.ToUint256(a0)
	if err != nil {
		p.rejected("sell0", a0, err)
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	a1, err := calculator.QuoteSell0(amount, p.r0, p.r1)
	if err != nil {
		p.rejected("sell0", a0, err)
		return nil, err
	}

	// QuoteSell0 already checked r0 + a0 for overflow and a1 < r1.
	newReserve0 := new(uint256.Int).Add(p.r0, amount)
	newReserve1 := new(uint256.Int).Sub(p.r1, a1)

	p.commit("sell0", amount, a1, newReserve0, newReserve1)
	return a1.ToBig(), nil
}

// Donate0 adds a0 to the asset-0 reserve without paying anything out and
// returns the new price. A zero donation leaves the pool as it is.
func (p *ReservePool) Donate0(a0 *big.Int) (float64, error) {
	amount, err := calculator.ToUint256(a0)
	if err != nil {
		p.rejected("donate0", a0, err)
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if amount.IsZero() {
		return p.commit("donate0", amount, nil, p.r0, p.r1), nil
	}

	newReserve0, overflow := new(uint256.Int).AddOverflow(p.r0, amount)
	if overflow {
		err := fmt.Errorf("%w: r0 (%s) + a0 (%s)", calculator.ErrArithmeticOverflow, p.r0.Dec(), amount.Dec())
		p.rejected("donate0", a0, err)
		return 0, err
	}
	if _, err := calculator.Invariant(newReserve0, p.r1); err != nil {
		p.rejected("donate0", a0, err)
		return 0, err
	}

	price := p.commit("donate0", amount, nil, newReserve0, p.r1)
	return price, nil
}

// commit installs the new reserves and reports the operation. It must be
// called with the write lock held.
func (p *ReservePool) commit(operation string, a0, a1, newReserve0, newReserve1 *uint256.Int) float64 {
	p.r0 = newReserve0
	p.r1 = newReserve1

	// r0 is never zero after a successful operation.
	price, _ := calculator.Price0(p.r0, p.r1)

	args := []any{"pool", p.label(), "a0", a0.Dec()}
	if a1 != nil {
		args = append(args, "a1", a1.Dec())
	}
	args = append(args, "r0", p.r0.Dec(), "r1", p.r1.Dec(), "price0", price)
	p.logger.Debug(operation, args...)

	p.metrics.observeOperation(p.label(), operation, nil)
	p.metrics.observeState(p.label(), p.r0, p.r1, price)
	return price
}

func (p *ReservePool) rejected(operation string, a0 *big.Int, err error) {
	p.logger.Debug(operation+" rejected", "pool", p.label(), "a0", a0, "error", err)
	p.metrics.observeOperation(p.label(), operation, err)
}
