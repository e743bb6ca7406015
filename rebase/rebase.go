// Package rebase implements elastic/base share accounting: a pool-wide
// (base, elastic) pair and exact, rounding-aware conversions between the
// two units, so that yield or fee accrual can be represented by moving the
// elastic total without rewriting every holder's balance.
package rebase

import (
	"errors"

	"github.com/holiman/uint256"
)

// Errors
var (
	ErrDivideByZero = errors.New("division by zero")
	ErrOverflow     = errors.New("operand exceeds 128 bits")
	ErrUnderflow    = errors.New("rebase total underflow")
)

// MulDiv computes floor(x*y/denominator) exactly. Operands are capped at
// 128 bits so the 256-bit intermediate product cannot wrap; callers keep
// amounts within that width per the data model.
func MulDiv(x, y, denominator *uint256.Int) (*uint256.Int, error) {
	if denominator.IsZero() {
		return nil, ErrDivideByZero
	}
	if x.BitLen() > 128 || y.BitLen() > 128 {
		return nil, ErrOverflow
	}
	product := new(uint256.Int).Mul(x, y)
	return product.Div(product, denominator), nil
}

// Rebase holds a pool's share count (Base) and the underlying value those
// shares represent (Elastic). It is a pure arithmetic engine: no invariant
// ties the totals to any external custody beyond the caller's bookkeeping.
// The zero value is an empty pool, ready to use.
type Rebase struct {
	Base    uint256.Int
	Elastic uint256.Int
}

// New returns an empty Rebase.
func New() *Rebase {
	return &Rebase{}
}

// ToBase converts an elastic amount into base units. For an empty pool
// (elastic total zero) the conversion is the identity. With roundUp the
// result is corrected upward by one whenever re-deriving the elastic value
// from the computed base under-shoots the input, so the conversion never
// silently loses value to a caller who asked for ceiling semantics.
func (r *Rebase) ToBase(elastic *uint256.Int, roundUp bool) (*uint256.Int, error) {
	if r.Elastic.IsZero() {
		return new(uint256.Int).Set(elastic), nil
	}
	base, err := MulDiv(elastic, &r.Base, &r.Elastic)
	if err != nil {
		return nil, err
	}
	if roundUp {
		back, err := MulDiv(base, &r.Elastic, &r.Base)
		if err != nil {
			return nil, err
		}
		if back.Lt(elastic) {
			base.AddUint64(base, 1)
		}
	}
	return base, nil
}

// ToElastic converts a base amount into elastic units; symmetric to ToBase
// with the degenerate case keyed on the base total.
func (r *Rebase) ToElastic(base *uint256.Int, roundUp bool) (*uint256.Int, error) {
	if r.Base.IsZero() {
		return new(uint256.Int).Set(base), nil
	}
	elastic, err := MulDiv(base, &r.Elastic, &r.Base)
	if err != nil {
		return nil, err
	}
	if roundUp {
		back, err := MulDiv(elastic, &r.Base, &r.Elastic)
		if err != nil {
			return nil, err
		}
		if back.Lt(base) {
			elastic.AddUint64(elastic, 1)
		}
	}
	return elastic, nil
}

// AddElastic credits the pool with an elastic amount, increasing both
// totals, and returns the base amount minted for it.
func (r *Rebase) AddElastic(elastic *uint256.Int, roundUp bool) (*uint256.Int, error) {
	base, err := r.ToBase(elastic, roundUp)
	if err != nil {
		return nil, err
	}
	r.Base.Add(&r.Base, base)
	r.Elastic.Add(&r.Elastic, elastic)
	return base, nil
}

// SubBase debits the pool by a base amount, decreasing both totals, and
// returns the elastic amount released. Fails with ErrUnderflow if either
// total would go negative.
func (r *Rebase) SubBase(base *uint256.Int, roundUp bool) (*uint256.Int, error) {
	elastic, err := r.ToElastic(base, roundUp)
	if err != nil {
		return nil, err
	}
	if r.Base.Lt(base) || r.Elastic.Lt(elastic) {
		return nil, ErrUnderflow
	}
	r.Base.Sub(&r.Base, base)
	r.Elastic.Sub(&r.Elastic, elastic)
	return elastic, nil
}

// SubElastic debits the pool keyed by an elastic amount, decreasing both
// totals, and returns the base amount burned.
func (r *Rebase) SubElastic(elastic *uint256.Int, roundUp bool) (*uint256.Int, error) {
	base, err := r.ToBase(elastic, roundUp)
	if err != nil {
		return nil, err
	}
	if r.Base.Lt(base) || r.Elastic.Lt(elastic) {
		return nil, ErrUnderflow
	}
	r.Base.Sub(&r.Base, base)
	r.Elastic.Sub(&r.Elastic, elastic)
	return base, nil
}

// SetElastic overwrites the elastic total without touching base. Used to
// mark external value changes (accrued yield, realized losses) without
// minting or burning shares.
func (r *Rebase) SetElastic(elastic *uint256.Int) {
	r.Elastic.Set(elastic)
}
