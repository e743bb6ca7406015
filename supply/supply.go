// Package supply tracks per-slot token supplies for a semi-fungible asset:
// an explicit mapping from slot to total, with lazy default-zero insertion
// exposed as a get-or-insert operation rather than an implicit side effect.
package supply

import (
	"errors"

	"github.com/holiman/uint256"
)

// ErrInsufficientSupply is returned when a decrease exceeds a slot's total.
var ErrInsufficientSupply = errors.New("decrease exceeds slot supply")

// Supply holds the per-slot totals and the asset's decimal scalar.
type Supply struct {
	decimals uint8
	totals   map[uint64]*uint256.Int
}

// New creates an empty supply with the given decimal scalar.
func New(decimals uint8) *Supply {
	return &Supply{
		decimals: decimals,
		totals:   make(map[uint64]*uint256.Int),
	}
}

// Decimals returns the decimal scalar.
func (s *Supply) Decimals() uint8 { return s.decimals }

// GetOrInsert returns the mutable total for slot, inserting a zero total on
// first touch.
func (s *Supply) GetOrInsert(slot uint64) *uint256.Int {
	total, ok := s.totals[slot]
	if !ok {
		total = new(uint256.Int)
		s.totals[slot] = total
	}
	return total
}

// Total returns a copy of the slot's total; absent slots read as zero.
func (s *Supply) Total(slot uint64) *uint256.Int {
	total, ok := s.totals[slot]
	if !ok {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(total)
}

// Increase credits amount to the slot's total.
func (s *Supply) Increase(slot uint64, amount *uint256.Int) {
	total := s.GetOrInsert(slot)
	total.Add(total, amount)
}

// Decrease debits amount from the slot's total. Fails with
// ErrInsufficientSupply instead of wrapping below zero.
func (s *Supply) Decrease(slot uint64, amount *uint256.Int) error {
	total := s.GetOrInsert(slot)
	if total.Lt(amount) {
		return ErrInsufficientSupply
	}
	total.Sub(total, amount)
	return nil
}
