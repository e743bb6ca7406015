// Package vesting implements the wallet that custodies a claimed amount and
// releases it over time along a quadratic curve. A wallet is created once
// per successful airdrop claim and enforces its own schedule independently
// from then on.
package vesting

import (
	"errors"

	"github.com/holiman/uint256"
	"github.com/vocdoni/merkledrop-go/rebase"
)

// Errors
var (
	ErrNilAmount    = errors.New("vesting amount is not defined")
	ErrZeroDuration = errors.New("vesting duration must be positive")
	ErrFlatCurve    = errors.New("vesting curve evaluates to zero at full duration")
)

// Curve holds the release-curve coefficients. The fraction of the custodied
// amount vested after e elapsed seconds is g(e)/g(duration) with
// g(e) = A*e^2 + B*e + C, so A=0 gives a linear schedule and C=0 forces a
// zero instant unlock.
type Curve struct {
	A uint64 `json:"a"`
	B uint64 `json:"b"`
	C uint64 `json:"c"`
}

// Eval computes g(e) = A*e^2 + B*e + C.
func (c Curve) Eval(e uint64) *uint256.Int {
	elapsed := uint256.NewInt(e)
	out := new(uint256.Int).Mul(elapsed, elapsed)
	out.Mul(out, uint256.NewInt(c.A))
	out.Add(out, new(uint256.Int).Mul(uint256.NewInt(c.B), elapsed))
	return out.AddUint64(out, c.C)
}

// Wallet custodies an amount and releases it per its curve. All instants
// are unix seconds threaded in by the caller; the wallet never reads a
// wall clock.
type Wallet struct {
	amount   uint256.Int
	released uint256.Int
	curve    Curve
	start    uint64
	cliff    uint64
	duration uint64
}

// New creates a wallet custodying amount. Nothing vests before start+cliff;
// everything is vested at start+duration. A start in the past is valid: a
// claim serviced after the schedule began simply starts partially vested.
func New(amount *uint256.Int, curve Curve, start, cliff, duration, now uint64) (*Wallet, error) {
	if amount == nil {
		return nil, ErrNilAmount
	}
	if duration == 0 {
		return nil, ErrZeroDuration
	}
	if curve.Eval(duration).IsZero() {
		return nil, ErrFlatCurve
	}
	w := &Wallet{
		curve:    curve,
		start:    start,
		cliff:    cliff,
		duration: duration,
	}
	w.amount.Set(amount)
	return w, nil
}

// Vested returns the total amount vested at now, clamped to [0, amount].
func (w *Wallet) Vested(now uint64) (*uint256.Int, error) {
	if now < w.start+w.cliff {
		return new(uint256.Int), nil
	}
	if now >= w.start+w.duration {
		return new(uint256.Int).Set(&w.amount), nil
	}
	vested, err := rebase.MulDiv(&w.amount, w.curve.Eval(now-w.start), w.curve.Eval(w.duration))
	if err != nil {
		return nil, err
	}
	if vested.Gt(&w.amount) {
		vested.Set(&w.amount)
	}
	return vested, nil
}

// Release pays out the newly-vested delta since the previous release and
// returns it. Calling Release with nothing newly vested returns zero.
func (w *Wallet) Release(now uint64) (*uint256.Int, error) {
	vested, err := w.Vested(now)
	if err != nil {
		return nil, err
	}
	if !vested.Gt(&w.released) {
		return new(uint256.Int), nil
	}
	delta := new(uint256.Int).Sub(vested, &w.released)
	w.released.Set(vested)
	return delta, nil
}

// Amount returns the custodied total.
func (w *Wallet) Amount() *uint256.Int {
	return new(uint256.Int).Set(&w.amount)
}

// Released returns the amount paid out so far.
func (w *Wallet) Released() *uint256.Int {
	return new(uint256.Int).Set(&w.released)
}

// Curve returns the release-curve coefficients.
func (w *Wallet) Curve() Curve { return w.curve }

// Start returns the schedule start, unix seconds.
func (w *Wallet) Start() uint64 { return w.start }

// Cliff returns the cliff length, seconds from start.
func (w *Wallet) Cliff() uint64 { return w.cliff }

// Duration returns the schedule length, seconds from start.
func (w *Wallet) Duration() uint64 { return w.duration }
