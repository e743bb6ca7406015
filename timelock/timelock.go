// Package timelock implements the capability object gating a privileged
// action until a future point in logical time, optionally carrying typed
// attached metadata.
package timelock

import "errors"

// Errors
var (
	ErrInvalidUnlockTime = errors.New("unlock time is not in the future")
	ErrLocked            = errors.New("timelock has not elapsed")
	ErrNotExtensible     = errors.New("timelock is not extensible")
	ErrUnknownKey        = errors.New("no extra data under key")
	ErrWrongKind         = errors.New("extra data has a different kind")
)

// ExtraKind tags the payload variant carried by an ExtraValue.
type ExtraKind uint8

const (
	KindUint64 ExtraKind = iota
	KindBytes
	KindString
)

// ExtraKey names one well-known attachment slot. Hosts define their own
// closed key set; the timelock only stores and returns values.
type ExtraKey string

// ExtraValue is a tagged-variant payload. Exactly one field matching Kind
// is meaningful; accessors enforce the tag.
type ExtraValue struct {
	Kind ExtraKind
	u64  uint64
	b    []byte
	s    string
}

// Uint64Value wraps a uint64 payload.
func Uint64Value(v uint64) ExtraValue { return ExtraValue{Kind: KindUint64, u64: v} }

// BytesValue wraps a byte-sequence payload.
func BytesValue(v []byte) ExtraValue { return ExtraValue{Kind: KindBytes, b: v} }

// StringValue wraps a string payload.
func StringValue(v string) ExtraValue { return ExtraValue{Kind: KindString, s: v} }

// Uint64 returns the uint64 payload; fails if the value holds another kind.
func (v ExtraValue) Uint64() (uint64, error) {
	if v.Kind != KindUint64 {
		return 0, ErrWrongKind
	}
	return v.u64, nil
}

// Bytes returns the byte-sequence payload.
func (v ExtraValue) Bytes() ([]byte, error) {
	if v.Kind != KindBytes {
		return nil, ErrWrongKind
	}
	return v.b, nil
}

// String returns the string payload.
func (v ExtraValue) String() (string, error) {
	if v.Kind != KindString {
		return "", ErrWrongKind
	}
	return v.s, nil
}

// Timelock gates an action until unlockTime. Instants are unix seconds
// threaded in by the caller.
type Timelock struct {
	unlockTime uint64
	extensible bool
	extra      map[ExtraKey]ExtraValue
}

// Create builds a timelock. Fails with ErrInvalidUnlockTime unless
// unlockTime is strictly after now.
func Create(unlockTime uint64, extensible bool, now uint64) (*Timelock, error) {
	if unlockTime <= now {
		return nil, ErrInvalidUnlockTime
	}
	return &Timelock{
		unlockTime: unlockTime,
		extensible: extensible,
		extra:      make(map[ExtraKey]ExtraValue),
	}, nil
}

// UnlockTime returns the stored unlock instant.
func (t *Timelock) UnlockTime() uint64 { return t.unlockTime }

// Extensible reports whether the unlock time may be moved.
func (t *Timelock) Extensible() bool { return t.extensible }

// UpdateUnlockTime moves the unlock instant. Requires an extensible lock.
func (t *Timelock) UpdateUnlockTime(newTime uint64) error {
	if !t.extensible {
		return ErrNotExtensible
	}
	t.unlockTime = newTime
	return nil
}

// AssertUnlockedAndDestroy tears the lock down once elapsed. Fails with
// ErrLocked unless now >= unlockTime.
func (t *Timelock) AssertUnlockedAndDestroy(now uint64) error {
	if now < t.unlockTime {
		return ErrLocked
	}
	t.Destroy()
	return nil
}

// Destroy tears the lock down unconditionally, dropping attached data.
func (t *Timelock) Destroy() {
	t.extra = nil
}

// AddExtraData attaches a value under key, replacing any previous value.
func (t *Timelock) AddExtraData(key ExtraKey, value ExtraValue) {
	if t.extra == nil {
		t.extra = make(map[ExtraKey]ExtraValue)
	}
	t.extra[key] = value
}

// BorrowExtraData returns the value attached under key.
func (t *Timelock) BorrowExtraData(key ExtraKey) (ExtraValue, error) {
	v, ok := t.extra[key]
	if !ok {
		return ExtraValue{}, ErrUnknownKey
	}
	return v, nil
}
