// Package airdrop implements a Merkle-proof-gated claim ledger: a fixed,
// pre-committed list of (address, amount) entries, each claimable exactly
// once, with claimed funds handed off into a vesting wallet rather than
// paid out immediately.
package airdrop

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/vocdoni/davinci-node/db"
	"github.com/vocdoni/davinci-node/db/metadb"
	merkledrop "github.com/vocdoni/merkledrop-go"
	"github.com/vocdoni/merkledrop-go/vesting"
)

// Errors
var (
	ErrInvalidRoot         = errors.New("commitment root is empty")
	ErrInvalidStart        = errors.New("start time is not in the future")
	ErrInvalidProof        = errors.New("merkle proof does not match the committed root")
	ErrAlreadyClaimed      = errors.New("entry already claimed")
	ErrInsufficientBalance = errors.New("custodied balance below claimed amount")
	ErrNonEmptyTeardown    = errors.New("residual state prevents teardown")
	ErrDataCorruption      = errors.New("airdrop data corruption detected")
)

// Params are the commitment parameters fixed at ledger creation: the Merkle
// root over all claim leaves and the vesting schedule every claim inherits.
type Params struct {
	Root     []byte
	Curve    vesting.Curve
	Start    uint64 // schedule start, unix seconds
	Cliff    uint64 // seconds from start before anything vests
	Duration uint64 // seconds from start until fully vested
}

// WalletFactory is the vesting-wallet collaborator's creation entry point.
// The ledger hands every successfully-claimed amount to it and keeps no
// reference to the returned wallet.
type WalletFactory func(amount *uint256.Int, curve vesting.Curve, start, cliff, duration, now uint64) (*vesting.Wallet, error)

// Airdrop owns a custodied balance, the committed root, the vesting-curve
// parameters and the claim bitmap. All operations are synchronous,
// all-or-nothing state transitions; a failed claim leaves both the balance
// and the bitmap unchanged.
//
// Airdrop is safe for concurrent use by multiple goroutines.
type Airdrop struct {
	mu      sync.RWMutex
	balance uint256.Int
	params  Params
	claims  *merkledrop.Bitmap
	digest  merkledrop.Digest
	wallets WalletFactory
	db      db.Database // nil for in-memory only
	seq     int         // count of persisted claims
}

// New creates a ledger custodying initialDeposit against the committed
// parameters. It fails with ErrInvalidRoot if the root is empty and with
// ErrInvalidStart unless params.Start is strictly after now.
//
// If a database is provided, previously persisted state for the same root
// is restored and the deposit is credited on top of the restored balance;
// a datadir holding state for a different root is rejected.
func New(initialDeposit *uint256.Int, params Params, now uint64, digest merkledrop.Digest, database db.Database) (*Airdrop, error) {
	if len(params.Root) == 0 {
		return nil, ErrInvalidRoot
	}
	if params.Start <= now {
		return nil, ErrInvalidStart
	}
	if digest == nil {
		return nil, errors.New("parameter 'digest' is not defined")
	}

	a := &Airdrop{
		params:  params,
		claims:  merkledrop.NewBitmap(),
		digest:  digest,
		wallets: vesting.New,
		db:      database,
	}
	a.params.Root = bytes.Clone(params.Root)

	if database != nil {
		if err := a.load(); err != nil {
			return nil, err
		}
	}
	if initialDeposit != nil && !initialDeposit.IsZero() {
		if err := a.deposit(initialDeposit); err != nil {
			return nil, err
		}
	} else if database != nil {
		// persist the root even for a zero-deposit creation
		if err := a.persistBalance(&a.balance); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// NewWithPebble is a wrapper around New. Creates a ledger backed by a
// persistent Pebble DB at the specified directory.
func NewWithPebble(initialDeposit *uint256.Int, params Params, now uint64, digest merkledrop.Digest, datadir string) (*Airdrop, error) {
	database, err := metadb.New(db.TypePebble, datadir)
	if err != nil {
		return nil, err
	}
	a, err := New(initialDeposit, params, now, digest, database)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	return a, nil
}

// SetWalletFactory replaces the vesting-wallet collaborator. Intended for
// hosts that custody claimed funds in their own wallet implementation.
func (a *Airdrop) SetWalletFactory(f WalletFactory) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if f != nil {
		a.wallets = f
	}
}

// Deposit increases the custodied balance.
func (a *Airdrop) Deposit(amount *uint256.Int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deposit(amount)
}

func (a *Airdrop) deposit(amount *uint256.Int) error {
	if amount == nil {
		return errors.New("parameter 'amount' is not defined")
	}
	balance := new(uint256.Int).Add(&a.balance, amount)
	if err := a.persistBalance(balance); err != nil {
		return err
	}
	a.balance.Set(balance)
	return nil
}

// Claim verifies an entry against the committed root and, exactly once per
// entry, moves its amount from the custodied balance into a freshly-created
// vesting wallet. The claimant's leaf index, derived from the proof, keys
// the anti-replay bitmap. The returned wallet is fully owned by the caller.
func (a *Airdrop) Claim(proof [][]byte, claimant common.Address, amount *uint256.Int, now uint64) (*vesting.Wallet, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if amount == nil {
		return nil, errors.New("parameter 'amount' is not defined")
	}
	leaf := merkledrop.ClaimLeaf(a.digest, claimant, amount)
	ok, index := merkledrop.Verify(a.digest, proof, a.params.Root, leaf)
	if !ok {
		return nil, ErrInvalidProof
	}
	if a.claims.Get(index) {
		return nil, fmt.Errorf("%w: index %d", ErrAlreadyClaimed, index)
	}
	if a.balance.Lt(amount) {
		// unreachable under a correctly-committed root; integrity guard
		return nil, ErrInsufficientBalance
	}

	wallet, err := a.wallets(amount, a.params.Curve, a.params.Start, a.params.Cliff, a.params.Duration, now)
	if err != nil {
		return nil, err
	}

	// the db commit gates the in-memory mutation; a failed commit leaves
	// the ledger exactly as it was
	balance := new(uint256.Int).Sub(&a.balance, amount)
	if err := a.persistClaim(index, balance); err != nil {
		return nil, err
	}
	a.claims.Set(index)
	a.balance.Set(balance)
	a.seq++
	return wallet, nil
}

// HasClaimed reports whether the entry at index was claimed. Exposed for
// client-side pre-checks; the index is the one Claim derives from a proof.
func (a *Airdrop) HasClaimed(index uint64) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.claims.Get(index)
}

// Balance returns the custodied balance.
func (a *Airdrop) Balance() *uint256.Int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return new(uint256.Int).Set(&a.balance)
}

// Root returns the committed root.
func (a *Airdrop) Root() []byte {
	return bytes.Clone(a.params.Root)
}

// Curve returns the vesting-curve coefficients claims inherit.
func (a *Airdrop) Curve() vesting.Curve { return a.params.Curve }

// Start returns the vesting schedule start, unix seconds.
func (a *Airdrop) Start() uint64 { return a.params.Start }

// Cliff returns the vesting cliff, seconds from start.
func (a *Airdrop) Cliff() uint64 { return a.params.Cliff }

// Duration returns the vesting duration, seconds from start.
func (a *Airdrop) Duration() uint64 { return a.params.Duration }

// Claims returns the number of entries claimed so far.
func (a *Airdrop) Claims() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.seq
}

// Destroy tears the ledger down. It fails with ErrNonEmptyTeardown while
// the balance is nonzero, and delegates to the bitmap teardown, which fails
// once any claim was ever made. A ledger that serviced claims is therefore
// permanent even at zero balance.
func (a *Airdrop) Destroy() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.balance.IsZero() {
		return fmt.Errorf("%w: custodied balance is not zero", ErrNonEmptyTeardown)
	}
	if err := a.claims.Destroy(); err != nil {
		return fmt.Errorf("%w: %v", ErrNonEmptyTeardown, err)
	}
	if a.db != nil {
		tx := a.db.WriteTx()
		defer tx.Discard()
		for _, key := range []string{"meta:balance", "meta:root", "meta:claims"} {
			if err := tx.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}
	return nil
}

// Close closes the underlying database, if any. State is persisted eagerly
// on every mutation, so there is nothing to flush.
func (a *Airdrop) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// persistBalance writes the balance (and, on first write, the root) in one
// transaction.
func (a *Airdrop) persistBalance(balance *uint256.Int) error {
	if a.db == nil {
		return nil
	}
	tx := a.db.WriteTx()
	defer tx.Discard()
	if err := a.writeBalance(tx, balance); err != nil {
		return err
	}
	return tx.Commit()
}

// persistClaim records one claimed index together with the updated balance,
// atomically, so a restarted ledger can never double-pay. The caller applies
// the matching in-memory mutation only after the commit succeeds.
func (a *Airdrop) persistClaim(index uint64, balance *uint256.Int) error {
	if a.db == nil {
		return nil
	}
	tx := a.db.WriteTx()
	defer tx.Discard()
	if err := tx.Set([]byte("claim:"+encodeUint(uint64(a.seq))), []byte(encodeUint(index))); err != nil {
		return err
	}
	if err := tx.Set([]byte("meta:claims"), []byte(encodeUint(uint64(a.seq)+1))); err != nil {
		return err
	}
	if err := a.writeBalance(tx, balance); err != nil {
		return err
	}
	return tx.Commit()
}

func (a *Airdrop) writeBalance(tx db.WriteTx, balance *uint256.Int) error {
	b := balance.Bytes32()
	if err := tx.Set([]byte("meta:balance"), b[:]); err != nil {
		return err
	}
	return tx.Set([]byte("meta:root"), a.params.Root)
}

// load restores balance and claimed indices from the database.
func (a *Airdrop) load() error {
	storedRoot, err := a.db.Get([]byte("meta:root"))
	if err != nil {
		if err == db.ErrKeyNotFound {
			return nil // fresh datadir
		}
		return err
	}
	if !bytes.Equal(storedRoot, a.params.Root) {
		return fmt.Errorf("%w: datadir holds state for a different root", ErrDataCorruption)
	}

	balanceBytes, err := a.db.Get([]byte("meta:balance"))
	if err != nil && err != db.ErrKeyNotFound {
		return err
	}
	if err == nil {
		a.balance.SetBytes(balanceBytes)
	}

	countBytes, err := a.db.Get([]byte("meta:claims"))
	if err != nil {
		if err == db.ErrKeyNotFound {
			return nil
		}
		return err
	}
	count := decodeUint(countBytes)
	for k := uint64(0); k < count; k++ {
		indexBytes, err := a.db.Get([]byte("claim:" + encodeUint(k)))
		if err != nil {
			return fmt.Errorf("%w: missing claim record %d: %v", ErrDataCorruption, k, err)
		}
		a.claims.Set(decodeUint(indexBytes))
	}
	a.seq = int(count)
	return nil
}

// encodeUint renders an unsigned integer as decimal bytes for db keys.
func encodeUint(x uint64) string {
	if x < 10 {
		return string('0' + byte(x))
	}
	buf := [20]byte{}
	i := len(buf)
	for x > 0 {
		i--
		buf[i] = byte('0' + x%10)
		x /= 10
	}
	return string(buf[i:])
}

// decodeUint parses decimal bytes written by encodeUint.
func decodeUint(b []byte) uint64 {
	var result uint64
	for _, digit := range b {
		if digit >= '0' && digit <= '9' {
			result = result*10 + uint64(digit-'0')
		}
	}
	return result
}
