package airdrop

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	merkledrop "github.com/vocdoni/merkledrop-go"
)

// Distribution errors
var (
	ErrBadDistribution = errors.New("invalid distribution dump")
	ErrEntryNotFound   = errors.New("address not found in distribution")
)

// Entry is one committed (claimant, amount) pair, in committed order.
type Entry struct {
	Address common.Address `json:"address"`
	Amount  *uint256.Int   `json:"amount"`
}

// Distribution is a full export of a committed claim list. It can be
// serialized as JSON and shipped to claimants, who derive their own proofs
// from it; the root binds the export to the on-ledger commitment.
type Distribution struct {
	Root         hexutil.Bytes `json:"root"`
	Timestamp    time.Time     `json:"timestamp"`
	TotalEntries int           `json:"totalEntries"`
	TotalAmount  *uint256.Int  `json:"totalAmount"`
	Entries      []Entry       `json:"entries"`
}

// NewDistribution commits the entries with the given digest and returns the
// export, root included.
func NewDistribution(digest merkledrop.Digest, entries []Entry) (*Distribution, error) {
	tree, err := buildTree(digest, entries)
	if err != nil {
		return nil, err
	}
	total := new(uint256.Int)
	for _, e := range entries {
		total.Add(total, e.Amount)
	}
	return &Distribution{
		Root:         tree.Root(),
		Timestamp:    time.Now(),
		TotalEntries: len(entries),
		TotalAmount:  total,
		Entries:      entries,
	}, nil
}

// Verify recomputes the root from the entries and checks it against the
// dump's root, guarding against a tampered or truncated export.
func (d *Distribution) Verify(digest merkledrop.Digest) error {
	tree, err := buildTree(digest, d.Entries)
	if err != nil {
		return err
	}
	if !bytes.Equal(tree.Root(), d.Root) {
		return fmt.Errorf("%w: entries do not reproduce the root", ErrBadDistribution)
	}
	return nil
}

// ProofFor derives the claim proof and committed amount for an address.
func (d *Distribution) ProofFor(digest merkledrop.Digest, claimant common.Address) ([][]byte, *uint256.Int, error) {
	position := -1
	for i, e := range d.Entries {
		if e.Address == claimant {
			position = i
			break
		}
	}
	if position < 0 {
		return nil, nil, ErrEntryNotFound
	}
	tree, err := buildTree(digest, d.Entries)
	if err != nil {
		return nil, nil, err
	}
	if !bytes.Equal(tree.Root(), d.Root) {
		return nil, nil, fmt.Errorf("%w: entries do not reproduce the root", ErrBadDistribution)
	}
	proof, err := tree.GenerateProof(position)
	if err != nil {
		return nil, nil, err
	}
	return proof, new(uint256.Int).Set(d.Entries[position].Amount), nil
}

// buildTree commits the entries' claim leaves in order.
func buildTree(digest merkledrop.Digest, entries []Entry) (*merkledrop.Tree, error) {
	if digest == nil {
		return nil, errors.New("parameter 'digest' is not defined")
	}
	leaves := make([][]byte, len(entries))
	for i, e := range entries {
		if e.Amount == nil {
			return nil, fmt.Errorf("%w: entry %d has no amount", ErrBadDistribution, i)
		}
		leaves[i] = merkledrop.ClaimLeaf(digest, e.Address, e.Amount)
	}
	return merkledrop.NewTree(digest, leaves)
}
