// Package circuit provides in-circuit verification of airdrop claim proofs
// for gnark circuits over BN254. It is compatible with trees committed
// out-of-circuit using merkledrop.PoseidonDigest: the sorted-pair ordering
// decisions taken during native verification become the path bits of the
// claim index, which the circuit replays with Select.
package circuit

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/vocdoni/gnark-crypto-primitives/hash/bn254/poseidon"
	merkledrop "github.com/vocdoni/merkledrop-go"
)

// MaxClaimDepth caps the number of siblings a proof may carry, i.e. the
// depth of the committed distribution (2^20 entries).
const MaxClaimDepth = 20

// ClaimProof carries the in-circuit claim membership witness.
type ClaimProof struct {
	Leaf     frontend.Variable                // Poseidon commitment to (address, amount)
	Index    frontend.Variable                // packed path bits, LSB is the first sibling combined
	Siblings [MaxClaimDepth]frontend.Variable // sibling nodes, zero-padded past the proof length
}

// ClaimProofWitness builds the assignment for a claim verified natively
// with PoseidonDigest. The index is the one merkledrop.Verify derives and
// the siblings array is padded with zeros to MaxClaimDepth.
func ClaimProofWitness(claimant common.Address, amount *uint256.Int, index uint64, siblings [][]byte) ClaimProof {
	padded := [MaxClaimDepth]frontend.Variable{}
	for i := range MaxClaimDepth {
		if i < len(siblings) {
			padded[i] = new(big.Int).SetBytes(siblings[i])
		} else {
			padded[i] = big.NewInt(0) // Padding with zeros
		}
	}
	leaf := merkledrop.ClaimLeaf(merkledrop.PoseidonDigest, claimant, amount)
	return ClaimProof{
		Leaf:     new(big.Int).SetBytes(leaf),
		Index:    new(big.Int).SetUint64(index),
		Siblings: padded,
	}
}

// NewClaimProof builds a ClaimProof in-circuit from the raw claim fields,
// hashing the claimant address and amount into the leaf commitment.
func NewClaimProof(
	api frontend.API,
	address, amount, index frontend.Variable,
	siblings [MaxClaimDepth]frontend.Variable,
) (ClaimProof, error) {
	leaf, err := HashClaim(api, address, amount)
	if err != nil {
		return ClaimProof{}, err
	}
	return ClaimProof{
		Leaf:     leaf,
		Index:    index,
		Siblings: siblings,
	}, nil
}

// Verify recomputes the root from the leaf, the path bits packed in Index
// and the padded siblings, and compares it with the provided root.
//
// Returns a boolean variable (0 or 1) indicating proof validity.
func (p ClaimProof) Verify(api frontend.API, root frontend.Variable) (frontend.Variable, error) {
	currentNode := p.Leaf
	indexBits := api.ToBinary(p.Index, len(p.Siblings))
	for i, sibling := range p.Siblings {
		// zero siblings are padding and leave the running hash untouched
		isNonZero := api.Sub(1, api.IsZero(sibling))
		bit := indexBits[i]
		// bit set means the running hash sorted after its sibling, so it
		// goes on the right
		leftInput := api.Select(bit, sibling, currentNode)
		rightInput := api.Select(bit, currentNode, sibling)
		hashedValue, err := poseidon.Hash(api, leftInput, rightInput)
		if err != nil {
			return frontend.Variable(0), fmt.Errorf("failed to hash nodes: %w", err)
		}
		currentNode = api.Select(isNonZero, hashedValue, currentNode)
	}
	return api.IsZero(api.Sub(currentNode, root)), nil
}

// VerifyClaimProof verifies a claim membership proof in-circuit from the
// raw claim fields.
func VerifyClaimProof(
	api frontend.API,
	root frontend.Variable,
	address frontend.Variable,
	amount frontend.Variable,
	index frontend.Variable,
	siblings [MaxClaimDepth]frontend.Variable,
) (frontend.Variable, error) {
	proof, err := NewClaimProof(api, address, amount, index, siblings)
	if err != nil {
		return frontend.Variable(0), err
	}
	return proof.Verify(api, root)
}

// HashClaim commits a claim entry to its leaf in-circuit. It matches the
// native leaf construction: PoseidonDigest over the 32-byte padded address
// followed by the 32-byte amount hashes the two words with one Poseidon
// permutation, which is exactly poseidon(address, amount).
func HashClaim(api frontend.API, address, amount frontend.Variable) (frontend.Variable, error) {
	return poseidon.Hash(api, address, amount)
}
