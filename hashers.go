package merkledrop

import (
	"crypto/sha256"
	"math/big"

	mimc_bn254 "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/ethereum/go-ethereum/crypto"
	iden3poseidon "github.com/iden3/go-iden3-crypto/poseidon"
	"golang.org/x/crypto/blake2b"
)

// Digest is a cryptographic hash over an arbitrary byte sequence, producing
// a fixed-width output. The same Digest must be used for leaf construction,
// internal node combination and off-chain tree building; mixing algorithms
// invalidates every committed root.
type Digest func(data []byte) []byte

// Keccak256Digest hashes with Keccak-256, the digest used on EVM chains.
// This is the default choice when the committed root was produced by
// Solidity-style tooling (e.g. OpenZeppelin merkle-tree generators).
//
// Parameters:
//   - data: Input bytes of any length
//
// Returns: 32-byte digest
func Keccak256Digest(data []byte) []byte {
	return crypto.Keccak256(data)
}

// SHA256Digest hashes with SHA-256 from the SHA-2 family.
// While not optimized for zero-knowledge circuits, it provides strong
// security guarantees and is well-tested in production systems.
//
// Parameters:
//   - data: Input bytes of any length
//
// Returns: 32-byte digest
func SHA256Digest(data []byte) []byte {
	hash := sha256.Sum256(data)
	return hash[:]
}

// Blake2bDigest hashes with BLAKE2b-256, which is faster than SHA-256 on
// 64-bit platforms while providing similar security guarantees.
//
// Parameters:
//   - data: Input bytes of any length
//
// Returns: 32-byte digest
func Blake2bDigest(data []byte) []byte {
	hash := blake2b.Sum256(data)
	return hash[:]
}

// PoseidonDigest hashes with Poseidon over the BN254 scalar field using the
// iden3 implementation. Poseidon is a ZK-friendly hash, significantly more
// efficient in circuits than traditional hash functions.
//
// When the input length is a multiple of 32, each 32-byte big-endian word is
// reduced into a field element and the words are hashed together with a
// single Poseidon permutation. This makes the digest compatible with
// in-circuit verification: a 64-byte node input (two digests) hashes exactly
// like poseidon(left, right) inside a gnark circuit. Inputs of any other
// length fall back to the iden3 sponge over bytes.
//
// Parameters:
//   - data: Input bytes of any length
//
// Returns: 32-byte big-endian digest
// Panics if the hash operation fails (should not happen with valid inputs)
func PoseidonDigest(data []byte) []byte {
	var out *big.Int
	var err error
	if len(data) > 0 && len(data)%32 == 0 && len(data)/32 <= 16 {
		words := make([]*big.Int, len(data)/32)
		for i := range words {
			w := new(big.Int).SetBytes(data[i*32 : (i+1)*32])
			words[i] = w.Mod(w, bn254FieldOrder)
		}
		out, err = iden3poseidon.Hash(words)
	} else {
		out, err = iden3poseidon.HashBytes(data)
	}
	if err != nil {
		panic(err) // Should not happen with valid inputs
	}
	digest := make([]byte, 32)
	out.FillBytes(digest)
	return digest
}

// MiMCDigest hashes with MiMC over the BN254 scalar field. MiMC (Minimal
// Multiplicative Complexity) is designed to be efficient in zero-knowledge
// proof systems built with gnark over BN254.
//
// The input is split into 31-byte chunks so that every absorbed block is
// strictly smaller than the field order.
//
// Parameters:
//   - data: Input bytes of any length
//
// Returns: 32-byte big-endian digest
// Panics if the hash operation fails
func MiMCDigest(data []byte) []byte {
	h := mimc_bn254.NewMiMC()
	block := make([]byte, 32)
	for len(data) > 0 {
		n := 31
		if len(data) < n {
			n = len(data)
		}
		clear(block)
		copy(block[32-n:], data[:n])
		if _, err := h.Write(block); err != nil {
			panic(err)
		}
		data = data[n:]
	}
	return h.Sum(nil)
}

// bn254FieldOrder is the BN254 scalar field order.
var bn254FieldOrder, _ = new(big.Int).SetString(
	"21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)
