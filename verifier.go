// Package merkledrop provides the verification primitives behind
// Merkle-gated token distributions: sorted-pair proof verification with
// positional index recovery, canonical claim-leaf construction, a committer
// side tree builder, pluggable digest functions and a sparse claim bitmap.
package merkledrop

import "bytes"

// Verify checks a Merkle inclusion proof against a committed root using the
// canonical sorted-pair rule: at every level the two nodes are hashed with
// the lexicographically-smaller byte sequence first. Because the pair order
// is derived from the values themselves, proofs carry no explicit path bits.
//
// Alongside the membership result, Verify reconstructs the leaf's positional
// index: whenever the running hash sorts after its sibling it was the right
// child, and the corresponding bit of the index is set. At the level where
// the paths of two distinct leaves diverge their running hashes are compared
// against each other, producing opposite bits, so the index is unique per
// leaf and can be used directly as a claim identity.
//
// Verify is a pure function and never fails on malformed input: an invalid
// proof yields matches == false, and the returned index must not be trusted
// in that case.
func Verify(digest Digest, proof [][]byte, root, leaf []byte) (matches bool, index uint64) {
	node := leaf
	multiplier := uint64(1)
	for _, sibling := range proof {
		if bytes.Compare(node, sibling) > 0 {
			index += multiplier
			node = hashPair(digest, sibling, node)
		} else {
			node = hashPair(digest, node, sibling)
		}
		multiplier <<= 1
	}
	return bytes.Equal(node, root), index
}

// hashPair combines two already-ordered nodes into their parent digest.
func hashPair(digest Digest, left, right []byte) []byte {
	buf := make([]byte, 0, len(left)+len(right))
	buf = append(buf, left...)
	buf = append(buf, right...)
	return digest(buf)
}

// sortedPair hashes two sibling nodes with the smaller byte sequence first.
func sortedPair(digest Digest, a, b []byte) []byte {
	if bytes.Compare(a, b) > 0 {
		a, b = b, a
	}
	return hashPair(digest, a, b)
}
