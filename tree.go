package merkledrop

import (
	"bytes"
	"errors"
)

// Tree is a fixed binary Merkle tree over byte-sequence leaves using the
// sorted-pair hashing rule, built once from the full committed leaf list.
//   - dynamic depth (ceil(log2(size)))
//   - no zero nodes; a lone odd node is paired with itself, so every proof
//     carries exactly Depth() siblings and the path bits Verify derives
//     stay aligned across all leaves
//   - every internal node hashes its children smaller-first, so proofs
//     verified with Verify need no explicit path bits.
//
// Tree is the off-chain committer side of the protocol: it produces the root
// and the per-leaf proofs that Verify later checks. It is immutable after
// construction.
type Tree struct {
	digest Digest
	nodes  [][][]byte // nodes[0] = leaves, nodes[depth][0] = root
}

// NewTree builds a tree over the given leaves in committed order.
func NewTree(digest Digest, leaves [][]byte) (*Tree, error) {
	if digest == nil {
		return nil, errors.New("parameter 'digest' is not defined")
	}
	if len(leaves) == 0 {
		return nil, errors.New("there are no leaves to commit")
	}

	level := make([][]byte, len(leaves))
	copy(level, leaves)
	nodes := [][][]byte{level}

	for len(level) > 1 {
		parents := make([][]byte, (len(level)+1)/2)
		for i := range parents {
			li := i * 2
			ri := li + 1
			if ri < len(level) {
				parents[i] = sortedPair(digest, level[li], level[ri])
			} else {
				// odd node pairs with itself; proof lengths stay uniform
				parents[i] = sortedPair(digest, level[li], level[li])
			}
		}
		nodes = append(nodes, parents)
		level = parents
	}

	return &Tree{digest: digest, nodes: nodes}, nil
}

// Depth returns the number of levels above the leaves.
func (t *Tree) Depth() int {
	return len(t.nodes) - 1
}

// Size returns the number of leaves.
func (t *Tree) Size() int {
	return len(t.nodes[0])
}

// Root returns the committed root.
func (t *Tree) Root() []byte {
	top := t.nodes[len(t.nodes)-1]
	return bytes.Clone(top[0])
}

// Leaf returns the leaf at position i in committed order.
func (t *Tree) Leaf(i int) ([]byte, error) {
	if i < 0 || i >= len(t.nodes[0]) {
		return nil, errLeafOutOfRange(i)
	}
	return bytes.Clone(t.nodes[0][i]), nil
}

// IndexOf returns the position of a leaf in committed order; -1 if absent.
func (t *Tree) IndexOf(leaf []byte) int {
	for i, v := range t.nodes[0] {
		if bytes.Equal(v, leaf) {
			return i
		}
	}
	return -1
}

// GenerateProof builds the sibling path for the leaf at position i. Every
// proof carries exactly Depth() siblings; a self-paired odd node contributes
// itself as its own sibling.
func (t *Tree) GenerateProof(i int) ([][]byte, error) {
	if i < 0 || i >= len(t.nodes[0]) {
		return nil, errLeafOutOfRange(i)
	}

	proof := make([][]byte, 0, t.Depth())
	index := i
	for level := 0; level < t.Depth(); level++ {
		sibling := t.nodes[level][index] // self-paired odd node
		if index&1 == 1 {
			// right child; left sibling always exists
			sibling = t.nodes[level][index-1]
		} else if ri := index + 1; ri < len(t.nodes[level]) {
			sibling = t.nodes[level][ri]
		}
		proof = append(proof, bytes.Clone(sibling))
		index >>= 1
	}
	return proof, nil
}

// ClaimIndex returns the index Verify derives for the leaf at position i.
// With sorted-pair hashing the derived index depends on hash comparisons
// along the path rather than on the committed position, but it is
// deterministic and distinct for every leaf.
func (t *Tree) ClaimIndex(i int) (uint64, error) {
	proof, err := t.GenerateProof(i)
	if err != nil {
		return 0, err
	}
	_, index := Verify(t.digest, proof, t.Root(), t.nodes[0][i])
	return index, nil
}

// errLeafOutOfRange returns an error for an out-of-range leaf position.
func errLeafOutOfRange(i int) error {
	return errors.New("leaf index " + intToString(i) + " is out of range")
}

// intToString is a tiny local integer to string (no fmt in hot paths).
func intToString(x int) string {
	neg := x < 0
	if neg {
		x = -x
	}
	buf := [20]byte{}
	i := len(buf)
	for {
		i--
		buf[i] = byte('0' + (x % 10))
		x /= 10
		if x == 0 {
			break
		}
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
