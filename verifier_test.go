package merkledrop

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// claimLeaves builds n distinct claim leaves in committed order.
func claimLeaves(digest Digest, n int) [][]byte {
	leaves := make([][]byte, n)
	for i := range leaves {
		addr := common.BigToAddress(uint256.NewInt(uint64(i + 1)).ToBig())
		leaves[i] = ClaimLeaf(digest, addr, uint256.NewInt(uint64(100*(i+1))))
	}
	return leaves
}

func TestVerifyAllDigests(t *testing.T) {
	digests := map[string]Digest{
		"keccak256": Keccak256Digest,
		"sha256":    SHA256Digest,
		"blake2b":   Blake2bDigest,
		"poseidon":  PoseidonDigest,
		"mimc":      MiMCDigest,
	}
	for name, digest := range digests {
		t.Run(name, func(t *testing.T) {
			leaves := claimLeaves(digest, 7)
			tree, err := NewTree(digest, leaves)
			if err != nil {
				t.Fatal(err)
			}

			seen := make(map[uint64]int)
			for i, leaf := range leaves {
				proof, err := tree.GenerateProof(i)
				if err != nil {
					t.Fatal(err)
				}
				ok, index := Verify(digest, proof, tree.Root(), leaf)
				if !ok {
					t.Fatalf("proof %d did not verify", i)
				}
				if prev, dup := seen[index]; dup {
					t.Fatalf("leaves %d and %d derived the same index %d", prev, i, index)
				}
				seen[index] = i

				claimIndex, err := tree.ClaimIndex(i)
				if err != nil {
					t.Fatal(err)
				}
				if claimIndex != index {
					t.Fatalf("ClaimIndex=%d, Verify index=%d", claimIndex, index)
				}
			}
		})
	}
}

func TestVerifyTamperedProof(t *testing.T) {
	digest := Keccak256Digest
	leaves := claimLeaves(digest, 8)
	tree, err := NewTree(digest, leaves)
	if err != nil {
		t.Fatal(err)
	}
	proof, err := tree.GenerateProof(3)
	if err != nil {
		t.Fatal(err)
	}

	// flipping any single proof byte must break verification
	for i := range proof {
		for j := range proof[i] {
			proof[i][j] ^= 0x01
			if ok, _ := Verify(digest, proof, tree.Root(), leaves[3]); ok {
				t.Fatalf("verified with proof[%d][%d] flipped", i, j)
			}
			proof[i][j] ^= 0x01
		}
	}

	// a proof for one leaf must not authorize another
	if ok, _ := Verify(digest, proof, tree.Root(), leaves[4]); ok {
		t.Fatal("proof for leaf 3 verified leaf 4")
	}

	// a changed amount changes the leaf and must fail
	addr := common.BigToAddress(uint256.NewInt(4).ToBig())
	forged := ClaimLeaf(digest, addr, uint256.NewInt(999))
	if ok, _ := Verify(digest, proof, tree.Root(), forged); ok {
		t.Fatal("forged amount verified")
	}
}

func TestVerifySingleLeaf(t *testing.T) {
	digest := SHA256Digest
	leaves := claimLeaves(digest, 1)
	tree, err := NewTree(digest, leaves)
	if err != nil {
		t.Fatal(err)
	}
	if d := tree.Depth(); d != 0 {
		t.Fatalf("depth=%d, want 0", d)
	}
	proof, err := tree.GenerateProof(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(proof) != 0 {
		t.Fatalf("unexpected siblings for single-leaf tree: %d", len(proof))
	}
	ok, index := Verify(digest, proof, tree.Root(), leaves[0])
	if !ok || index != 0 {
		t.Fatalf("ok=%v index=%d, want true 0", ok, index)
	}
}

func TestVerifyEmptyProofAgainstWrongRoot(t *testing.T) {
	digest := Blake2bDigest
	leaves := claimLeaves(digest, 2)
	tree, err := NewTree(digest, leaves)
	if err != nil {
		t.Fatal(err)
	}
	if ok, _ := Verify(digest, nil, tree.Root(), leaves[0]); ok {
		t.Fatal("bare leaf verified against a two-leaf root")
	}
}
