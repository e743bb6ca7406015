package merkledrop

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ClaimLeaf builds the canonical leaf commitment for one (claimant, amount)
// entry: digest over the 32-byte left-padded address followed by the 32-byte
// big-endian amount. The encoding is fixed-width by construction; changing
// it invalidates all previously committed roots, so it is versioned through
// the protocol, not through this function.
func ClaimLeaf(digest Digest, claimant common.Address, amount *uint256.Int) []byte {
	var buf [64]byte
	copy(buf[12:32], claimant.Bytes())
	b := amount.Bytes32()
	copy(buf[32:], b[:])
	return digest(buf[:])
}
