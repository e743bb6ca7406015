package merkledrop

import (
	"errors"

	"github.com/holiman/uint256"
)

// WordBits is the width of one bitmap word.
const WordBits = 256

// ErrBitmapNotEmpty is returned by Destroy while any bit is still set.
var ErrBitmapNotEmpty = errors.New("bitmap is not empty")

// Bitmap is a sparse, dynamically-growing bit-set keyed by non-negative
// integer index. The bit at index lives in word index/WordBits, bit
// index%WordBits; words are created lazily on first touch and once created
// are only removed on whole-structure teardown. Bits are never cleared:
// a set bit is permanent for the lifetime of the structure.
type Bitmap struct {
	words map[uint64]*uint256.Int
}

// NewBitmap creates an empty bitmap.
func NewBitmap() *Bitmap {
	return &Bitmap{words: make(map[uint64]*uint256.Int)}
}

// Set marks the bit at index. Setting an already-set bit is a no-op.
func (b *Bitmap) Set(index uint64) {
	word, ok := b.words[index/WordBits]
	if !ok {
		word = new(uint256.Int)
		b.words[index/WordBits] = word
	}
	bit := new(uint256.Int).Lsh(uint256.NewInt(1), uint(index%WordBits))
	word.Or(word, bit)
}

// Get reports whether the bit at index is set. Absent words read as zero.
func (b *Bitmap) Get(index uint64) bool {
	word, ok := b.words[index/WordBits]
	if !ok {
		return false
	}
	bit := new(uint256.Int).Lsh(uint256.NewInt(1), uint(index%WordBits))
	return !new(uint256.Int).And(word, bit).IsZero()
}

// Destroy tears the bitmap down. It fails with ErrBitmapNotEmpty unless
// every tracked word is zero. A destroyed bitmap is spent: Get reads every
// bit as clear and Set panics.
func (b *Bitmap) Destroy() error {
	for _, word := range b.words {
		if !word.IsZero() {
			return ErrBitmapNotEmpty
		}
	}
	b.words = nil
	return nil
}
