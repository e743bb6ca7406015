package supply

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
)

func TestGetOrInsert(t *testing.T) {
	s := New(9)
	if s.Decimals() != 9 {
		t.Fatalf("decimals=%d, want 9", s.Decimals())
	}

	total := s.GetOrInsert(7)
	if !total.IsZero() {
		t.Fatal("fresh slot total not zero")
	}
	// the same slot must come back, not a new zero
	total.SetUint64(42)
	if !s.GetOrInsert(7).Eq(uint256.NewInt(42)) {
		t.Fatal("GetOrInsert returned a different total for the same slot")
	}
}

func TestIncreaseDecrease(t *testing.T) {
	s := New(0)
	s.Increase(1, uint256.NewInt(100))
	s.Increase(1, uint256.NewInt(50))
	s.Increase(2, uint256.NewInt(7))

	if !s.Total(1).Eq(uint256.NewInt(150)) {
		t.Fatalf("slot 1 total=%s, want 150", s.Total(1))
	}
	if !s.Total(2).Eq(uint256.NewInt(7)) {
		t.Fatalf("slot 2 total=%s, want 7", s.Total(2))
	}
	if !s.Total(3).IsZero() {
		t.Fatal("absent slot does not read as zero")
	}

	if err := s.Decrease(1, uint256.NewInt(150)); err != nil {
		t.Fatal(err)
	}
	if !s.Total(1).IsZero() {
		t.Fatal("slot 1 not drained")
	}

	if err := s.Decrease(2, uint256.NewInt(8)); !errors.Is(err, ErrInsufficientSupply) {
		t.Fatalf("err=%v, want ErrInsufficientSupply", err)
	}
	if !s.Total(2).Eq(uint256.NewInt(7)) {
		t.Fatal("failed decrease changed the total")
	}
}

func TestTotalReturnsCopy(t *testing.T) {
	s := New(0)
	s.Increase(5, uint256.NewInt(10))
	s.Total(5).SetUint64(0)
	if !s.Total(5).Eq(uint256.NewInt(10)) {
		t.Fatal("Total() does not return a copy")
	}
}
