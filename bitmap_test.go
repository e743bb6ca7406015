package merkledrop

import (
	"errors"
	"testing"
)

func TestBitmapSetGet(t *testing.T) {
	b := NewBitmap()
	indices := []uint64{0, 1, 255, 256, 257, 1023, 1024, 1_000_000}
	for _, idx := range indices {
		if b.Get(idx) {
			t.Fatalf("bit %d set on fresh bitmap", idx)
		}
		b.Set(idx)
		if !b.Get(idx) {
			t.Fatalf("bit %d not set after Set", idx)
		}
	}
	// neighbors across word boundaries stay clear
	for _, idx := range []uint64{2, 254, 258, 1022, 1025, 999_999} {
		if b.Get(idx) {
			t.Fatalf("bit %d set unexpectedly", idx)
		}
	}
}

func TestBitmapSetIdempotent(t *testing.T) {
	b := NewBitmap()
	b.Set(300)
	b.Set(300)
	if !b.Get(300) {
		t.Fatal("bit cleared by second Set")
	}
	if b.Get(301) || b.Get(299) {
		t.Fatal("neighbor bits affected")
	}
}

func TestBitmapDestroy(t *testing.T) {
	b := NewBitmap()
	if err := b.Destroy(); err != nil {
		t.Fatalf("destroying an empty bitmap: %v", err)
	}

	b = NewBitmap()
	b.Set(512)
	err := b.Destroy()
	if !errors.Is(err, ErrBitmapNotEmpty) {
		t.Fatalf("err=%v, want ErrBitmapNotEmpty", err)
	}
	// the failed teardown must not have cleared anything
	if !b.Get(512) {
		t.Fatal("bit lost after failed Destroy")
	}
}

func TestBitmapUseAfterDestroy(t *testing.T) {
	b := NewBitmap()
	if err := b.Destroy(); err != nil {
		t.Fatal(err)
	}
	if b.Get(0) {
		t.Fatal("destroyed bitmap reports a set bit")
	}
	defer func() {
		if recover() == nil {
			t.Fatal("Set on a destroyed bitmap did not panic")
		}
	}()
	b.Set(0)
}
