package timelock

import (
	"errors"
	"testing"
)

const now = uint64(1_700_000_000)

func TestCreateValidation(t *testing.T) {
	if _, err := Create(now, false, now); !errors.Is(err, ErrInvalidUnlockTime) {
		t.Fatalf("err=%v, want ErrInvalidUnlockTime", err)
	}
	if _, err := Create(now-1, false, now); !errors.Is(err, ErrInvalidUnlockTime) {
		t.Fatalf("err=%v, want ErrInvalidUnlockTime", err)
	}
	tl, err := Create(now+100, true, now)
	if err != nil {
		t.Fatal(err)
	}
	if tl.UnlockTime() != now+100 || !tl.Extensible() {
		t.Fatal("stored fields mismatch")
	}
}

func TestAssertUnlockedAndDestroy(t *testing.T) {
	tl, err := Create(now+100, false, now)
	if err != nil {
		t.Fatal(err)
	}
	if err := tl.AssertUnlockedAndDestroy(now + 99); !errors.Is(err, ErrLocked) {
		t.Fatalf("err=%v, want ErrLocked", err)
	}
	if err := tl.AssertUnlockedAndDestroy(now + 100); err != nil {
		t.Fatalf("unlock at exact instant: %v", err)
	}
}

func TestUpdateUnlockTime(t *testing.T) {
	fixed, err := Create(now+100, false, now)
	if err != nil {
		t.Fatal(err)
	}
	if err := fixed.UpdateUnlockTime(now + 200); !errors.Is(err, ErrNotExtensible) {
		t.Fatalf("err=%v, want ErrNotExtensible", err)
	}

	ext, err := Create(now+100, true, now)
	if err != nil {
		t.Fatal(err)
	}
	if err := ext.UpdateUnlockTime(now + 200); err != nil {
		t.Fatal(err)
	}
	if ext.UnlockTime() != now+200 {
		t.Fatalf("unlockTime=%d, want %d", ext.UnlockTime(), now+200)
	}
	if err := ext.AssertUnlockedAndDestroy(now + 150); !errors.Is(err, ErrLocked) {
		t.Fatal("extended lock opened early")
	}
}

func TestExtraData(t *testing.T) {
	tl, err := Create(now+100, true, now)
	if err != nil {
		t.Fatal(err)
	}

	const keyDigest ExtraKey = "package_digest"
	const keyPolicy ExtraKey = "upgrade_policy"

	tl.AddExtraData(keyDigest, BytesValue([]byte{0xaa, 0xbb}))
	tl.AddExtraData(keyPolicy, Uint64Value(2))

	v, err := tl.BorrowExtraData(keyDigest)
	if err != nil {
		t.Fatal(err)
	}
	b, err := v.Bytes()
	if err != nil || len(b) != 2 || b[0] != 0xaa {
		t.Fatalf("bytes payload mismatch: %v %v", b, err)
	}
	if _, err := v.Uint64(); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("err=%v, want ErrWrongKind", err)
	}

	v, err = tl.BorrowExtraData(keyPolicy)
	if err != nil {
		t.Fatal(err)
	}
	if n, err := v.Uint64(); err != nil || n != 2 {
		t.Fatalf("uint64 payload mismatch: %d %v", n, err)
	}

	if _, err := tl.BorrowExtraData("missing"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("err=%v, want ErrUnknownKey", err)
	}

	// replacing a value is allowed
	tl.AddExtraData(keyPolicy, StringValue("compatible"))
	v, err = tl.BorrowExtraData(keyPolicy)
	if err != nil {
		t.Fatal(err)
	}
	if s, err := v.String(); err != nil || s != "compatible" {
		t.Fatalf("string payload mismatch: %q %v", s, err)
	}

	// teardown drops attachments
	if err := tl.AssertUnlockedAndDestroy(now + 100); err != nil {
		t.Fatal(err)
	}
	if _, err := tl.BorrowExtraData(keyDigest); !errors.Is(err, ErrUnknownKey) {
		t.Fatal("extra data survived teardown")
	}
}
