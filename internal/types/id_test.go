package types

import (
	"strings"
	"testing"
)

func TestParseValidatorID(t *testing.T) {
	hexID := strings.Repeat("ab", IDLen)
	id, err := ParseValidatorID(hexID)
	if err != nil {
		t.Fatalf("ParseValidatorID failed: %v", err)
	}
	for i, b := range id {
		if b != 0xab {
			t.Fatalf("byte %d = %#x, want 0xab", i, b)
		}
	}
	if id.String() != hexID {
		t.Errorf("String() = %s, want %s", id.String(), hexID)
	}
}

func TestParseValidatorIDRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"short", "abcd"},
		{"long", strings.Repeat("ab", IDLen+1)},
		{"not hex", strings.Repeat("zz", IDLen)},
		{"odd length", strings.Repeat("ab", IDLen) + "a"},
	}
	for _, tc := range cases {
		if _, err := ParseValidatorID(tc.in); err == nil {
			t.Errorf("%s: expected error for input %q", tc.name, tc.in)
		}
	}
}

func TestValidatorIDCompare(t *testing.T) {
	var lo, hi ValidatorID
	lo[0] = 0x01
	hi[0] = 0x02

	if lo.Compare(hi) >= 0 {
		t.Error("expected lo < hi")
	}
	if hi.Compare(lo) <= 0 {
		t.Error("expected hi > lo")
	}
	if lo.Compare(lo) != 0 {
		t.Error("expected lo == lo")
	}

	// The last byte is the least significant for ordering.
	var a, b ValidatorID
	a[IDLen-1] = 0x01
	b[0] = 0x01
	if a.Compare(b) >= 0 {
		t.Error("expected leading byte to dominate the ordering")
	}
}

func TestValidatorIDIsZero(t *testing.T) {
	var zero ValidatorID
	if !zero.IsZero() {
		t.Error("zero value should report IsZero")
	}
	zero[31] = 1
	if zero.IsZero() {
		t.Error("non-zero identity should not report IsZero")
	}
}
