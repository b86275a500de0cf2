package types

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// IDLen is the byte length of a validator identity.
const IDLen = 32

// ValidatorID is a fixed-size validator identity. Identities are compared by
// raw byte value, which is also the order used to break stake ties when a
// leader schedule is built.
type ValidatorID [IDLen]byte

// ParseValidatorID decodes the canonical hex form of an identity.
func ParseValidatorID(s string) (ValidatorID, error) {
	var id ValidatorID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("decoding validator id: %w", err)
	}
	if len(raw) != IDLen {
		return id, fmt.Errorf("validator id must be %d bytes, got %d", IDLen, len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

// String returns the lowercase hex form of the identity.
func (id ValidatorID) String() string {
	return hex.EncodeToString(id[:])
}

// Compare orders identities by raw byte value. It returns -1, 0 or 1 like
// bytes.Compare.
func (id ValidatorID) Compare(other ValidatorID) int {
	return bytes.Compare(id[:], other[:])
}

// IsZero reports whether the identity is the all-zero value.
func (id ValidatorID) IsZero() bool {
	return id == ValidatorID{}
}
