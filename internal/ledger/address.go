package ledger

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// AddressLen is the number of bytes in an address.
const AddressLen = 20

// Address identifies a player or a ledger: "0x" followed by 40 lowercase hex digits.
type Address string

// PublicKey is the part of an SSH public key needed to derive an address.
// Both golang.org/x/crypto/ssh and charmbracelet/ssh keys satisfy it.
type PublicKey interface {
	Marshal() []byte
}

// AddressFromKey derives a stable address from an SSH public key.
func AddressFromKey(key PublicKey) Address {
	return addressFromDigest(keccak(key.Marshal()))
}

// AddressFromName derives an address for a named local player.
// Names are trimmed and case-folded so "Alice" and "alice " share an address.
func AddressFromName(name string) Address {
	name = strings.ToLower(strings.TrimSpace(name))
	return addressFromDigest(keccak([]byte("player:" + name)))
}

// ParseAddress validates and normalizes a textual address.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return "", fmt.Errorf("ledger: invalid address %q: missing 0x prefix", s)
	}
	digits := s[2:]
	if len(digits) != AddressLen*2 {
		return "", fmt.Errorf("ledger: invalid address %q: want %d hex digits", s, AddressLen*2)
	}
	if _, err := hex.DecodeString(digits); err != nil {
		return "", fmt.Errorf("ledger: invalid address %q: %w", s, err)
	}
	return Address("0x" + strings.ToLower(digits)), nil
}

// String returns the full address.
func (a Address) String() string {
	return string(a)
}

// Short returns the display form "0x1234...abcd".
func (a Address) Short() string {
	s := string(a)
	if len(s) <= 10 {
		return s
	}
	return s[:6] + "..." + s[len(s)-4:]
}

// IsZero reports whether the address is empty.
func (a Address) IsZero() bool {
	return a == ""
}

func keccak(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data) //nolint:errcheck
	return h.Sum(nil)
}

// addressFromDigest keeps the last AddressLen bytes of a hash.
func addressFromDigest(sum []byte) Address {
	return Address("0x" + hex.EncodeToString(sum[len(sum)-AddressLen:]))
}
