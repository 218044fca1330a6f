package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

func TestAddressFromPublicKeyKnownVector(t *testing.T) {
	var one [32]byte
	one[31] = 1
	key := secp256k1.PrivKeyFromBytes(one[:])

	got := AddressFromPublicKey(key.PubKey())
	if got != "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf" {
		t.Errorf("address for private key 1 = %s", got)
	}
}

func TestLoadOrCreateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "identity.key")

	first, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatalf("LoadOrCreateKey() failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("key file not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("key file mode = %v, expected 0600", info.Mode().Perm())
	}

	second, err := LoadOrCreateKey(path)
	if err != nil {
		t.Fatalf("second LoadOrCreateKey() failed: %v", err)
	}
	if AddressFromPublicKey(first.PubKey()) != AddressFromPublicKey(second.PubKey()) {
		t.Error("reloaded key has a different address")
	}
}

func TestLoadOrCreateKeyMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.key")
	if err := os.WriteFile(path, []byte("not hex"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOrCreateKey(path); err == nil {
		t.Error("expected an error for a malformed key file")
	}
}

func TestLocalAddress(t *testing.T) {
	named, err := LocalAddress("alice", "")
	if err != nil || named != AddressFromName("alice") {
		t.Errorf("LocalAddress(alice) = %s, %v", named, err)
	}

	path := filepath.Join(t.TempDir(), "identity.key")
	a, err := LocalAddress("", path)
	if err != nil {
		t.Fatalf("LocalAddress from key failed: %v", err)
	}
	b, _ := LocalAddress("", path)
	if a != b {
		t.Errorf("key address changed between calls: %s vs %s", a, b)
	}
}
