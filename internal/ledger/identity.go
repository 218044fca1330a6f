package ledger

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// DefaultKeyPath is where the local player's identity key lives.
const DefaultKeyPath = "~/.arcade/identity.key"

// LoadOrCreateKey reads a hex-encoded secp256k1 private key from path,
// generating and saving a new one (mode 0600) if the file does not exist.
func LoadOrCreateKey(path string) (*secp256k1.PrivateKey, error) {
	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err == nil {
		raw, err := hex.DecodeString(strings.TrimSpace(string(data)))
		if err != nil || len(raw) != secp256k1.PrivKeyBytesLen {
			return nil, fmt.Errorf("ledger: malformed identity key %s", path)
		}
		return secp256k1.PrivKeyFromBytes(raw), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("ledger: cannot read identity key: %w", err)
	}

	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("ledger: cannot generate identity key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ledger: cannot create key directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(key.Serialize())+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("ledger: cannot write identity key: %w", err)
	}
	return key, nil
}

// AddressFromPublicKey derives a wallet-style address: the last 20 bytes of
// the Keccak-256 hash of the uncompressed key without its 0x04 prefix.
func AddressFromPublicKey(pub *secp256k1.PublicKey) Address {
	return addressFromDigest(keccak(pub.SerializeUncompressed()[1:]))
}

// LocalAddress resolves the address for a local player: a named player
// when name is set, otherwise the identity key at keyPath.
func LocalAddress(name, keyPath string) (Address, error) {
	if name != "" {
		return AddressFromName(name), nil
	}
	key, err := LoadOrCreateKey(keyPath)
	if err != nil {
		return "", err
	}
	return AddressFromPublicKey(key.PubKey()), nil
}

func expandHome(path string) (string, error) {
	if path != "" && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("ledger: cannot expand home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
