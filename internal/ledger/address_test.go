package ledger

import (
	"strings"
	"testing"
)

type fakeKey []byte

func (k fakeKey) Marshal() []byte { return k }

func TestAddressFromKey(t *testing.T) {
	a := AddressFromKey(fakeKey("ssh-ed25519 AAAA"))
	b := AddressFromKey(fakeKey("ssh-ed25519 AAAA"))
	c := AddressFromKey(fakeKey("ssh-ed25519 BBBB"))

	if a != b {
		t.Errorf("same key gave %s and %s", a, b)
	}
	if a == c {
		t.Error("different keys gave the same address")
	}
	if _, err := ParseAddress(a.String()); err != nil {
		t.Errorf("derived address %s does not parse: %v", a, err)
	}
}

func TestAddressFromName(t *testing.T) {
	if AddressFromName("Alice") != AddressFromName(" alice ") {
		t.Error("names should be case and space insensitive")
	}
	if AddressFromName("alice") == AddressFromName("bob") {
		t.Error("different names gave the same address")
	}
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		want    Address
		wantErr bool
	}{
		{"0x72fe344E7097cE94fc0F6955eC080Fa40cc79008", "0x72fe344e7097ce94fc0f6955ec080fa40cc79008", false},
		{"  0X00000000000000000000000000000000000000ff ", "0x00000000000000000000000000000000000000ff", false},
		{"72fe344E7097cE94fc0F6955eC080Fa40cc79008", "", true},
		{"0x1234", "", true},
		{"0xzzfe344E7097cE94fc0F6955eC080Fa40cc79008", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseAddress(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAddress(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAddress(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestAddressShort(t *testing.T) {
	a := Address("0x72fe344e7097ce94fc0f6955ec080fa40cc79008")
	if got := a.Short(); got != "0x72fe...9008" {
		t.Errorf("Short() = %q, expected 0x72fe...9008", got)
	}
	if got := Address("0xabc").Short(); got != "0xabc" {
		t.Errorf("short input should be unchanged, got %q", got)
	}
	if !strings.HasPrefix(AddressFromName("x").Short(), "0x") {
		t.Error("Short() lost the prefix")
	}
}

func TestRankLabel(t *testing.T) {
	tests := map[int]string{1: "🥇 1", 2: "🥈 2", 3: "🥉 3", 4: "4", 10: "10"}
	for rank, want := range tests {
		if got := RankLabel(rank); got != want {
			t.Errorf("RankLabel(%d) = %q, expected %q", rank, got, want)
		}
	}
	if Medal(0) != "" || Medal(4) != "" {
		t.Error("only ranks 1..3 get medals")
	}
}
