package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveAddressDeterministic(t *testing.T) {
	a := DeriveAddress("launcher1")
	b := DeriveAddress("launcher1")
	assert.Equal(t, a, b, "same name must always derive the same address")
}

func TestDeriveAddressDistinctNames(t *testing.T) {
	names := []string{"launcher1", "launcher2", "alice", "bob", "carol", "member1", "member9"}
	seen := make(map[Address]string, len(names))
	for _, name := range names {
		addr := DeriveAddress(name)
		require.True(t, addr.Valid(), "derived address %q must be well-formed", addr)
		prev, dup := seen[addr]
		require.False(t, dup, "names %q and %q collided on %s", prev, name, addr)
		seen[addr] = name
	}
}

func TestDeriveAddressNFCNormalization(t *testing.T) {
	// U+00E9 (precomposed) vs U+0065 U+0301 (combining) are the same
	// name after NFC normalization.
	composed := DeriveAddress("ren\u00e9")
	decomposed := DeriveAddress("rene\u0301")
	assert.Equal(t, composed, decomposed)
}

func TestDeriveAddressDomainSeparation(t *testing.T) {
	// An account named like a token symbol must not collide with the
	// token's address.
	assert.NotEqual(t, DeriveAddress("LNCH"), DeriveTokenAddress("LNCH"))
}

func TestAddressValid(t *testing.T) {
	tests := []struct {
		name  string
		addr  Address
		valid bool
	}{
		{"derived", DeriveAddress("alice"), true},
		{"empty", Address(""), false},
		{"missing prefix", Address("ab5c8f0d2e1a9b3c4d5e6f7a8b9c0d1e2f3a4b5c"), false},
		{"too short", Address("0xab5c"), false},
		{"uppercase hex", Address("0xAB5C8F0D2E1A9B3C4D5E6F7A8B9C0D1E2F3A4B5C"), false},
		{"non-hex", Address("0xzz5c8f0d2e1a9b3c4d5e6f7a8b9c0d1e2f3a4b5c"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.addr.Valid())
		})
	}
}
