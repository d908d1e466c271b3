package actor

import (
	"encoding/hex"
	"regexp"

	"golang.org/x/crypto/sha3"
	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for address derivation.
// Version suffix enables future algorithm migration.
const (
	domainAccount = "chainstage/account/v1"
	domainToken   = "chainstage/token/v1"
)

// Address is a simulated on-chain identity: "0x" followed by 40
// lowercase hex digits (20 bytes).
type Address string

var addressPattern = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

// Valid reports whether a is a well-formed address.
func (a Address) Valid() bool {
	return addressPattern.MatchString(string(a))
}

func (a Address) String() string {
	return string(a)
}

// DeriveAddress computes the deterministic account address for a named
// actor. Names are NFC normalized first so visually identical names map
// to the same identity regardless of input encoding.
func DeriveAddress(name string) Address {
	return derive(domainAccount, name)
}

// DeriveTokenAddress computes the deterministic address of a token from
// its symbol.
func DeriveTokenAddress(symbol string) Address {
	return derive(domainToken, symbol)
}

// derive computes SHA3-256 with domain separation and truncates to the
// 20-byte address width. Format: SHA3-256(domain + 0x00 + NFC(name)).
// The null byte separator prevents domain/name boundary ambiguity.
func derive(domain, name string) Address {
	h := sha3.New256()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write([]byte(norm.NFC.String(name)))
	sum := h.Sum(nil)
	return Address("0x" + hex.EncodeToString(sum[:20]))
}
