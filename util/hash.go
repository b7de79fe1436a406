package util

import (
	"golang.org/x/crypto/sha3"
)

// Keccak256 returns the legacy keccak-256 digest used by klaytn for
// transaction hashes and method selectors.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	return h.Sum(nil)
}

// Selector returns the 4 byte method id of a canonical method signature,
// e.g. "transfer(address,uint256)".
func Selector(signature string) []byte {
	return Keccak256([]byte(signature))[:4]
}
