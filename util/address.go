package util

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// AddressValid checks if address is a valid 20 bytes hex address.
// Mixed-case addresses must carry a valid checksum.
func AddressValid(addr string) bool {
	if !common.IsHexAddress(addr) {
		return false
	}

	hexPart := strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X")
	if hexPart == strings.ToLower(hexPart) || hexPart == strings.ToUpper(hexPart) {
		return true
	}

	return common.HexToAddress(addr).Hex() == addr
}

// ParseAddress returns the address of a valid hex string.
func ParseAddress(addr string) (common.Address, bool) {
	if !AddressValid(addr) {
		return common.Address{}, false
	}
	return common.HexToAddress(addr), true
}
