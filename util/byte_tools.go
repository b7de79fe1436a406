package util

import (
	"fmt"
	"math/big"
	"strings"
)

// DecimalWeight is 10^18, the scale of every token amount stored on chain.
var DecimalWeight = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ToPeb scales a whole token amount to its on-chain representation.
func ToPeb(amount *big.Int) *big.Int {
	if amount == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Mul(amount, DecimalWeight)
}

// FromPeb returns the readable value of an on-chain amount.
func FromPeb(value *big.Int) *big.Float {
	zeroValue := big.NewFloat(0)
	if value == nil || value.Sign() == 0 {
		return zeroValue
	}

	return new(big.Float).Quo(
		new(big.Float).SetInt(value),
		new(big.Float).SetInt(DecimalWeight),
	)
}

// HexToBigInt returns big.Int of given 0x-prefixed hex string.
// Leading zero digits are accepted.
func HexToBigInt(hexStr string) (*big.Int, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(hexStr, "0x"), "0X")
	if len(digits) == len(hexStr) && hexStr != "" {
		return nil, fmt.Errorf("hex string without 0x prefix: %q", hexStr)
	}
	if len(digits) == 0 {
		return big.NewInt(0), nil
	}

	v, ok := new(big.Int).SetString(digits, 16)
	if !ok || strings.ContainsAny(digits[:1], "+-") {
		return nil, fmt.Errorf("invalid hex number: %q", hexStr)
	}
	return v, nil
}

// StrToBigInt returns big.Int of the given integer string.
// Both decimal and 0x-prefixed hex strings are accepted.
func StrToBigInt(str string) (*big.Int, error) {
	str = strings.TrimSpace(str)
	if len(str) == 0 {
		return big.NewInt(0), nil
	}

	val, ok := new(big.Int).SetString(str, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer: %q", str)
	}
	return val, nil
}
