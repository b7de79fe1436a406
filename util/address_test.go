package util

import (
	"testing"
)

func TestVerifyAddress(t *testing.T) {
	if !AddressValid("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed") {
		t.Error("Address is valid but function [AddressValid] returns invalid result")
	}

	if !AddressValid("0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359") {
		t.Error("Lower case address is valid but function [AddressValid] returns invalid result")
	}

	if AddressValid("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAeD") {
		t.Error("Address checksum is invalid but function [AddressValid] returns valid result")
	}

	if AddressValid("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeA") {
		t.Error("Address is too short but function [AddressValid] returns valid result")
	}
}

func TestAddrConvertion(t *testing.T) {
	addr := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	parsed, ok := ParseAddress(addr)
	if !ok {
		t.Fatal("Address parse failed")
	}

	if addr != parsed.Hex() {
		t.Error("Address convertion failed")
	}
}
