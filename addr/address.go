package addr

import (
	"crypto/ecdsa"
	"fmt"
	"petcoin/util"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account is a signer of token transactions.
// A nil Key means the account lives in the KAS wallet.
type Account struct {
	Address common.Address
	Key     *ecdsa.PrivateKey
}

// New parses address and optional hex private key.
func New(address string, privateKey string) (Account, error) {
	a, ok := util.ParseAddress(address)
	if !ok {
		return Account{}, fmt.Errorf("invalid address: %q", address)
	}

	acc := Account{Address: a}
	if privateKey == "" {
		return acc, nil
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return Account{}, fmt.Errorf("invalid private key of %s: %w", address, err)
	}

	if acc = FromKey(key); acc.Address != a {
		return Account{}, fmt.Errorf("private key does not match address %s", address)
	}
	return acc, nil
}

// FromKey returns the account of key.
func FromKey(key *ecdsa.PrivateKey) Account {
	return Account{
		Address: crypto.PubkeyToAddress(key.PublicKey),
		Key:     key,
	}
}

// Managed reports whether transactions of the account are signed by KAS.
func (a Account) Managed() bool {
	return a.Key == nil
}

func (a Account) String() string {
	return a.Address.Hex()
}
