package tx

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"petcoin/util"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// TxTypeFeeDelegatedSmartContractExecution is the klaytn type tag of a
// contract execution whose fee is paid by another account.
const TxTypeFeeDelegatedSmartContractExecution = 0x31

// Signature is a klaytn [V, R, S] tuple.
type Signature struct {
	V *big.Int
	R *big.Int
	S *big.Int
}

// emptySignature is the placeholder for a missing fee payer signature.
func emptySignature() Signature {
	return Signature{V: big.NewInt(1), R: big.NewInt(0), S: big.NewInt(0)}
}

// FeeDelegatedSmartContractExecution is a contract call signed by the sender
// and submitted to a fee payer for the second signature.
type FeeDelegatedSmartContractExecution struct {
	Nonce    uint64
	GasPrice *big.Int
	Gas      uint64
	To       common.Address
	Value    *big.Int
	From     common.Address
	Input    []byte

	Signatures         []Signature
	FeePayer           common.Address
	FeePayerSignatures []Signature
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}

// SigHash returns the hash signed by the sender.
func (t *FeeDelegatedSmartContractExecution) SigHash(chainID *big.Int) (common.Hash, error) {
	commonRLP, err := rlp.EncodeToBytes([]interface{}{
		uint8(TxTypeFeeDelegatedSmartContractExecution),
		t.Nonce,
		orZero(t.GasPrice),
		t.Gas,
		t.To,
		orZero(t.Value),
		t.From,
		t.Input,
	})
	if err != nil {
		return common.Hash{}, err
	}

	encoded, err := rlp.EncodeToBytes([]interface{}{commonRLP, orZero(chainID), uint(0), uint(0)})
	if err != nil {
		return common.Hash{}, err
	}

	return common.BytesToHash(util.Keccak256(encoded)), nil
}

// Sign appends the sender signature made with key.
func (t *FeeDelegatedSmartContractExecution) Sign(key *ecdsa.PrivateKey, chainID *big.Int) error {
	if crypto.PubkeyToAddress(key.PublicKey) != t.From {
		return fmt.Errorf("key of %s can not sign for %s", crypto.PubkeyToAddress(key.PublicKey).Hex(), t.From.Hex())
	}

	h, err := t.SigHash(chainID)
	if err != nil {
		return err
	}

	sig, err := crypto.Sign(h[:], key)
	if err != nil {
		return err
	}

	v := new(big.Int).Mul(chainID, big.NewInt(2))
	v.Add(v, big.NewInt(35+int64(sig[64])))

	t.Signatures = append(t.Signatures, Signature{
		V: v,
		R: new(big.Int).SetBytes(sig[:32]),
		S: new(big.Int).SetBytes(sig[32:64]),
	})
	return nil
}

// Sender recovers the address of the first signature.
func (t *FeeDelegatedSmartContractExecution) Sender(chainID *big.Int) (common.Address, error) {
	if len(t.Signatures) == 0 {
		return common.Address{}, errors.New("transaction is not signed")
	}

	h, err := t.SigHash(chainID)
	if err != nil {
		return common.Address{}, err
	}

	s := t.Signatures[0]
	recID := new(big.Int).Sub(s.V, new(big.Int).Mul(chainID, big.NewInt(2)))
	recID.Sub(recID, big.NewInt(35))
	if !recID.IsUint64() || recID.Uint64() > 1 {
		return common.Address{}, fmt.Errorf("invalid signature v %s for chain %s", s.V, chainID)
	}

	sig := make([]byte, 65)
	s.R.FillBytes(sig[:32])
	s.S.FillBytes(sig[32:64])
	sig[64] = byte(recID.Uint64())

	pub, err := crypto.SigToPub(h[:], sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// RLPEncoding returns the type tag followed by the rlp of all fields,
// the format fee payers accept.
func (t *FeeDelegatedSmartContractExecution) RLPEncoding() ([]byte, error) {
	feePayerSigs := t.FeePayerSignatures
	if len(feePayerSigs) == 0 {
		feePayerSigs = []Signature{emptySignature()}
	}

	body, err := rlp.EncodeToBytes([]interface{}{
		t.Nonce,
		orZero(t.GasPrice),
		t.Gas,
		t.To,
		orZero(t.Value),
		t.From,
		t.Input,
		t.Signatures,
		t.FeePayer,
		feePayerSigs,
	})
	if err != nil {
		return nil, err
	}

	return append([]byte{TxTypeFeeDelegatedSmartContractExecution}, body...), nil
}

// RawHex returns the 0x-prefixed RLPEncoding.
func (t *FeeDelegatedSmartContractExecution) RawHex() (string, error) {
	raw, err := t.RLPEncoding()
	if err != nil {
		return "", err
	}
	return hexutil.Encode(raw), nil
}

// Decode parses an RLPEncoding.
func Decode(raw []byte) (*FeeDelegatedSmartContractExecution, error) {
	if len(raw) == 0 || raw[0] != TxTypeFeeDelegatedSmartContractExecution {
		return nil, errors.New("not a fee delegated smart contract execution")
	}

	var t FeeDelegatedSmartContractExecution
	if err := rlp.DecodeBytes(raw[1:], &t); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return &t, nil
}
