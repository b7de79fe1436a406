package smartcontract

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Result stores decoded return values in abi order.
type Result []interface{}

// ReadOutput decodes return data of method.
func ReadOutput(method abi.Method, data []byte) (Result, error) {
	if len(method.Outputs) > 0 && len(data) == 0 {
		return nil, errors.New("empty return data, is the contract address correct?")
	}

	values, err := method.Outputs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s output: %w", method.Name, err)
	}
	return Result(values), nil
}

func (r Result) item(i int) (interface{}, error) {
	if i < 0 || i >= len(r) {
		return nil, fmt.Errorf("result index %d out of range, %d values", i, len(r))
	}
	return r[i], nil
}

// BigInt returns the i-th value as integer.
func (r Result) BigInt(i int) (*big.Int, error) {
	v, err := r.item(i)
	if err != nil {
		return nil, err
	}

	switch n := v.(type) {
	case *big.Int:
		return n, nil
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	default:
		return nil, fmt.Errorf("result %d is %T, not an integer", i, v)
	}
}

// Address returns the i-th value as address.
func (r Result) Address(i int) (common.Address, error) {
	v, err := r.item(i)
	if err != nil {
		return common.Address{}, err
	}

	addr, ok := v.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("result %d is %T, not an address", i, v)
	}
	return addr, nil
}

// Bool returns the i-th value as bool.
func (r Result) Bool(i int) (bool, error) {
	v, err := r.item(i)
	if err != nil {
		return false, err
	}

	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("result %d is %T, not a bool", i, v)
	}
	return b, nil
}

// Text returns the i-th value as string.
func (r Result) Text(i int) (string, error) {
	v, err := r.item(i)
	if err != nil {
		return "", err
	}

	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("result %d is %T, not a string", i, v)
	}
	return s, nil
}
