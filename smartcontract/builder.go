package smartcontract

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// CallBuilder is the constructor of contract call input.
type CallBuilder struct {
	Method abi.Method
	Params []interface{}
}

// GetInput returns method id followed by abi encoded params.
func (cb *CallBuilder) GetInput() ([]byte, error) {
	packed, err := cb.Method.Inputs.Pack(cb.Params...)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", cb.Method.Sig, err)
	}

	input := make([]byte, 0, len(cb.Method.ID)+len(packed))
	input = append(input, cb.Method.ID...)
	return append(input, packed...), nil
}

// ReadParams decodes call input back into method and params.
func ReadParams(methods Methods, input []byte) (abi.Method, []interface{}, error) {
	method, err := methods.ByID(input)
	if err != nil {
		return abi.Method{}, nil, err
	}

	params, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return abi.Method{}, nil, fmt.Errorf("decode %s: %w", method.Sig, err)
	}
	return method, params, nil
}
