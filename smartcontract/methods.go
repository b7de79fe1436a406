package smartcontract

import (
	"bytes"
	"errors"
	"fmt"
	"petcoin/util"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ErrUnknownMethod is returned for method names missing from the abi.
var ErrUnknownMethod = errors.New("unknown contract method")

// Methods is the lookup table of contract functions keyed by name.
type Methods map[string]abi.Method

// NewMethods collects every function entry of the abi.
func NewMethods(contractABI abi.ABI) Methods {
	methods := make(Methods, len(contractABI.Methods))
	for name, m := range contractABI.Methods {
		if m.Type != abi.Function {
			continue
		}
		methods[name] = m
	}
	return methods
}

// checkSelectors verifies every method id is the selector of its signature.
func checkSelectors(m Methods) error {
	for name, method := range m {
		if !bytes.Equal(method.ID, util.Selector(method.Sig)) {
			return fmt.Errorf("method %s: id %#x does not match signature %s", name, method.ID, method.Sig)
		}
	}
	return nil
}

// Get returns the abi entry of name.
func (m Methods) Get(name string) (abi.Method, error) {
	method, ok := m[name]
	if !ok {
		return abi.Method{}, fmt.Errorf("%w: %s", ErrUnknownMethod, name)
	}
	return method, nil
}

// ByID returns the method whose selector prefixes input.
func (m Methods) ByID(input []byte) (abi.Method, error) {
	if len(input) < 4 {
		return abi.Method{}, fmt.Errorf("input too short for a method id: %d bytes", len(input))
	}

	for _, method := range m {
		if bytes.Equal(method.ID, input[:4]) {
			return method, nil
		}
	}
	return abi.Method{}, fmt.Errorf("%w: id %#x", ErrUnknownMethod, input[:4])
}

// Encode returns call input of method name with args.
func (m Methods) Encode(name string, args ...interface{}) ([]byte, error) {
	method, err := m.Get(name)
	if err != nil {
		return nil, err
	}

	cb := CallBuilder{Method: method, Params: args}
	return cb.GetInput()
}

// Decode unpacks the return data of method name.
func (m Methods) Decode(name string, data []byte) (Result, error) {
	method, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	return ReadOutput(method, data)
}

// Names returns sorted method names.
func (m Methods) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
