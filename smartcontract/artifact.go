package smartcontract

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/tidwall/gjson"
)

//go:embed PetCoin.json
var petCoinArtifact []byte

// ErrNoBytecode is returned when deploying from an artifact without bytecode.
var ErrNoBytecode = errors.New("artifact has no bytecode, build the contract first")

// Artifact is the part of a truffle build artifact this tool needs.
type Artifact struct {
	ContractName string
	ABI          abi.ABI
	Bytecode     []byte
	// Networks maps network id to deployed address.
	Networks map[string]common.Address
}

// DefaultArtifact returns the embedded PetCoin artifact.
// It carries the ABI only.
func DefaultArtifact() *Artifact {
	a, err := ParseArtifact(petCoinArtifact)
	if err != nil {
		panic(err)
	}
	return a
}

// LoadArtifact reads a truffle build artifact from path.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	a, err := ParseArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// ParseArtifact parses artifact json.
func ParseArtifact(data []byte) (*Artifact, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid artifact json")
	}

	abiJSON := gjson.GetBytes(data, "abi")
	if !abiJSON.Exists() || !abiJSON.IsArray() {
		return nil, errors.New("artifact has no abi")
	}

	contractABI, err := abi.JSON(strings.NewReader(abiJSON.Raw))
	if err != nil {
		return nil, fmt.Errorf("parse abi: %w", err)
	}
	if err := checkSelectors(NewMethods(contractABI)); err != nil {
		return nil, err
	}

	a := &Artifact{
		ContractName: gjson.GetBytes(data, "contractName").String(),
		ABI:          contractABI,
		Networks:     make(map[string]common.Address),
	}

	if code := gjson.GetBytes(data, "bytecode").String(); code != "" {
		if !strings.HasPrefix(code, "0x") {
			code = "0x" + code
		}
		a.Bytecode, err = hexutil.Decode(code)
		if err != nil {
			return nil, fmt.Errorf("decode bytecode: %w", err)
		}
	}

	gjson.GetBytes(data, "networks").ForEach(func(id, network gjson.Result) bool {
		addr := network.Get("address").String()
		if common.IsHexAddress(addr) {
			a.Networks[id.String()] = common.HexToAddress(addr)
		}
		return true
	})

	return a, nil
}

// Address returns the deployed address recorded for the network id.
func (a *Artifact) Address(networkID uint64) (common.Address, bool) {
	addr, ok := a.Networks[strconv.FormatUint(networkID, 10)]
	return addr, ok
}

// DeployInput returns contract creation input: bytecode followed by
// the encoded constructor arguments.
func (a *Artifact) DeployInput(args ...interface{}) ([]byte, error) {
	if len(a.Bytecode) == 0 {
		return nil, ErrNoBytecode
	}

	packed, err := a.ABI.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("encode constructor: %w", err)
	}

	input := make([]byte, 0, len(a.Bytecode)+len(packed))
	input = append(input, a.Bytecode...)
	return append(input, packed...), nil
}
