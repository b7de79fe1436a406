// Package klaytn wraps the PetCoin contract: reads go to a klaytn node,
// transactions are fee delegated through the KAS wallet api.
package klaytn

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"petcoin/kas"
	"petcoin/rpc"
	"petcoin/smartcontract"
	"petcoin/tx"
	"petcoin/util"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultGasLimit is sent with every contract execution.
const DefaultGasLimit = 1000000

var (
	// ErrNoSmartContract is returned when no contract address is known.
	ErrNoSmartContract = errors.New("smart contract address is not configured")
	// ErrReverted is returned when the chain reports a failed execution.
	ErrReverted = errors.New("transaction reverted")
)

// Node is the klaytn node api used for reads and nonces.
type Node interface {
	Call(ctx context.Context, msg rpc.CallMsg) ([]byte, error)
	GetTransactionCount(ctx context.Context, addr common.Address) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	WaitForReceipt(ctx context.Context, hash common.Hash) (*rpc.Receipt, error)
}

// Wallet is the KAS wallet api used to submit transactions.
type Wallet interface {
	FDContractExecute(ctx context.Context, r kas.FDContractExecuteRequest) (*kas.TransactionResult, error)
	FDContractDeploy(ctx context.Context, r kas.FDContractDeployRequest) (*kas.TransactionResult, error)
	FDRawTransaction(ctx context.Context, r kas.FDRawTransactionRequest) (*kas.TransactionResult, error)
	GetTransaction(ctx context.Context, hash string) (*kas.Transaction, error)
}

// Journal persists submitted transactions.
type Journal interface {
	InsertTx(ctx context.Context, r *tx.Record) error
	UpdateTxStatus(ctx context.Context, hash string, status string, blockNumber uint64, errMsg string) error
}

var (
	_ Node   = (*rpc.Client)(nil)
	_ Wallet = (*kas.Client)(nil)
)

// Options configures the API. SmartContract falls back to the artifact
// network address and Artifact defaults to the embedded PetCoin abi.
type Options struct {
	ChainID       uint64
	SmartContract string
	GasLimit      uint64
	Artifact      *smartcontract.Artifact

	RPCURLs         []string
	AccessKeyID     string
	SecretAccessKey string
	WalletURL       string
	Timeout         time.Duration

	// Node, Wallet and Journal replace the clients built from the fields above.
	Node    Node
	Wallet  Wallet
	Journal Journal

	Now func() time.Time
}

// API talks to one deployed token contract.
type API struct {
	chainID  *big.Int
	contract common.Address
	gasLimit uint64

	node    Node
	wallet  Wallet
	journal Journal

	artifact *smartcontract.Artifact
	methods  smartcontract.Methods
	now      func() time.Time
}

// Result is the outcome of a submitted transaction. Transaction is looked
// up after a raw submission, nil if unavailable.
type Result struct {
	TransactionHash string
	Status          string
	Submitted       *kas.TransactionResult
	Transaction     *kas.Transaction
}

// New stores options, creates the node and wallet clients and builds the
// method lookup table.
func New(opts Options) (*API, error) {
	if opts.ChainID == 0 {
		return nil, errors.New("chain id cannot be zero")
	}

	a := &API{
		chainID:  new(big.Int).SetUint64(opts.ChainID),
		gasLimit: opts.GasLimit,
		node:     opts.Node,
		wallet:   opts.Wallet,
		journal:  opts.Journal,
		artifact: opts.Artifact,
		now:      opts.Now,
	}

	if a.gasLimit == 0 {
		a.gasLimit = DefaultGasLimit
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.artifact == nil {
		a.artifact = smartcontract.DefaultArtifact()
	}
	a.methods = smartcontract.NewMethods(a.artifact.ABI)

	if opts.SmartContract != "" {
		contract, ok := util.ParseAddress(opts.SmartContract)
		if !ok {
			return nil, fmt.Errorf("invalid smart contract address: %s", opts.SmartContract)
		}
		a.contract = contract
	} else if contract, ok := a.artifact.Address(opts.ChainID); ok {
		a.contract = contract
	}

	if a.node == nil {
		node, err := rpc.NewClient(rpc.Config{
			URLs:            opts.RPCURLs,
			ChainID:         opts.ChainID,
			AccessKeyID:     opts.AccessKeyID,
			SecretAccessKey: opts.SecretAccessKey,
			Timeout:         opts.Timeout,
		})
		if err != nil {
			return nil, err
		}
		a.node = node
	}

	if a.wallet == nil {
		wallet, err := kas.NewClient(kas.Config{
			BaseURL:         opts.WalletURL,
			ChainID:         opts.ChainID,
			AccessKeyID:     opts.AccessKeyID,
			SecretAccessKey: opts.SecretAccessKey,
			Timeout:         opts.Timeout,
		})
		if err != nil {
			return nil, err
		}
		a.wallet = wallet
	}

	return a, nil
}

// Methods returns the contract method lookup table.
func (a *API) Methods() smartcontract.Methods {
	return a.methods
}

// SmartContract returns the contract address, zero if unknown.
func (a *API) SmartContract() common.Address {
	return a.contract
}

func (a *API) target() (common.Address, error) {
	if a.contract == (common.Address{}) {
		return common.Address{}, ErrNoSmartContract
	}
	return a.contract, nil
}

// call runs a read-only contract call.
func (a *API) call(ctx context.Context, from *common.Address, method string, args ...interface{}) (smartcontract.Result, error) {
	to, err := a.target()
	if err != nil {
		return nil, err
	}

	input, err := a.methods.Encode(method, args...)
	if err != nil {
		return nil, err
	}

	data, err := a.node.Call(ctx, rpc.CallMsg{From: from, To: to, Data: input})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	return a.methods.Decode(method, data)
}

func parseAddress(address string) (common.Address, error) {
	a, ok := util.ParseAddress(address)
	if !ok {
		return common.Address{}, fmt.Errorf("invalid address: %q", address)
	}
	return a, nil
}
