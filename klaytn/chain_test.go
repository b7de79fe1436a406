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
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var errRevert = errors.New("evm: execution reverted")

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type lockUpEntry struct {
	amount      *big.Int
	releaseTime int64
}

// chain is an in-memory PetCoin contract behind the Node and Wallet apis.
type chain struct {
	mu sync.Mutex

	chainID  *big.Int
	contract common.Address
	methods  smartcontract.Methods
	clock    *clock

	owner       common.Address
	totalSupply *big.Int
	balances    map[common.Address]*big.Int
	lockUps     map[common.Address][]lockUpEntry

	nonces  map[common.Address]uint64
	txs     map[string]*kas.Transaction
	counter int

	callErr     error
	blockNumber string
	deploys     []kas.FDContractDeployRequest
	raws        []*tx.FeeDelegatedSmartContractExecution
}

func newChain(owner common.Address, c *clock) *chain {
	supply := util.ToPeb(big.NewInt(1000000000))
	return &chain{
		chainID:     big.NewInt(1001),
		contract:    common.HexToAddress("0x5e0a6f7b3e0f6d1c2a8b4c9d0e1f2a3b4c5d6e7f"),
		methods:     smartcontract.NewMethods(smartcontract.DefaultArtifact().ABI),
		clock:       c,
		owner:       owner,
		totalSupply: supply,
		balances:    map[common.Address]*big.Int{owner: new(big.Int).Set(supply)},
		lockUps:     make(map[common.Address][]lockUpEntry),
		nonces:      make(map[common.Address]uint64),
		txs:         make(map[string]*kas.Transaction),
		blockNumber: "0x7",
	}
}

func (c *chain) balance(a common.Address) *big.Int {
	if b, ok := c.balances[a]; ok {
		return b
	}
	b := big.NewInt(0)
	c.balances[a] = b
	return b
}

func (c *chain) locked(a common.Address) *big.Int {
	total := big.NewInt(0)
	for _, l := range c.lockUps[a] {
		total.Add(total, l.amount)
	}
	return total
}

// execute runs input from sender, state is only changed when commit is set.
func (c *chain) execute(from common.Address, input []byte, commit bool) ([]byte, error) {
	method, params, err := smartcontract.ReadParams(c.methods, input)
	if err != nil {
		return nil, err
	}

	var out []interface{}
	switch method.Name {
	case "name":
		out = []interface{}{"PetCoin"}
	case "symbol":
		out = []interface{}{"PET"}
	case "decimals":
		out = []interface{}{uint8(18)}
	case "totalSupply":
		out = []interface{}{new(big.Int).Set(c.totalSupply)}
	case "owner":
		out = []interface{}{c.owner}
	case "balanceOf":
		out = []interface{}{new(big.Int).Set(c.balance(params[0].(common.Address)))}
	case "getLockUpCount":
		out = []interface{}{big.NewInt(int64(len(c.lockUps[params[0].(common.Address)])))}
	case "getLockUp":
		entries := c.lockUps[params[0].(common.Address)]
		i := params[1].(*big.Int)
		if !i.IsInt64() || i.Int64() >= int64(len(entries)) {
			return nil, errRevert
		}
		l := entries[i.Int64()]
		out = []interface{}{new(big.Int).Set(l.amount), big.NewInt(l.releaseTime)}
	case "transfer":
		to, amount := params[0].(common.Address), params[1].(*big.Int)
		available := new(big.Int).Sub(c.balance(from), c.locked(from))
		if available.Cmp(amount) < 0 {
			return nil, errRevert
		}
		if commit {
			c.balance(from).Sub(c.balance(from), amount)
			c.balance(to).Add(c.balance(to), amount)
		}
		out = []interface{}{true}
	case "transferOwner":
		if from != c.owner {
			return nil, errRevert
		}
		if commit {
			c.owner = params[0].(common.Address)
		}
	case "lockUp":
		to, amount, releaseTime := params[0].(common.Address), params[1].(*big.Int), params[2].(*big.Int)
		if from != c.owner || c.balance(from).Cmp(amount) < 0 {
			return nil, errRevert
		}
		if commit {
			c.balance(from).Sub(c.balance(from), amount)
			c.balance(to).Add(c.balance(to), amount)
			c.lockUps[to] = append(c.lockUps[to], lockUpEntry{amount: new(big.Int).Set(amount), releaseTime: releaseTime.Int64()})
		}
		out = []interface{}{true}
	case "lockUpRelease":
		to := params[0].(common.Address)
		if from != c.owner {
			return nil, errRevert
		}
		if commit {
			now := c.clock.Now().Unix()
			var kept []lockUpEntry
			for _, l := range c.lockUps[to] {
				if l.releaseTime > now {
					kept = append(kept, l)
				}
			}
			c.lockUps[to] = kept
		}
		out = []interface{}{true}
	default:
		return nil, fmt.Errorf("method %s not supported", method.Name)
	}

	return method.Outputs.Pack(out...)
}

func (c *chain) commit(from common.Address, input []byte, hash string) *kas.Transaction {
	t := &kas.Transaction{
		From:            from.Hex(),
		To:              c.contract.Hex(),
		Input:           hexutil.Encode(input),
		TransactionHash: hash,
		BlockNumber:     c.blockNumber,
		Status:          "0x1",
	}
	if _, err := c.execute(from, input, true); err != nil {
		t.Status = "0x0"
		t.TxError = "0x9"
	}
	c.txs[hash] = t
	return t
}

func (c *chain) nextHash(from common.Address, input []byte) string {
	c.counter++
	return hexutil.Encode(util.Keccak256(from.Bytes(), input, big.NewInt(int64(c.counter)).Bytes()))
}

func (c *chain) Call(_ context.Context, msg rpc.CallMsg) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.callErr != nil {
		return nil, c.callErr
	}
	if msg.To != c.contract {
		return nil, nil
	}

	var from common.Address
	if msg.From != nil {
		from = *msg.From
	}
	return c.execute(from, msg.Data, false)
}

func (c *chain) GetTransactionCount(_ context.Context, a common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nonces[a], nil
}

func (c *chain) GasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(25000000000), nil
}

func (c *chain) WaitForReceipt(_ context.Context, hash common.Hash) (*rpc.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.txs[hash.Hex()]
	if !ok {
		return nil, errors.New("receipt not found")
	}

	r := &rpc.Receipt{TransactionHash: hash, BlockNumber: 7}
	if t.Status == "0x1" {
		r.Status = 1
	}
	return r, nil
}

func (c *chain) FDContractExecute(_ context.Context, r kas.FDContractExecuteRequest) (*kas.TransactionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	input, err := hexutil.Decode(r.Input)
	if err != nil {
		return nil, &kas.APIError{Status: 400, Code: 1061010, Message: err.Error()}
	}
	if common.HexToAddress(r.To) != c.contract {
		return nil, &kas.APIError{Status: 400, Code: 1061010, Message: "unknown contract"}
	}

	from := common.HexToAddress(r.From)
	hash := c.nextHash(from, input)
	c.commit(from, input, hash)

	return &kas.TransactionResult{From: r.From, To: r.To, Gas: r.Gas, Status: "Submitted", TransactionHash: hash}, nil
}

func (c *chain) FDContractDeploy(_ context.Context, r kas.FDContractDeployRequest) (*kas.TransactionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.deploys = append(c.deploys, r)
	input, _ := hexutil.Decode(r.Input)
	return &kas.TransactionResult{From: r.From, Gas: r.Gas, Status: "Submitted", TransactionHash: c.nextHash(common.HexToAddress(r.From), input)}, nil
}

func (c *chain) FDRawTransaction(_ context.Context, r kas.FDRawTransactionRequest) (*kas.TransactionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := hexutil.Decode(r.RLP)
	if err != nil {
		return nil, &kas.APIError{Status: 400, Code: 1065000, Message: err.Error()}
	}

	t, err := tx.Decode(raw)
	if err != nil {
		return nil, &kas.APIError{Status: 400, Code: 1065000, Message: err.Error()}
	}

	sender, err := t.Sender(c.chainID)
	if err != nil || sender != t.From {
		return nil, &kas.APIError{Status: 400, Code: 1065001, Message: "invalid sender signature"}
	}
	if t.Nonce != c.nonces[t.From] {
		return nil, &kas.APIError{Status: 400, Code: 1065100, Message: "nonce too low"}
	}
	c.nonces[t.From]++
	c.raws = append(c.raws, t)

	hash := hexutil.Encode(util.Keccak256(raw))
	c.commit(t.From, t.Input, hash)

	return &kas.TransactionResult{From: t.From.Hex(), To: t.To.Hex(), Nonce: t.Nonce, Gas: t.Gas, RLP: r.RLP, Status: "Submitted", TransactionHash: hash}, nil
}

func (c *chain) GetTransaction(_ context.Context, hash string) (*kas.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.txs[hash]
	if !ok {
		return nil, &kas.APIError{Status: 404, Code: 1061609, Message: "transaction not found"}
	}
	return t, nil
}

type memJournal struct {
	mu      sync.Mutex
	records []*tx.Record
	updates map[string]string
	blocks  map[string]uint64
}

func (j *memJournal) InsertTx(_ context.Context, r *tx.Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	r.ID = uint(len(j.records) + 1)
	j.records = append(j.records, r)
	return nil
}

func (j *memJournal) UpdateTxStatus(_ context.Context, hash string, status string, blockNumber uint64, _ string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.updates == nil {
		j.updates = make(map[string]string)
		j.blocks = make(map[string]uint64)
	}
	j.updates[hash] = status
	j.blocks[hash] = blockNumber
	return nil
}
