package rpc

import (
	"context"
	"math/rand"
	"petcoin/log"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Receipt is the klay_getTransactionReceipt result.
type Receipt struct {
	BlockNumber     hexutil.Uint64  `json:"blockNumber"`
	Status          hexutil.Uint64  `json:"status"`
	TransactionHash common.Hash     `json:"transactionHash"`
	ContractAddress *common.Address `json:"contractAddress"`
	From            common.Address  `json:"from"`
	To              *common.Address `json:"to"`
	GasUsed         hexutil.Uint64  `json:"gasUsed"`
	FeePayer        *common.Address `json:"feePayer,omitempty"`
	TxError         string          `json:"txError,omitempty"`
}

// Succeeded reports whether the transaction executed without revert.
func (r *Receipt) Succeeded() bool {
	return r.Status == 1
}

// GetTransactionCount returns the pending nonce of addr.
func (c *Client) GetTransactionCount(ctx context.Context, addr common.Address) (uint64, error) {
	var result hexutil.Uint64
	if err := c.call(ctx, 0, "klay_getTransactionCount", []interface{}{addr, "pending"}, &result); err != nil {
		return 0, err
	}
	return uint64(result), nil
}

// GetTransactionReceipt returns nil without error while the transaction is pending.
func (c *Client) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	var result *Receipt
	if err := c.call(ctx, 0, "klay_getTransactionReceipt", []interface{}{hash}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// WaitForReceipt polls the receipt of hash until it is available or ctx is done.
func (c *Client) WaitForReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	retryTime := uint(0)
	delay := 0

	for {
		receipt, err := c.GetTransactionReceipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			return receipt, nil
		}

		retryTime++
		if delay < 10*1000 && retryTime < 30 {
			delay = rand.Intn(1<<retryTime) + 1000
		}

		log.Printf("Receipt of %s not available, retry in %d msecs. RetryTime=%d", hash.Hex(), delay, retryTime)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(delay) * time.Millisecond):
		}
	}
}
