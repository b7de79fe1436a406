package rpc

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// BlockNumber returns the latest block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var result hexutil.Uint64
	if err := c.call(ctx, 0, "klay_blockNumber", nil, &result); err != nil {
		return 0, err
	}
	return uint64(result), nil
}

// ChainID returns the chain id reported by the node.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	var result hexutil.Big
	if err := c.call(ctx, 0, "klay_chainID", nil, &result); err != nil {
		return nil, err
	}
	return result.ToInt(), nil
}

// GasPrice returns the current unit price.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	var result hexutil.Big
	if err := c.call(ctx, 0, "klay_gasPrice", nil, &result); err != nil {
		return nil, err
	}
	return result.ToInt(), nil
}
