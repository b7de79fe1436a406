package rpc

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// CallMsg is a read-only contract call.
type CallMsg struct {
	From *common.Address
	To   common.Address
	Data []byte
}

type callArgs struct {
	From *common.Address `json:"from,omitempty"`
	To   common.Address  `json:"to"`
	Data hexutil.Bytes   `json:"data"`
}

// Call executes msg against the latest state with klay_call
// and returns the raw return data.
func (c *Client) Call(ctx context.Context, msg CallMsg) ([]byte, error) {
	args := callArgs{
		From: msg.From,
		To:   msg.To,
		Data: msg.Data,
	}

	var result hexutil.Bytes
	err := c.call(ctx, c.BestHeight.Get(), "klay_call", []interface{}{args, "latest"}, &result)
	if err != nil {
		return nil, err
	}
	return result, nil
}
