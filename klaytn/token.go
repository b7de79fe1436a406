package klaytn

import (
	"context"
	"math/big"
	"petcoin/addr"
	"petcoin/log"
	"petcoin/tx"
	"petcoin/util"

	"github.com/ethereum/go-ethereum/common"
)

// Balance returns the raw on-chain balance of address.
func (a *API) Balance(ctx context.Context, address string) (*big.Int, error) {
	account, err := parseAddress(address)
	if err != nil {
		return nil, err
	}

	result, err := a.call(ctx, nil, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	return result.BigInt(0)
}

// BalanceOf returns the readable balance of address, or -1 if it can not
// be queried.
func (a *API) BalanceOf(ctx context.Context, address string) *big.Float {
	balance, err := a.Balance(ctx, address)
	if err != nil {
		log.Errorf("balanceOf %s: %v", address, err)
		return big.NewFloat(-1)
	}
	return util.FromPeb(balance)
}

// TotalSupply returns the readable total supply.
func (a *API) TotalSupply(ctx context.Context) (*big.Float, error) {
	result, err := a.call(ctx, nil, "totalSupply")
	if err != nil {
		return nil, err
	}

	supply, err := result.BigInt(0)
	if err != nil {
		return nil, err
	}
	return util.FromPeb(supply), nil
}

// Owner returns the contract owner.
func (a *API) Owner(ctx context.Context) (common.Address, error) {
	result, err := a.call(ctx, nil, "owner")
	if err != nil {
		return common.Address{}, err
	}
	return result.Address(0)
}

// Transfer sends amount whole tokens from to. A nil error for a KAS managed
// sender means submitted, not executed; see WaitForReceipt.
func (a *API) Transfer(ctx context.Context, from addr.Account, to string, amount *big.Int) (*Result, error) {
	recipient, err := parseAddress(to)
	if err != nil {
		return nil, err
	}

	value := util.ToPeb(amount)
	input, err := a.methods.Encode("transfer", recipient, value)
	if err != nil {
		return nil, err
	}

	return a.sendTransaction(ctx, from, input, &tx.Record{
		Method: "transfer",
		To:     recipient.Hex(),
		Amount: value,
	})
}

// TransferOwner hands the contract ownership to newOwner.
func (a *API) TransferOwner(ctx context.Context, from addr.Account, newOwner string) (*Result, error) {
	owner, err := parseAddress(newOwner)
	if err != nil {
		return nil, err
	}

	input, err := a.methods.Encode("transferOwner", owner)
	if err != nil {
		return nil, err
	}

	return a.sendTransaction(ctx, from, input, &tx.Record{
		Method: "transferOwner",
		To:     owner.Hex(),
	})
}
