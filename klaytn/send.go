package klaytn

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"petcoin/addr"
	"petcoin/kas"
	"petcoin/log"
	"petcoin/metrics"
	"petcoin/rpc"
	"petcoin/tx"
	"petcoin/util"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// sendTransaction submits input to the contract. KAS accounts are signed
// by the wallet, accounts holding a key sign locally and the wallet only
// adds the fee payer signature. The wallet answers a managed submission
// before execution, so its revert is only reported by WaitForReceipt.
func (a *API) sendTransaction(ctx context.Context, from addr.Account, input []byte, rec *tx.Record) (*Result, error) {
	to, err := a.target()
	if err != nil {
		return nil, err
	}

	var submitted *kas.TransactionResult
	if from.Managed() {
		submitted, err = a.wallet.FDContractExecute(ctx, kas.FDContractExecuteRequest{
			From:   from.Address.Hex(),
			To:     to.Hex(),
			Value:  "0x0",
			Input:  hexutil.Encode(input),
			Gas:    a.gasLimit,
			Submit: true,
		})
	} else {
		var raw string
		raw, err = a.signTransaction(ctx, from, to, input)
		if err == nil {
			submitted, err = a.wallet.FDRawTransaction(ctx, kas.FDRawTransactionRequest{
				RLP:    raw,
				Submit: true,
			})
		}
	}

	metrics.Transactions.WithLabelValues(rec.Method, metrics.Status(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rec.Method, err)
	}
	log.Printf("%s txResult: hash=%s status=%s", rec.Method, submitted.TransactionHash, submitted.Status)

	result := &Result{
		TransactionHash: submitted.TransactionHash,
		Status:          submitted.Status,
		Submitted:       submitted,
	}

	rec.From = from.Address.Hex()
	a.record(ctx, rec, result)

	if from.Managed() || submitted.TransactionHash == "" {
		return result, nil
	}

	t, err := a.wallet.GetTransaction(ctx, submitted.TransactionHash)
	if err != nil {
		log.Errorf("getTransaction %s: %v", submitted.TransactionHash, err)
		return result, nil
	}
	result.Transaction = t

	if t.Status == "0x0" || t.TxError != "" {
		a.updateStatus(ctx, result.TransactionHash, tx.StatusFailed, blockNumber(t), t.TxError)
		return result, fmt.Errorf("%s: %w: %s", rec.Method, ErrReverted, t.TxError)
	}
	if t.Committed() {
		a.updateStatus(ctx, result.TransactionHash, tx.StatusCommitted, blockNumber(t), "")
	}

	return result, nil
}

// blockNumber returns the block of t, 0 if it can not be parsed.
func blockNumber(t *kas.Transaction) uint64 {
	n, err := util.HexToBigInt(t.BlockNumber)
	if err != nil || !n.IsUint64() {
		log.Errorf("Invalid block number %q of tx %s: %v", t.BlockNumber, t.TransactionHash, err)
		return 0
	}
	return n.Uint64()
}

// signTransaction builds and signs a fee delegated execution of input.
func (a *API) signTransaction(ctx context.Context, from addr.Account, to common.Address, input []byte) (string, error) {
	nonce, err := a.node.GetTransactionCount(ctx, from.Address)
	if err != nil {
		return "", fmt.Errorf("get nonce: %w", err)
	}

	gasPrice, err := a.node.GasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("get gas price: %w", err)
	}

	t := &tx.FeeDelegatedSmartContractExecution{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      a.gasLimit,
		To:       to,
		Value:    big.NewInt(0),
		From:     from.Address,
		Input:    input,
	}

	if err := t.Sign(from.Key, a.chainID); err != nil {
		return "", err
	}
	return t.RawHex()
}

// Deploy creates the contract from a KAS account.
func (a *API) Deploy(ctx context.Context, owner addr.Account, gas uint64) (*Result, error) {
	if !owner.Managed() {
		return nil, errors.New("deploy requires a KAS wallet account")
	}

	input, err := a.artifact.DeployInput()
	if err != nil {
		return nil, err
	}

	if gas == 0 {
		gas = a.gasLimit
	}

	submitted, err := a.wallet.FDContractDeploy(ctx, kas.FDContractDeployRequest{
		From:   owner.Address.Hex(),
		Value:  "0x0",
		Input:  hexutil.Encode(input),
		Gas:    gas,
		Submit: true,
	})
	metrics.Transactions.WithLabelValues("deploy", metrics.Status(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("deploy: %w", err)
	}
	log.Printf("deploy txResult: hash=%s status=%s", submitted.TransactionHash, submitted.Status)

	result := &Result{
		TransactionHash: submitted.TransactionHash,
		Status:          submitted.Status,
		Submitted:       submitted,
	}
	a.record(ctx, &tx.Record{Method: "deploy", From: owner.Address.Hex()}, result)

	return result, nil
}

// WaitForReceipt waits for hash to be mined and updates the journal.
func (a *API) WaitForReceipt(ctx context.Context, hash string) (*rpc.Receipt, error) {
	h := common.HexToHash(hash)

	receipt, err := a.node.WaitForReceipt(ctx, h)
	if err != nil {
		return nil, err
	}

	if receipt.Succeeded() {
		a.updateStatus(ctx, hash, tx.StatusCommitted, uint64(receipt.BlockNumber), "")
		return receipt, nil
	}

	a.updateStatus(ctx, hash, tx.StatusFailed, uint64(receipt.BlockNumber), "receipt status failed")
	return receipt, fmt.Errorf("%w: %s", ErrReverted, hash)
}

func (a *API) record(ctx context.Context, rec *tx.Record, result *Result) {
	if a.journal == nil {
		return
	}

	rec.TxHash = result.TransactionHash
	rec.Status = tx.StatusSubmitted
	rec.CreatedAt = a.now()

	if err := a.journal.InsertTx(ctx, rec); err != nil {
		log.Errorf("journal %s %s: %v", rec.Method, rec.TxHash, err)
	}
}

func (a *API) updateStatus(ctx context.Context, hash string, status string, blockNumber uint64, errMsg string) {
	if a.journal == nil {
		return
	}

	if err := a.journal.UpdateTxStatus(ctx, hash, status, blockNumber, errMsg); err != nil {
		log.Errorf("journal update %s: %v", hash, err)
	}
}
