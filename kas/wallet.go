package kas

import (
	"context"
	"net/url"
)

const (
	pathFDContractExecute = "/v2/tx/fd/contract/execute"
	pathFDContractDeploy  = "/v2/tx/fd/contract/deploy"
	pathFDRaw             = "/v2/tx/fd/raw"
	pathTx                = "/v2/tx/"
)

// FDContractExecuteRequest executes a contract from a KAS account,
// the fee is paid by the global fee payer.
type FDContractExecuteRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Value  string `json:"value"`
	Input  string `json:"input"`
	Gas    uint64 `json:"gas"`
	Submit bool   `json:"submit"`
}

// FDContractDeployRequest deploys a contract from a KAS account,
// the fee is paid by the global fee payer.
type FDContractDeployRequest struct {
	From   string `json:"from"`
	Value  string `json:"value"`
	Input  string `json:"input"`
	Gas    uint64 `json:"gas"`
	Submit bool   `json:"submit"`
}

// FDRawTransactionRequest submits an rlp signed by the sender.
type FDRawTransactionRequest struct {
	RLP    string `json:"rlp"`
	Submit bool   `json:"submit"`
}

// TransactionResult is returned by the fee delegation endpoints.
type TransactionResult struct {
	From            string      `json:"from"`
	FeePayer        string      `json:"feePayer,omitempty"`
	Gas             uint64      `json:"gas"`
	GasPrice        string      `json:"gasPrice"`
	Input           string      `json:"input,omitempty"`
	Nonce           uint64      `json:"nonce"`
	RLP             string      `json:"rlp"`
	Signatures      []Signature `json:"signatures"`
	Status          string      `json:"status"`
	To              string      `json:"to,omitempty"`
	TransactionHash string      `json:"transactionHash"`
	TypeInt         int         `json:"typeInt"`
	Value           string      `json:"value"`
}

// Signature is a hex encoded [V, R, S].
type Signature struct {
	V string `json:"V"`
	R string `json:"R"`
	S string `json:"S"`
}

// Transaction is the GET /v2/tx/{hash} result.
type Transaction struct {
	BlockHash        string      `json:"blockHash"`
	BlockNumber      string      `json:"blockNumber"`
	ContractAddress  string      `json:"contractAddress,omitempty"`
	FeePayer         string      `json:"feePayer,omitempty"`
	From             string      `json:"from"`
	Gas              string      `json:"gas"`
	GasPrice         string      `json:"gasPrice"`
	GasUsed          string      `json:"gasUsed"`
	Input            string      `json:"input"`
	Nonce            string      `json:"nonce"`
	Signatures       []Signature `json:"signatures"`
	Status           string      `json:"status"`
	To               string      `json:"to"`
	TransactionHash  string      `json:"transactionHash"`
	TransactionIndex string      `json:"transactionIndex"`
	Type             string      `json:"type"`
	TypeInt          int         `json:"typeInt"`
	TxError          string      `json:"txError,omitempty"`
	Value            string      `json:"value"`
}

// Committed reports a successful receipt status.
func (t *Transaction) Committed() bool {
	return t.Status == "0x1"
}

// FDContractExecute requests a fee delegated contract execution paid by
// the KAS global fee payer.
func (c *Client) FDContractExecute(ctx context.Context, r FDContractExecuteRequest) (*TransactionResult, error) {
	var result TransactionResult
	if err := c.do(ctx, "POST", pathFDContractExecute, r, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FDContractDeploy requests a fee delegated contract deployment paid by
// the KAS global fee payer.
func (c *Client) FDContractDeploy(ctx context.Context, r FDContractDeployRequest) (*TransactionResult, error) {
	var result TransactionResult
	if err := c.do(ctx, "POST", pathFDContractDeploy, r, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FDRawTransaction submits a sender signed rlp, the KAS global fee payer
// adds its signature and pays.
func (c *Client) FDRawTransaction(ctx context.Context, r FDRawTransactionRequest) (*TransactionResult, error) {
	var result TransactionResult
	if err := c.do(ctx, "POST", pathFDRaw, r, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTransaction looks up a transaction by hash.
func (c *Client) GetTransaction(ctx context.Context, hash string) (*Transaction, error) {
	var result Transaction
	if err := c.do(ctx, "GET", pathTx+url.PathEscape(hash), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
