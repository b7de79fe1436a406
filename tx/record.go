package tx

import (
	"math/big"
	"time"
)

const (
	// StatusSubmitted is set when the fee payer accepted the transaction.
	StatusSubmitted = "Submitted"
	// StatusCommitted is set when the receipt status is success.
	StatusCommitted = "Committed"
	// StatusFailed is set when submission or execution failed.
	StatusFailed = "Failed"
)

// Record is the journal db model of a submitted transaction.
type Record struct {
	ID          uint
	TxHash      string
	Method      string
	From        string
	To          string
	Amount      *big.Int
	ReleaseTime int64
	Status      string
	Error       string
	BlockNumber uint64
	CreatedAt   time.Time
}
