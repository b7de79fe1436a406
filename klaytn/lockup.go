package klaytn

import (
	"context"
	"fmt"
	"math/big"
	"petcoin/addr"
	"petcoin/log"
	"petcoin/tx"
	"petcoin/util"
	"time"
)

// LockUp is one time-locked amount of a recipient.
type LockUp struct {
	Index       uint64
	RawAmount   *big.Int
	Amount      *big.Float
	ReleaseTime time.Time
}

// Released reports whether the lock-up may be released at now.
func (l LockUp) Released(now time.Time) bool {
	return !now.Before(l.ReleaseTime)
}

// LockUp transfers amount whole tokens to `to`, locked for releaseSec seconds.
// As with Transfer, a KAS managed submission is confirmed by WaitForReceipt.
func (a *API) LockUp(ctx context.Context, from addr.Account, to string, amount *big.Int, releaseSec int64) (*Result, error) {
	recipient, err := parseAddress(to)
	if err != nil {
		return nil, err
	}

	value := util.ToPeb(amount)
	releaseTime := util.ReleaseTime(a.now(), releaseSec)

	input, err := a.methods.Encode("lockUp", recipient, value, big.NewInt(releaseTime))
	if err != nil {
		return nil, err
	}

	return a.sendTransaction(ctx, from, input, &tx.Record{
		Method:      "lockUp",
		To:          recipient.Hex(),
		Amount:      value,
		ReleaseTime: releaseTime,
	})
}

// LockUpRelease releases every due lock-up of `to`. The call is dry-run
// first; failures are logged and nil is returned.
func (a *API) LockUpRelease(ctx context.Context, from addr.Account, to string) *Result {
	recipient, err := parseAddress(to)
	if err != nil {
		log.Errorf("lockUpRelease ex: %v", err)
		return nil
	}

	result, err := a.call(ctx, &from.Address, "lockUpRelease", recipient)
	if err != nil {
		log.Errorf("lockUpRelease ex: %v", err)
		return nil
	}
	if ok, err := result.Bool(0); err != nil || !ok {
		log.Errorf("lockUpRelease ex: dry run of %s returned %v %v", recipient.Hex(), ok, err)
		return nil
	}

	input, err := a.methods.Encode("lockUpRelease", recipient)
	if err != nil {
		log.Errorf("lockUpRelease ex: %v", err)
		return nil
	}

	res, err := a.sendTransaction(ctx, from, input, &tx.Record{
		Method: "lockUpRelease",
		To:     recipient.Hex(),
	})
	if err != nil {
		log.Errorf("lockUpRelease ex: %v", err)
		return nil
	}

	return res
}

// GetLockUpCount returns the number of lock-ups held for `to`.
func (a *API) GetLockUpCount(ctx context.Context, to string) (*big.Int, error) {
	recipient, err := parseAddress(to)
	if err != nil {
		return nil, err
	}

	result, err := a.call(ctx, nil, "getLockUpCount", recipient)
	if err != nil {
		return nil, err
	}
	return result.BigInt(0)
}

// GetLockUp returns the lock-up of `to` at index.
func (a *API) GetLockUp(ctx context.Context, to string, index uint64) (*LockUp, error) {
	recipient, err := parseAddress(to)
	if err != nil {
		return nil, err
	}

	result, err := a.call(ctx, nil, "getLockUp", recipient, new(big.Int).SetUint64(index))
	if err != nil {
		return nil, err
	}

	amount, err := result.BigInt(0)
	if err != nil {
		return nil, err
	}

	releaseTime, err := result.BigInt(1)
	if err != nil {
		return nil, err
	}
	if !releaseTime.IsInt64() {
		return nil, fmt.Errorf("release time %s out of range", releaseTime)
	}

	return &LockUp{
		Index:       index,
		RawAmount:   amount,
		Amount:      util.FromPeb(amount),
		ReleaseTime: time.Unix(releaseTime.Int64(), 0),
	}, nil
}

// LockUps returns every lock-up of `to` with the raw total amount.
func (a *API) LockUps(ctx context.Context, to string) ([]LockUp, *big.Int, error) {
	count, err := a.GetLockUpCount(ctx, to)
	if err != nil {
		return nil, nil, err
	}
	if !count.IsUint64() {
		return nil, nil, fmt.Errorf("lock-up count %s out of range", count)
	}

	total := big.NewInt(0)
	lockUps := make([]LockUp, 0, count.Uint64())

	for i := uint64(0); i < count.Uint64(); i++ {
		l, err := a.GetLockUp(ctx, to, i)
		if err != nil {
			return nil, nil, err
		}

		total.Add(total, l.RawAmount)
		lockUps = append(lockUps, *l)
	}

	return lockUps, total, nil
}
