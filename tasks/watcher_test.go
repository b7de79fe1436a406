package tasks

import (
	"context"
	"errors"
	"math/big"
	"petcoin/addr"
	"petcoin/klaytn"
	"petcoin/metrics"
	"petcoin/util"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	mu       sync.Mutex
	lockUps  map[string][]klaytn.LockUp
	fail     map[string]bool
	released []string
}

func (f *fakeToken) LockUps(_ context.Context, to string) ([]klaytn.LockUp, *big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail[to] {
		return nil, nil, errors.New("node unavailable")
	}

	total := big.NewInt(0)
	for _, l := range f.lockUps[to] {
		total.Add(total, l.RawAmount)
	}
	return f.lockUps[to], total, nil
}

func (f *fakeToken) LockUpRelease(_ context.Context, _ addr.Account, to string) *klaytn.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	if to == "reverts" {
		return nil
	}
	f.released = append(f.released, to)
	return &klaytn.Result{TransactionHash: "0x01", Status: "Submitted"}
}

func lockUp(amount int64, releaseTime time.Time) klaytn.LockUp {
	raw := util.ToPeb(big.NewInt(amount))
	return klaytn.LockUp{RawAmount: raw, Amount: util.FromPeb(raw), ReleaseTime: releaseTime}
}

func TestDueLockUps(t *testing.T) {
	now := time.Unix(1600000000, 0)
	lockUps := []klaytn.LockUp{
		lockUp(1, now.Add(-time.Second)),
		lockUp(2, now),
		lockUp(3, now.Add(time.Second)),
	}

	due := DueLockUps(lockUps, now)
	require.Len(t, due, 2)
	assert.Equal(t, util.ToPeb(big.NewInt(1)), due[0].RawAmount)
	assert.Equal(t, util.ToPeb(big.NewInt(2)), due[1].RawAmount)

	assert.Empty(t, DueLockUps(lockUps, now.Add(-time.Hour)))
	assert.Empty(t, DueLockUps(nil, now))

	next, ok := nextRelease(lockUps)
	assert.True(t, ok)
	assert.Equal(t, now.Add(-time.Second), next)

	_, ok = nextRelease(nil)
	assert.False(t, ok)
}

func TestWatcherRun(t *testing.T) {
	now := time.Unix(1600000000, 0)
	fake := &fakeToken{
		lockUps: map[string][]klaytn.LockUp{
			"due":     {lockUp(100, now.Add(-time.Minute)), lockUp(50, now.Add(time.Hour))},
			"pending": {lockUp(100, now.Add(time.Hour))},
			"reverts": {lockUp(10, now.Add(-time.Minute))},
			"late":    {lockUp(7, now)},
		},
		fail: map[string]bool{"broken": true},
	}

	recipients := []string{"due", "pending", "reverts", "late", "broken", "empty"}
	owner := addr.Account{Address: common.HexToAddress("0x8a5fb1f9c3ce4a7fe2a63c0a3e3b0e5d6f2a9c41")}

	w := NewWatcher(fake, owner, func() []string { return recipients }, 3)
	w.now = func() time.Time { return now }

	okBefore := testutil.ToFloat64(metrics.LockUpReleases.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(metrics.LockUpReleases.WithLabelValues("error"))

	assert.Equal(t, 2, w.Run(context.Background()))

	sort.Strings(fake.released)
	assert.Equal(t, []string{"due", "late"}, fake.released)

	assert.Equal(t, okBefore+2, testutil.ToFloat64(metrics.LockUpReleases.WithLabelValues("ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(metrics.LockUpReleases.WithLabelValues("error")))
}

func TestWatcherNoRecipients(t *testing.T) {
	w := NewWatcher(&fakeToken{}, addr.Account{}, func() []string { return nil }, 0)
	assert.Equal(t, 1, w.workers)
	assert.Equal(t, 0, w.Run(context.Background()))
}

func TestWatcherStart(t *testing.T) {
	w := NewWatcher(&fakeToken{}, addr.Account{}, func() []string { return nil }, 1)

	assert.Error(t, w.Start(context.Background(), "not a schedule"))

	require.NoError(t, w.Start(context.Background(), "@every 1h"))
	w.Stop()
}
