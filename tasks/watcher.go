// Package tasks runs the scheduled lock-up release watcher.
package tasks

import (
	"context"
	"fmt"
	"math/big"
	"petcoin/addr"
	"petcoin/klaytn"
	"petcoin/log"
	"petcoin/mail"
	"petcoin/metrics"
	"petcoin/util"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// TokenAPI is the part of the token api used by the watcher.
type TokenAPI interface {
	LockUps(ctx context.Context, to string) ([]klaytn.LockUp, *big.Int, error)
	LockUpRelease(ctx context.Context, from addr.Account, to string) *klaytn.Result
}

// Watcher releases due lock-ups of the watched recipients.
type Watcher struct {
	api        TokenAPI
	owner      addr.Account
	recipients func() []string
	workers    int
	now        func() time.Time

	cron *cron.Cron
}

// NewWatcher creates a watcher. recipients is called on every run so a
// reloaded config takes effect on the next tick.
func NewWatcher(api TokenAPI, owner addr.Account, recipients func() []string, workers int) *Watcher {
	if workers <= 0 {
		workers = 1
	}

	return &Watcher{
		api:        api,
		owner:      owner,
		recipients: recipients,
		workers:    workers,
		now:        time.Now,
	}
}

// Start schedules Run with a cron expression such as "@every 1m".
// A tick is skipped while the previous run is still going.
func (w *Watcher) Start(ctx context.Context, schedule string) error {
	logger := cronLogger{}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger)))

	if _, err := c.AddFunc(schedule, func() { w.Run(ctx) }); err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", schedule, err)
	}

	w.cron = c
	c.Start()
	log.Printf("Lock-up watcher started, schedule=%s, workers=%d", schedule, w.workers)

	return nil
}

// Stop stops the schedule and waits for a running pass.
func (w *Watcher) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
}

// Run checks every recipient once and returns the number of releases sent.
func (w *Watcher) Run(ctx context.Context) int {
	recipients := w.recipients()
	if len(recipients) == 0 {
		return 0
	}

	recipientChan := make(chan string, len(recipients))
	for _, r := range recipients {
		recipientChan <- r
	}
	close(recipientChan)

	var (
		wg       sync.WaitGroup
		released util.SafeCounter
	)

	for i := 0; i < w.workers && i < len(recipients); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer mail.AlertIfErr()

			for recipient := range recipientChan {
				if ctx.Err() != nil {
					return
				}
				if w.check(ctx, recipient) {
					released.Add(1)
				}
			}
		}()
	}

	wg.Wait()
	return int(released.Get())
}

// check releases the lock-ups of recipient if any is due.
func (w *Watcher) check(ctx context.Context, recipient string) bool {
	lockUps, total, err := w.api.LockUps(ctx, recipient)
	if err != nil {
		log.Errorf("Failed to query lock-ups of %s: %v", recipient, err)
		return false
	}

	now := w.now()
	due := DueLockUps(lockUps, now)
	if len(due) == 0 {
		if next, ok := nextRelease(lockUps); ok {
			log.Printf("%s: %d lock-up(s), next release in %s", recipient, len(lockUps), util.Until(now, next.Unix()))
		}
		return false
	}

	dueAmount := big.NewInt(0)
	for _, l := range due {
		dueAmount.Add(dueAmount, l.RawAmount)
	}

	result := w.api.LockUpRelease(ctx, w.owner, recipient)
	if result == nil {
		metrics.LockUpReleases.WithLabelValues("error").Inc()
		log.Errorf("Failed to release %d lock-up(s) of %s", len(due), recipient)
		return false
	}
	metrics.LockUpReleases.WithLabelValues("ok").Inc()

	msg := fmt.Sprintf("Released %d of %d lock-up(s) of %s, amount=%s, locked total=%s, tx=%s",
		len(due), len(lockUps), recipient,
		util.FromPeb(dueAmount).Text('f', -1),
		util.FromPeb(total).Text('f', -1),
		result.TransactionHash)
	log.Println(msg)
	mail.SendNotify("Lock-up released", msg)

	return true
}

// DueLockUps returns the lock-ups whose release time is not after now.
func DueLockUps(lockUps []klaytn.LockUp, now time.Time) []klaytn.LockUp {
	var due []klaytn.LockUp
	for _, l := range lockUps {
		if l.Released(now) {
			due = append(due, l)
		}
	}
	return due
}

func nextRelease(lockUps []klaytn.LockUp) (time.Time, bool) {
	var next time.Time
	for _, l := range lockUps {
		if next.IsZero() || l.ReleaseTime.Before(next) {
			next = l.ReleaseTime
		}
	}
	return next, !next.IsZero()
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Log.Debugw(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error.Errorw(msg, append(keysAndValues, "error", err)...)
}
