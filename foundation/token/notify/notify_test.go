package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/tokenledger/foundation/token/account"
	"github.com/ardanlabs/tokenledger/foundation/token/notify"
	"github.com/ardanlabs/tokenledger/foundation/token/txlog"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

var (
	tokenID = account.AccountID("0x6Fe6CF3c8fF57c58d24BfC869668F48BCbDb3BD9")
	alice   = account.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
	bob     = account.AccountID("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")
)

// sender implements the notify.Sender interface with scripted outcomes.
type sender struct {
	mu    sync.Mutex
	calls int
	err   error
	block chan struct{}
}

func (s *sender) Send(ctx context.Context, to account.AccountID, n notify.Notification) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.block != nil {
		<-s.block
	}

	return s.err
}

func (s *sender) sent() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

func record(index uint64) txlog.Record {
	rec := txlog.NewRecord(txlog.KindTransfer, alice, bob, 100, 10, txlog.StatusSucceeded)
	rec.Index = index
	return rec
}

func TestNotifyOnce(t *testing.T) {
	t.Log("Given the need to validate a notification is delivered exactly once.")
	{
		snd := sender{}
		n := notify.New(&snd, tokenID)

		if err := n.Notify(context.Background(), record(7)); err != nil {
			t.Fatalf("\t%s\tShould be able to notify: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to notify.", success)

		if status := n.Status(7); status != notify.StatusNotified {
			t.Fatalf("\t%s\tShould move the status to Notified, got %s.", failed, status)
		}
		t.Logf("\t%s\tShould move the status to Notified.", success)

		if err := n.Notify(context.Background(), record(7)); !errors.Is(err, notify.ErrAlreadyNotified) {
			t.Fatalf("\t%s\tShould reject a second notify with ErrAlreadyNotified: %v", failed, err)
		}
		if snd.sent() != 1 {
			t.Fatalf("\t%s\tShould not issue a second remote call, got %d.", failed, snd.sent())
		}
		t.Logf("\t%s\tShould reject a second notify without a remote call.", success)
	}
}

func TestNotifyRetryAfterFailure(t *testing.T) {
	t.Log("Given the need to validate a failed delivery permits a retry.")
	{
		snd := sender{err: errors.New("remote unavailable")}
		n := notify.New(&snd, tokenID)

		if err := n.Notify(context.Background(), record(3)); !errors.Is(err, notify.ErrNotificationFailed) {
			t.Fatalf("\t%s\tShould fail with ErrNotificationFailed: %v", failed, err)
		}
		t.Logf("\t%s\tShould fail with ErrNotificationFailed.", success)

		if status := n.Status(3); status != notify.StatusNotNotified {
			t.Fatalf("\t%s\tShould revert the status to NotNotified, got %s.", failed, status)
		}
		t.Logf("\t%s\tShould revert the status to NotNotified.", success)

		snd.err = nil
		if err := n.Notify(context.Background(), record(3)); err != nil {
			t.Fatalf("\t%s\tShould be able to retry after a failure: %v", failed, err)
		}
		if status := n.Status(3); status != notify.StatusNotified {
			t.Fatalf("\t%s\tShould move the status to Notified on retry, got %s.", failed, status)
		}
		t.Logf("\t%s\tShould be able to retry after a failure.", success)
	}
}

func TestNotifyConcurrentDuplicate(t *testing.T) {
	t.Log("Given the need to validate a duplicate notify during a suspended call is rejected.")
	{
		snd := sender{block: make(chan struct{})}
		n := notify.New(&snd, tokenID)

		done := make(chan error, 1)
		go func() {
			done <- n.Notify(context.Background(), record(9))
		}()

		// Wait for the first call to claim the transaction and suspend.
		for snd.sent() == 0 {
			time.Sleep(time.Millisecond)
		}

		if status := n.Status(9); status != notify.StatusPending {
			t.Fatalf("\t%s\tShould hold the status at Pending during the remote call, got %s.", failed, status)
		}
		t.Logf("\t%s\tShould hold the status at Pending during the remote call.", success)

		if err := n.Notify(context.Background(), record(9)); !errors.Is(err, notify.ErrAlreadyNotified) {
			t.Fatalf("\t%s\tShould reject the duplicate notify: %v", failed, err)
		}
		if snd.sent() != 1 {
			t.Fatalf("\t%s\tShould not double-send, got %d calls.", failed, snd.sent())
		}
		t.Logf("\t%s\tShould reject the duplicate without double-sending.", success)

		close(snd.block)
		if err := <-done; err != nil {
			t.Fatalf("\t%s\tShould complete the first notify: %v", failed, err)
		}
		if status := n.Status(9); status != notify.StatusNotified {
			t.Fatalf("\t%s\tShould settle the status at Notified, got %s.", failed, status)
		}
		t.Logf("\t%s\tShould settle the status at Notified.", success)
	}
}
