// Package notify tracks per-transaction notification status and guarantees
// a notification for any transaction is delivered at most once, across
// remote calls that can fail or suspend.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/tokenledger/foundation/token/account"
	"github.com/ardanlabs/tokenledger/foundation/token/txlog"
)

// Set of statuses a transaction notification can be in. A transaction with
// no recorded status is NotNotified. Notified is terminal.
const (
	StatusNotNotified = "NOT_NOTIFIED"
	StatusPending     = "PENDING"
	StatusNotified    = "NOTIFIED"
)

// Set of typed errors the notify operations can return.
var (
	ErrAlreadyNotified    = errors.New("already notified")
	ErrNotificationFailed = errors.New("notification failed")
	ErrTxDoesNotExist     = errors.New("transaction does not exist")
)

// Notification is the payload delivered to the receiving party of a
// transaction.
type Notification struct {
	TxID    uint64            `json:"tx_id"`
	From    account.AccountID `json:"from"`
	TokenID account.AccountID `json:"token_id"`
	Amount  uint64            `json:"amount"`
}

// Sender interface represents the behavior required to be implemented by any
// package providing support for delivering a notification to the receiving
// party. A Send call may suspend for an arbitrary time and may fail.
type Sender interface {
	Send(ctx context.Context, to account.AccountID, n Notification) error
}

// =============================================================================

// Notifier manages the notification status for transactions. The status for
// a transaction is created lazily the first time a notification is attempted.
type Notifier struct {
	mu sync.Mutex

	statuses map[uint64]string
	sender   Sender
	tokenID  account.AccountID
}

// New constructs a notifier delivering notifications through the specified
// sender on behalf of the specified token.
func New(sender Sender, tokenID account.AccountID) *Notifier {
	return &Notifier{
		statuses: make(map[uint64]string),
		sender:   sender,
		tokenID:  tokenID,
	}
}

// Status returns the current notification status for the transaction.
func (n *Notifier) Status(txID uint64) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	status, exists := n.statuses[txID]
	if !exists {
		return StatusNotNotified
	}
	return status
}

// Notify delivers a notification for the specified transaction record to its
// recipient. The status moves to Pending before the remote call is issued,
// so a concurrent Notify for the same transaction observes Pending and is
// rejected instead of double-sending. On delivery failure the status reverts
// to NotNotified, permitting a retry.
func (n *Notifier) Notify(ctx context.Context, rec txlog.Record) error {

	// Claim the transaction before suspending on the remote call. This flag
	// is the single source of truth for whether a send is in flight.
	n.mu.Lock()
	switch n.statuses[rec.Index] {
	case StatusPending, StatusNotified:
		n.mu.Unlock()
		return fmt.Errorf("transaction %d: %w", rec.Index, ErrAlreadyNotified)
	}
	n.statuses[rec.Index] = StatusPending
	n.mu.Unlock()

	notification := Notification{
		TxID:    rec.Index,
		From:    rec.From,
		TokenID: n.tokenID,
		Amount:  rec.Amount,
	}

	// The remote call happens without holding the lock. Other operations,
	// including other notifications, run during this window.
	err := n.sender.Send(ctx, rec.To, notification)

	n.mu.Lock()
	defer n.mu.Unlock()

	if err != nil {
		delete(n.statuses, rec.Index)
		return fmt.Errorf("transaction %d: %v: %w", rec.Index, err, ErrNotificationFailed)
	}

	n.statuses[rec.Index] = StatusNotified

	return nil
}
