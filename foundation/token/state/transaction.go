package state

import (
	"context"
	"fmt"

	"github.com/ardanlabs/tokenledger/foundation/token/account"
	"github.com/ardanlabs/tokenledger/foundation/token/ledger"
	"github.com/ardanlabs/tokenledger/foundation/token/notify"
	"github.com/ardanlabs/tokenledger/foundation/token/txlog"
)

// apply runs a ledger operation, logs its outcome and returns the assigned
// transaction index. Failed operations that reached fee/balance evaluation
// are logged with a Failed status; pure validation failures are returned
// without a log entry.
func (s *State) apply(fn func() (ledger.Applied, error)) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	applied, err := fn()
	if err != nil {
		if ledger.IsRecordable(err) {
			if _, recErr := s.record(applied, txlog.StatusFailed); recErr != nil {
				return 0, fmt.Errorf("recording failure: %v: %w", recErr, err)
			}
		}
		return 0, err
	}

	index, err := s.record(applied, txlog.StatusSucceeded)
	if err != nil {
		return 0, err
	}

	s.evHandler("state: %s: from[%s] to[%s] amount[%d] fee[%d] tx[%d]", applied.Kind, applied.From, applied.To, applied.Amount, applied.Fee, index)

	return index, nil
}

// Transfer moves value from the caller to the specified account, charging
// the configured fee on top. The returned receipt is the index of the
// transaction record.
func (s *State) Transfer(caller account.AccountID, to account.AccountID, value uint64, feeLimit *uint64) (uint64, error) {
	return s.apply(func() (ledger.Applied, error) {
		return s.ledger.Transfer(caller, to, value, feeLimit)
	})
}

// TransferIncludeFee moves value from the caller to the specified account,
// taking the fee out of the value.
func (s *State) TransferIncludeFee(caller account.AccountID, to account.AccountID, value uint64) (uint64, error) {
	return s.apply(func() (ledger.Applied, error) {
		return s.ledger.TransferIncludeFee(caller, to, value)
	})
}

// TransferFrom moves value out of the from account on behalf of the caller,
// consuming the caller's allowance.
func (s *State) TransferFrom(caller account.AccountID, from account.AccountID, to account.AccountID, value uint64) (uint64, error) {
	return s.apply(func() (ledger.Applied, error) {
		return s.ledger.TransferFrom(caller, from, to, value)
	})
}

// Approve sets the allowance of the spender over the caller's balance.
func (s *State) Approve(caller account.AccountID, spender account.AccountID, value uint64) (uint64, error) {
	return s.apply(func() (ledger.Applied, error) {
		return s.ledger.Approve(caller, spender, value)
	})
}

// Mint creates tokens on the specified account. Owner only, unless the
// token runs in test mode.
func (s *State) Mint(caller account.AccountID, to account.AccountID, value uint64) (uint64, error) {
	return s.apply(func() (ledger.Applied, error) {
		return s.ledger.Mint(caller, to, value)
	})
}

// Burn destroys tokens held by the specified account. Permitted to the
// owner and to the account itself.
func (s *State) Burn(caller account.AccountID, from account.AccountID, value uint64) (uint64, error) {
	return s.apply(func() (ledger.Applied, error) {
		return s.ledger.Burn(caller, from, value)
	})
}

// =============================================================================

// Notify delivers a notification for a previously performed transaction to
// its recipient. A notification for any transaction index is delivered at
// most once; retries are only possible after a delivery failure. The remote
// call runs outside the update serialization window.
func (s *State) Notify(ctx context.Context, txID uint64) (uint64, error) {
	s.mu.Lock()
	rec, exists := s.txlog.Get(txID)
	s.mu.Unlock()

	if !exists {
		return 0, fmt.Errorf("transaction %d: %w", txID, notify.ErrTxDoesNotExist)
	}

	if err := s.notifier.Notify(ctx, rec); err != nil {
		return 0, err
	}

	s.evHandler("state: notified: tx[%d] to[%s]", txID, rec.To)

	return txID, nil
}

// TransferAndNotify performs a transfer and immediately attempts to notify
// the recipient. If the notification fails the transfer still stands and the
// notification can be retried later through Notify.
func (s *State) TransferAndNotify(ctx context.Context, caller account.AccountID, to account.AccountID, value uint64, feeLimit *uint64) (uint64, error) {
	index, err := s.Transfer(caller, to, value, feeLimit)
	if err != nil {
		return 0, err
	}

	if _, err := s.Notify(ctx, index); err != nil {
		return index, err
	}

	return index, nil
}

// NotificationStatus returns the notification status for a transaction.
func (s *State) NotificationStatus(txID uint64) string {
	return s.notifier.Status(txID)
}
