package txlog

import (
	"time"

	"github.com/ardanlabs/tokenledger/foundation/token/account"
)

// Set of operation kinds a record can represent.
const (
	KindApprove      = "APPROVE"
	KindBurn         = "BURN"
	KindMint         = "MINT"
	KindAuction      = "AUCTION"
	KindTransfer     = "TRANSFER"
	KindTransferFrom = "TRANSFERFROM"
)

// Set of statuses a record can carry.
const (
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

// Record represents one applied ledger operation. A record is immutable once
// appended to the log.
type Record struct {
	Index     uint64            `json:"index"`            // Monotonic, zero-based position in the log.
	Kind      string            `json:"kind"`             // Operation that produced this record.
	From      account.AccountID `json:"from"`             // Account debited by the operation.
	To        account.AccountID `json:"to"`               // Account credited by the operation.
	Caller    account.AccountID `json:"caller,omitempty"` // Spender, present only for TransferFrom moves.
	Amount    uint64            `json:"amount"`           // Effective amount moved.
	Fee       uint64            `json:"fee"`              // Fee charged by the operation.
	Status    string            `json:"status"`           // Succeeded or Failed.
	TimeStamp uint64            `json:"timestamp"`        // The time the operation was applied.
}

// NewRecord constructs an unindexed record stamped with the current time.
// The index is assigned by the log on append.
func NewRecord(kind string, from account.AccountID, to account.AccountID, amount uint64, fee uint64, status string) Record {
	return Record{
		Kind:      kind,
		From:      from,
		To:        to,
		Amount:    amount,
		Fee:       fee,
		Status:    status,
		TimeStamp: uint64(time.Now().UTC().UnixNano()),
	}
}

// Touches reports whether the specified account is the sender, recipient or
// caller of this record.
func (r Record) Touches(who account.AccountID) bool {
	return r.From == who || r.To == who || (r.Caller != "" && r.Caller == who)
}
