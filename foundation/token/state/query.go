package state

import (
	"fmt"
	"time"

	"github.com/ardanlabs/tokenledger/foundation/token/account"
	"github.com/ardanlabs/tokenledger/foundation/token/ledger"
	"github.com/ardanlabs/tokenledger/foundation/token/txlog"
)

// TokenInfo bundles the metadata with the live operational numbers of the
// token.
type TokenInfo struct {
	Metadata     ledger.Metadata   `json:"metadata"`
	FeeTo        account.AccountID `json:"fee_to"`
	HistorySize  uint64            `json:"history_size"`
	DeployTime   time.Time         `json:"deploy_time"`
	HolderNumber int               `json:"holder_number"`
	Cycles       uint64            `json:"cycles"`
}

// TokenInfo returns the metadata and operational numbers of the token.
func (s *State) TokenInfo() TokenInfo {
	md := s.ledger.Metadata()

	return TokenInfo{
		Metadata:     md,
		FeeTo:        md.FeeTo,
		HistorySize:  s.txlog.Size(),
		DeployTime:   s.deployTime,
		HolderNumber: s.ledger.HolderCount(),
		Cycles:       s.bank.Balance(),
	}
}

// Metadata returns the client-facing token metadata.
func (s *State) Metadata() ledger.Metadata {
	return s.ledger.Metadata()
}

// Name returns the token name.
func (s *State) Name() string {
	return s.ledger.Stats().Name
}

// Symbol returns the token ticker symbol.
func (s *State) Symbol() string {
	return s.ledger.Stats().Symbol
}

// Decimals returns the number of decimal places in one whole token.
func (s *State) Decimals() uint8 {
	return s.ledger.Stats().Decimals
}

// Logo returns the token logo reference.
func (s *State) Logo() string {
	return s.ledger.Stats().Logo
}

// Owner returns the account currently owning the token.
func (s *State) Owner() account.AccountID {
	return s.ledger.Stats().Owner
}

// TotalSupply returns the current total supply.
func (s *State) TotalSupply() uint64 {
	return s.ledger.TotalSupply()
}

// IsTestToken reports whether the token runs in test mode.
func (s *State) IsTestToken() bool {
	return s.ledger.Stats().IsTestToken
}

// BalanceOf returns the balance held by the specified account.
func (s *State) BalanceOf(who account.AccountID) uint64 {
	return s.ledger.BalanceOf(who)
}

// Allowance returns the amount the spender may move out of the owner's
// balance.
func (s *State) Allowance(owner account.AccountID, spender account.AccountID) uint64 {
	return s.ledger.Allowance(owner, spender)
}

// AllowanceSize returns the total number of live allowance entries.
func (s *State) AllowanceSize() int {
	return s.ledger.AllowanceSize()
}

// UserApprovals returns the live approvals granted by the specified account.
func (s *State) UserApprovals(owner account.AccountID) []ledger.Approval {
	return s.ledger.UserApprovals(owner)
}

// Holders returns a page of accounts with non-zero balances.
func (s *State) Holders(start int, limit int) []ledger.Holder {
	return s.ledger.Holders(start, limit)
}

// HistorySize returns the total number of transactions ever logged.
func (s *State) HistorySize() uint64 {
	return s.txlog.Size()
}

// Transaction returns the record logged under the specified index. Requests
// for indices that were never assigned or whose records have been evicted
// fail the same way.
func (s *State) Transaction(index uint64) (txlog.Record, error) {
	rec, exists := s.txlog.Get(index)
	if !exists {
		return txlog.Record{}, fmt.Errorf("transaction %d does not exist", index)
	}

	return rec, nil
}

// Transactions returns the records with index in [start, start+limit).
func (s *State) Transactions(start uint64, limit int) ([]txlog.Record, error) {
	return s.txlog.Range(start, limit)
}

// UserTransactions returns the records in the window [start, start+limit)
// of the global log that relate to the specified account. Fewer matching
// records than limit may be returned even when more exist.
func (s *State) UserTransactions(who account.AccountID, start uint64, limit int) ([]txlog.Record, error) {
	return s.txlog.ByAccount(who, start, limit)
}

// UserTransactionAmount returns the sum of the amounts across all retained
// records related to the specified account.
func (s *State) UserTransactionAmount(who account.AccountID) uint64 {
	return s.txlog.AmountByAccount(who)
}
