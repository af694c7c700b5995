// Package ledger maintains account balances and spender allowances and
// applies all value-moving operations atomically. Every operation validates
// all of its preconditions first and mutates state only when the whole
// operation can succeed.
package ledger

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ardanlabs/tokenledger/foundation/token/account"
	"github.com/ardanlabs/tokenledger/foundation/token/genesis"
	"github.com/ardanlabs/tokenledger/foundation/token/txlog"
)

// AuctionAccount is the reserved account that holds the share of fees
// accumulated for the next cycle auction.
const AuctionAccount = account.AccountID("0x0000000000000000000000000000000000000A0C")

// FeeRouter interface represents the behavior required to be implemented by
// any package routing a share of collected fees to the auction subsystem.
type FeeRouter interface {
	FeeRatio() float64
	RecordFee(amount uint64)
}

// Applied describes the effective amounts of an operation after fee
// evaluation. It carries everything needed to build a transaction record.
type Applied struct {
	Kind   string
	From   account.AccountID
	To     account.AccountID
	Caller account.AccountID
	Amount uint64
	Fee    uint64
}

// =============================================================================

// Ledger manages the balances, allowances and configuration for the token.
type Ledger struct {
	mu sync.RWMutex

	stats      Stats
	balances   map[account.AccountID]uint64
	allowances map[account.AccountID]map[account.AccountID]uint64

	router FeeRouter
}

// New constructs a ledger from the genesis information. Any genesis balances
// are carved out of the total supply and the owner receives the remainder.
func New(gen genesis.Genesis, router FeeRouter) (*Ledger, error) {
	owner, err := account.ToAccountID(gen.Owner)
	if err != nil {
		return nil, fmt.Errorf("genesis owner: %w", err)
	}

	feeTo, err := account.ToAccountID(gen.FeeTo)
	if err != nil {
		return nil, fmt.Errorf("genesis fee_to: %w", err)
	}

	l := Ledger{
		stats: Stats{
			Name:        gen.Name,
			Symbol:      gen.Symbol,
			Decimals:    gen.Decimals,
			Logo:        gen.Logo,
			Owner:       owner,
			Fee:         gen.Fee,
			FeeTo:       feeTo,
			TotalSupply: gen.TotalSupply,
			IsTestToken: gen.IsTestToken,
			DeployTime:  gen.Date,
		},
		balances:   make(map[account.AccountID]uint64),
		allowances: make(map[account.AccountID]map[account.AccountID]uint64),
		router:     router,
	}

	var carved uint64
	for accountStr, balance := range gen.Balances {
		accountID, err := account.ToAccountID(accountStr)
		if err != nil {
			return nil, err
		}

		newCarved, ok := sumNoWrap(carved, balance)
		if !ok {
			return nil, fmt.Errorf("genesis balances overflow at account %s", accountID)
		}

		l.balances[accountID] += balance
		carved = newCarved
	}

	if carved > gen.TotalSupply {
		return nil, fmt.Errorf("genesis balances %d exceed total supply %d", carved, gen.TotalSupply)
	}
	l.balances[owner] += gen.TotalSupply - carved

	return &l, nil
}

// =============================================================================
// Value-moving operations

// Transfer moves value from one account to another, charging the configured
// fee on top. The fee is debited from the sender in addition to the value.
// When a fee limit is provided and the configured fee exceeds it, the
// operation fails without touching any balance.
func (l *Ledger) Transfer(from account.AccountID, to account.AccountID, value uint64, feeLimit *uint64) (Applied, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fee := l.stats.Fee
	applied := Applied{Kind: txlog.KindTransfer, From: from, To: to, Amount: value, Fee: fee}

	if feeLimit != nil && fee > *feeLimit {
		return applied, fmt.Errorf("fee %d over limit %d: %w", fee, *feeLimit, ErrFeeExceededLimit)
	}

	needed, ok := sumNoWrap(value, fee)
	if !ok {
		return applied, fmt.Errorf("value %d plus fee %d overflows: %w", value, fee, ErrInsufficientBalance)
	}

	if l.balances[from] < needed {
		return applied, fmt.Errorf("balance %d, needed %d: %w", l.balances[from], needed, ErrInsufficientBalance)
	}

	l.debit(from, needed)
	l.credit(to, value)
	l.chargeFee(fee)

	return applied, nil
}

// TransferIncludeFee moves value from one account to another, taking the fee
// out of the value. The sender is debited exactly value and the recipient
// receives value minus the fee, so the value must be larger than the fee.
func (l *Ledger) TransferIncludeFee(from account.AccountID, to account.AccountID, value uint64) (Applied, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fee := l.stats.Fee
	applied := Applied{Kind: txlog.KindTransfer, From: from, To: to, Amount: value, Fee: fee}

	if value <= fee {
		return applied, fmt.Errorf("value %d must exceed fee %d: %w", value, fee, ErrAmountTooSmall)
	}

	if l.balances[from] < value {
		return applied, fmt.Errorf("balance %d, needed %d: %w", l.balances[from], value, ErrInsufficientBalance)
	}

	l.debit(from, value)
	l.credit(to, value-fee)
	l.chargeFee(fee)

	return applied, nil
}

// TransferFrom moves value out of the from account on behalf of the caller,
// consuming the caller's allowance. The fee is charged to the from account,
// so the allowance must cover value plus fee.
func (l *Ledger) TransferFrom(caller account.AccountID, from account.AccountID, to account.AccountID, value uint64) (Applied, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fee := l.stats.Fee
	applied := Applied{Kind: txlog.KindTransferFrom, From: from, To: to, Caller: caller, Amount: value, Fee: fee}

	needed, ok := sumNoWrap(value, fee)
	if !ok {
		return applied, fmt.Errorf("value %d plus fee %d overflows: %w", value, fee, ErrInsufficientAllowance)
	}

	allowed := l.allowances[from][caller]
	if allowed < needed {
		return applied, fmt.Errorf("allowance %d, needed %d: %w", allowed, needed, ErrInsufficientAllowance)
	}

	if l.balances[from] < needed {
		return applied, fmt.Errorf("balance %d, needed %d: %w", l.balances[from], needed, ErrInsufficientBalance)
	}

	l.debit(from, needed)
	l.credit(to, value)
	l.chargeFee(fee)
	l.setAllowance(from, caller, allowed-needed)

	return applied, nil
}

// Approve sets the allowance of the spender over the owner's balance to
// exactly the specified value for use with TransferFrom. The previous
// allowance is overwritten, never accumulated.
func (l *Ledger) Approve(owner account.AccountID, spender account.AccountID, value uint64) (Applied, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.setAllowance(owner, spender, value)

	return Applied{Kind: txlog.KindApprove, From: owner, To: spender, Amount: value}, nil
}

// Mint creates value tokens on the specified account, growing the total
// supply. Only the owner can mint, unless the token runs in test mode.
func (l *Ledger) Mint(caller account.AccountID, to account.AccountID, value uint64) (Applied, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.stats.IsTestToken && caller != l.stats.Owner {
		return Applied{}, fmt.Errorf("caller %s is not the owner %s: %w", caller, l.stats.Owner, ErrUnauthorized)
	}

	if _, ok := sumNoWrap(l.stats.TotalSupply, value); !ok {
		return Applied{}, fmt.Errorf("minting %d overflows the total supply %d", value, l.stats.TotalSupply)
	}

	l.credit(to, value)
	l.stats.TotalSupply += value

	return Applied{Kind: txlog.KindMint, From: caller, To: to, Amount: value}, nil
}

// Burn destroys value tokens held by the specified account, shrinking the
// total supply. The owner can burn from any account, everyone else only
// from their own.
func (l *Ledger) Burn(caller account.AccountID, from account.AccountID, value uint64) (Applied, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.stats.Owner && caller != from {
		return Applied{}, fmt.Errorf("caller %s may not burn from %s: %w", caller, from, ErrUnauthorized)
	}

	applied := Applied{Kind: txlog.KindBurn, From: from, To: from, Amount: value}

	if l.balances[from] < value {
		return applied, fmt.Errorf("balance %d, needed %d: %w", l.balances[from], value, ErrInsufficientBalance)
	}

	l.debit(from, value)
	l.stats.TotalSupply -= value

	return applied, nil
}

// Disburse moves tokens out of the auction pool account to an auction
// winner. No fee is charged. The amount is bounded by the pool balance.
func (l *Ledger) Disburse(to account.AccountID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[AuctionAccount] < amount {
		return fmt.Errorf("auction pool %d, needed %d: %w", l.balances[AuctionAccount], amount, ErrInsufficientBalance)
	}

	l.debit(AuctionAccount, amount)
	l.credit(to, amount)

	return nil
}

// =============================================================================
// Owner-gated configuration

// CheckOwner validates the caller is the configured owner of the token.
func (l *Ledger) CheckOwner(caller account.AccountID) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if caller != l.stats.Owner {
		return fmt.Errorf("caller %s is not the owner %s: %w", caller, l.stats.Owner, ErrUnauthorized)
	}

	return nil
}

// SetName updates the token name.
func (l *Ledger) SetName(caller account.AccountID, name string) error {
	return l.updateStats(caller, func(s *Stats) { s.Name = name })
}

// SetLogo updates the token logo.
func (l *Ledger) SetLogo(caller account.AccountID, logo string) error {
	return l.updateStats(caller, func(s *Stats) { s.Logo = logo })
}

// SetFee updates the fee charged on value-moving operations. The new fee
// applies to operations executed after this call.
func (l *Ledger) SetFee(caller account.AccountID, fee uint64) error {
	return l.updateStats(caller, func(s *Stats) { s.Fee = fee })
}

// SetFeeTo updates the account receiving the owner share of fees.
func (l *Ledger) SetFeeTo(caller account.AccountID, feeTo account.AccountID) error {
	return l.updateStats(caller, func(s *Stats) { s.FeeTo = feeTo })
}

// SetOwner hands ownership of the token to another account.
func (l *Ledger) SetOwner(caller account.AccountID, owner account.AccountID) error {
	return l.updateStats(caller, func(s *Stats) { s.Owner = owner })
}

// ToggleTest flips the test-token mode and returns the new setting. While
// enabled, minting is not restricted to the owner.
func (l *Ledger) ToggleTest(caller account.AccountID) (bool, error) {
	var isTest bool
	err := l.updateStats(caller, func(s *Stats) {
		s.IsTestToken = !s.IsTestToken
		isTest = s.IsTestToken
	})

	return isTest, err
}

// updateStats applies an owner-gated mutation to the stats record.
func (l *Ledger) updateStats(caller account.AccountID, fn func(s *Stats)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.stats.Owner {
		return fmt.Errorf("caller %s is not the owner %s: %w", caller, l.stats.Owner, ErrUnauthorized)
	}

	fn(&l.stats)

	return nil
}

// =============================================================================
// Queries

// Stats returns a copy of the current configuration and metadata.
func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.stats
}

// Metadata returns the client-facing subset of the stats.
func (l *Ledger) Metadata() Metadata {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return Metadata{
		Name:        l.stats.Name,
		Symbol:      l.stats.Symbol,
		Decimals:    l.stats.Decimals,
		Logo:        l.stats.Logo,
		Owner:       l.stats.Owner,
		Fee:         l.stats.Fee,
		FeeTo:       l.stats.FeeTo,
		TotalSupply: l.stats.TotalSupply,
		IsTestToken: l.stats.IsTestToken,
	}
}

// TotalSupply returns the current total supply of the token.
func (l *Ledger) TotalSupply() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.stats.TotalSupply
}

// BalanceOf returns the balance held by the specified account.
func (l *Ledger) BalanceOf(who account.AccountID) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.balances[who]
}

// Allowance returns the amount the spender may currently move out of the
// owner's balance.
func (l *Ledger) Allowance(owner account.AccountID, spender account.AccountID) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.allowances[owner][spender]
}

// AllowanceSize returns the total number of live allowance entries.
func (l *Ledger) AllowanceSize() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var size int
	for _, spenders := range l.allowances {
		size += len(spenders)
	}

	return size
}

// Holder represents one account and its balance in a holder listing.
type Holder struct {
	Account account.AccountID `json:"account"`
	Balance uint64            `json:"balance"`
}

// HolderCount returns the number of accounts holding a non-zero balance.
func (l *Ledger) HolderCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var count int
	for _, balance := range l.balances {
		if balance > 0 {
			count++
		}
	}

	return count
}

// Holders returns a page of accounts with non-zero balances, sorted by
// account id in ascending order.
func (l *Ledger) Holders(start int, limit int) []Holder {
	l.mu.RLock()

	holders := make([]Holder, 0, len(l.balances))
	for accountID, balance := range l.balances {
		if balance > 0 {
			holders = append(holders, Holder{Account: accountID, Balance: balance})
		}
	}

	l.mu.RUnlock()

	sort.Slice(holders, func(i, j int) bool { return holders[i].Account < holders[j].Account })

	if start >= len(holders) {
		return nil
	}
	if end := start + limit; end < len(holders) {
		holders = holders[:end]
	}

	return holders[start:]
}

// Approval represents one spender and the amount approved to it.
type Approval struct {
	Spender account.AccountID `json:"spender"`
	Amount  uint64            `json:"amount"`
}

// UserApprovals returns the live approvals granted by the specified account,
// sorted by spender.
func (l *Ledger) UserApprovals(owner account.AccountID) []Approval {
	l.mu.RLock()

	approvals := make([]Approval, 0, len(l.allowances[owner]))
	for spender, amount := range l.allowances[owner] {
		approvals = append(approvals, Approval{Spender: spender, Amount: amount})
	}

	l.mu.RUnlock()

	sort.Slice(approvals, func(i, j int) bool { return approvals[i].Spender < approvals[j].Spender })

	return approvals
}

// =============================================================================

// debit removes amount from the account, pruning zero balances.
func (l *Ledger) debit(who account.AccountID, amount uint64) {
	if balance := l.balances[who] - amount; balance > 0 {
		l.balances[who] = balance
		return
	}
	delete(l.balances, who)
}

// credit adds amount to the account. Balances sum to the total supply and
// every credited amount is bounded by it, so the add cannot wrap.
func (l *Ledger) credit(who account.AccountID, amount uint64) {
	if amount == 0 {
		return
	}
	l.balances[who] += amount
}

// chargeFee splits a collected fee between the auction pool and the
// fee-receiver. The auction share is floor(fee * ratio) using the ratio set
// by the last auction; the remainder goes to the fee-receiver.
func (l *Ledger) chargeFee(fee uint64) {
	if fee == 0 {
		return
	}

	var share uint64
	if l.router != nil {
		share = uint64(float64(fee) * l.router.FeeRatio())
		if share > fee {
			share = fee
		}
	}

	l.credit(AuctionAccount, share)
	l.credit(l.stats.FeeTo, fee-share)

	if l.router != nil && share > 0 {
		l.router.RecordFee(share)
	}
}

// sumNoWrap adds two amounts, reporting whether the sum fits in a uint64.
func sumNoWrap(a uint64, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

// setAllowance records the allowance, pruning zero entries so the allowance
// size reflects only live approvals.
func (l *Ledger) setAllowance(owner account.AccountID, spender account.AccountID, value uint64) {
	if value == 0 {
		if spenders := l.allowances[owner]; spenders != nil {
			delete(spenders, spender)
			if len(spenders) == 0 {
				delete(l.allowances, owner)
			}
		}
		return
	}

	if l.allowances[owner] == nil {
		l.allowances[owner] = make(map[account.AccountID]uint64)
	}
	l.allowances[owner][spender] = value
}
