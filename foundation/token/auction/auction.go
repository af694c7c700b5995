// Package auction implements the cycle auction that funds the token's own
// hosting costs. Fees routed from the ledger accumulate between auctions and
// are periodically distributed to bidders in proportion to the cycles they
// supplied.
package auction

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/ardanlabs/tokenledger/foundation/token/account"
)

// MinBidCycles is the smallest amount of cycles a single bid can supply.
const MinBidCycles = 1_000_000

// DefaultPeriod is the minimum time between two auctions unless configured
// otherwise.
const DefaultPeriod = 24 * time.Hour

// Set of typed errors the auction operations can return.
var (
	ErrTooEarly        = errors.New("auction period has not elapsed")
	ErrNoBids          = errors.New("no bids for this auction")
	ErrNotFound        = errors.New("auction not found")
	ErrBiddingTooSmall = errors.New("bidding too small")
)

// CycleBank interface represents the host-provided cycle accounting. Cycles
// supplied with a bid are accepted into the bank and the current balance is
// the reserve the fee ratio is computed from.
type CycleBank interface {
	Balance() uint64
	Accept(cycles uint64) uint64
}

// Distributor interface represents the behavior required to move tokens out
// of the auction pool to an auction winner.
type Distributor interface {
	Disburse(to account.AccountID, amount uint64) error
}

// Recorder interface represents the behavior required to record auction
// distributions in the transaction log.
type Recorder interface {
	Size() uint64
	AppendAuction(to account.AccountID, amount uint64) (uint64, error)
}

// =============================================================================

// Info is the historical record of one held auction. It is immutable once
// created.
type Info struct {
	ID                uint64    `json:"auction_id"`
	Time              time.Time `json:"auction_time"`
	FirstIndex        uint64    `json:"first_transaction_id"`
	LastIndex         uint64    `json:"last_transaction_id"`
	TokensDistributed uint64    `json:"tokens_distributed"`
	CyclesCollected   uint64    `json:"cycles_collected"`
	FeeRatio          float64   `json:"fee_ratio"`
}

// BiddingInfo is a read-only snapshot of the accumulators for the auction
// currently being bid on.
type BiddingInfo struct {
	FeeRatio        float64       `json:"fee_ratio"`
	AccumulatedFees uint64        `json:"accumulated_fees"`
	TotalCyclesBid  uint64        `json:"total_cycles_bid"`
	NumBidders      int           `json:"num_bidders"`
	LastAuction     time.Time     `json:"last_auction"`
	AuctionPeriod   time.Duration `json:"auction_period"`
}

// =============================================================================

// Engine manages the bidding accumulators, the auction history and the fee
// ratio curve.
type Engine struct {
	mu sync.RWMutex

	minCycles uint64
	period    time.Duration
	feeRatio  float64

	accumulatedFees uint64
	totalCycles     uint64
	bids            map[account.AccountID]uint64
	lastAuction     time.Time
	firstIndex      uint64

	history []Info

	bank        CycleBank
	distributor Distributor
	recorder    Recorder
}

// Config represents the configuration required to construct the engine.
type Config struct {
	MinCycles uint64
	Period    time.Duration
	Bank      CycleBank
}

// New constructs an auction engine. The fee ratio starts at zero so all fees
// go to the fee-receiver until the first auction establishes a ratio.
func New(cfg Config) *Engine {
	period := cfg.Period
	if period <= 0 {
		period = DefaultPeriod
	}

	return &Engine{
		minCycles:   cfg.MinCycles,
		period:      period,
		bids:        make(map[account.AccountID]uint64),
		lastAuction: time.Now().UTC(),
		bank:        cfg.Bank,
	}
}

// Bind connects the engine to its payout dependencies. The engine is
// constructed before the ledger and the transaction log exist, so those are
// bound here before the first bid is accepted.
func (e *Engine) Bind(distributor Distributor, recorder Recorder) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.distributor = distributor
	e.recorder = recorder
}

// =============================================================================
// FeeRouter implementation used by the ledger.

// FeeRatio returns the fraction of collected fees routed to auction
// participants, as set by the last auction close.
func (e *Engine) FeeRatio() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.feeRatio
}

// RecordFee adds a collected fee share to the accumulated fees pool.
func (e *Engine) RecordFee(amount uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.accumulatedFees += amount
}

// =============================================================================

// BidCycles accepts a cycle bid for the next auction. The cycles are taken
// into the bank and credited to the bidder's contribution for this auction
// window. The bidder's new running cycle total is returned.
func (e *Engine) BidCycles(bidder account.AccountID, cycles uint64) (uint64, error) {
	if cycles < MinBidCycles {
		return 0, fmt.Errorf("bid %d is below the minimum %d: %w", cycles, uint64(MinBidCycles), ErrBiddingTooSmall)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.bank.Accept(cycles)
	e.totalCycles += cycles
	e.bids[bidder] += cycles

	return e.bids[bidder], nil
}

// Run closes the current auction window. The accumulated fees are
// distributed to bidders in proportion to their cycle contributions using
// truncating integer division; any undistributed remainder stays in the
// auction pool and rolls into the next auction. The accumulators are zeroed,
// the fee ratio is recomputed from the current cycle reserve, and an Info
// snapshot is appended to the history.
func (e *Engine) Run(now time.Time) (Info, error) {

	// Validate and capture the window under lock. The accumulators are
	// zeroed here so fees and bids arriving during the payout below belong
	// to the next auction.
	e.mu.Lock()

	if now.Sub(e.lastAuction) < e.period {
		e.mu.Unlock()
		return Info{}, fmt.Errorf("last auction was %v ago, period is %v: %w", now.Sub(e.lastAuction), e.period, ErrTooEarly)
	}

	if e.totalCycles == 0 {
		e.mu.Unlock()
		return Info{}, ErrNoBids
	}

	pool := e.accumulatedFees
	totalCycles := e.totalCycles
	bids := e.bids
	firstIndex := e.firstIndex
	prevAuction := e.lastAuction

	// The window of transactions whose fees fund this auction ends at the
	// current tail of the log.
	lastIndex := firstIndex
	if size := e.recorder.Size(); size > firstIndex {
		lastIndex = size - 1
	}

	e.accumulatedFees = 0
	e.totalCycles = 0
	e.bids = make(map[account.AccountID]uint64)
	e.lastAuction = now
	e.feeRatio = feeRatio(e.bank.Balance(), e.minCycles)
	ratio := e.feeRatio

	e.mu.Unlock()

	// Stage the payout plan in account order so the produced records are
	// deterministic and a failure below knows which bids are still unpaid.
	plan := make([]payout, 0, len(bids))
	for bidder := range bids {
		plan = append(plan, payout{bidder: bidder, cycles: bids[bidder], amount: share(pool, bids[bidder], totalCycles)})
	}
	sort.Slice(plan, func(i, j int) bool { return plan[i].bidder < plan[j].bidder })

	var distributed uint64
	for i, p := range plan {
		if p.amount == 0 {
			continue
		}

		if err := e.distributor.Disburse(p.bidder, p.amount); err != nil {
			e.restore(plan[i:], pool-distributed, prevAuction)
			return Info{}, fmt.Errorf("disburse %d to %s: %w", p.amount, p.bidder, err)
		}

		distributed += p.amount

		if _, err := e.recorder.AppendAuction(p.bidder, p.amount); err != nil {
			e.restore(plan[i+1:], pool-distributed, prevAuction)
			return Info{}, fmt.Errorf("record distribution to %s: %w", p.bidder, err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	info := Info{
		ID:                uint64(len(e.history)),
		Time:              now,
		FirstIndex:        firstIndex,
		LastIndex:         lastIndex,
		TokensDistributed: distributed,
		CyclesCollected:   totalCycles,
		FeeRatio:          ratio,
	}
	e.history = append(e.history, info)
	e.firstIndex = e.recorder.Size()

	return info, nil
}

// payout is one staged distribution of the auction pool to a bidder.
type payout struct {
	bidder account.AccountID
	cycles uint64
	amount uint64
}

// restore puts unpaid bids and the undistributed fee share back into the
// accumulators after a failed payout, so they roll into the next auction
// instead of being lost. The auction clock is wound back so a retry does not
// have to wait out another period.
func (e *Engine) restore(unpaid []payout, fees uint64, prevAuction time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, p := range unpaid {
		e.bids[p.bidder] += p.cycles
		e.totalCycles += p.cycles
	}
	e.accumulatedFees += fees
	e.lastAuction = prevAuction
}

// AuctionInfo returns the information about a previously held auction.
func (e *Engine) AuctionInfo(id uint64) (Info, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if id >= uint64(len(e.history)) {
		return Info{}, fmt.Errorf("auction %d: %w", id, ErrNotFound)
	}

	return e.history[id], nil
}

// BiddingInfo returns a read-only snapshot of the current accumulators.
func (e *Engine) BiddingInfo() BiddingInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return BiddingInfo{
		FeeRatio:        e.feeRatio,
		AccumulatedFees: e.accumulatedFees,
		TotalCyclesBid:  e.totalCycles,
		NumBidders:      len(e.bids),
		LastAuction:     e.lastAuction,
		AuctionPeriod:   e.period,
	}
}

// MinCycles returns the configured minimum cycle reserve.
func (e *Engine) MinCycles() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.minCycles
}

// SetMinCycles updates the minimum cycle reserve the fee ratio curve is
// anchored to. The caller is responsible for owner gating.
func (e *Engine) SetMinCycles(minCycles uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.minCycles = minCycles
}

// SetPeriod updates the minimum time between two auctions. The caller is
// responsible for owner gating.
func (e *Engine) SetPeriod(period time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.period = period
}

// =============================================================================

// feeRatio computes the fraction of fees routed to auction participants from
// the current cycle reserve. The curve is 1.0 at or below the minimum
// reserve and decays exponentially as the reserve grows: exp(1 - reserve/min).
func feeRatio(reserve uint64, minCycles uint64) float64 {
	if minCycles == 0 {
		return 0
	}
	if reserve <= minCycles {
		return 1.0
	}

	return math.Exp(1 - float64(reserve)/float64(minCycles))
}

// share computes pool * cycles / totalCycles without intermediate overflow,
// truncating toward zero.
func share(pool uint64, cycles uint64, totalCycles uint64) uint64 {
	amount := new(big.Int).SetUint64(pool)
	amount.Mul(amount, new(big.Int).SetUint64(cycles))
	amount.Div(amount, new(big.Int).SetUint64(totalCycles))

	return amount.Uint64()
}
