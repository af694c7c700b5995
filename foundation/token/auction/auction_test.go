package auction_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ardanlabs/tokenledger/foundation/token/account"
	"github.com/ardanlabs/tokenledger/foundation/token/auction"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

var (
	alice = account.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
	bob   = account.AccountID("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")
)

// payouts implements the auction.Distributor and auction.Recorder interfaces
// and captures the distributions an auction makes. Disbursements to the
// failFor account are rejected.
type payouts struct {
	size    uint64
	amount  map[account.AccountID]uint64
	failFor account.AccountID
}

func newPayouts() *payouts {
	return &payouts{amount: make(map[account.AccountID]uint64)}
}

func (p *payouts) Disburse(to account.AccountID, amount uint64) error {
	if p.failFor != "" && to == p.failFor {
		return errors.New("disburse rejected")
	}

	p.amount[to] += amount
	return nil
}

func (p *payouts) Size() uint64 {
	return p.size
}

func (p *payouts) AppendAuction(to account.AccountID, amount uint64) (uint64, error) {
	index := p.size
	p.size++
	return index, nil
}

func newEngine(minCycles uint64, bankBalance uint64) (*auction.Engine, *payouts) {
	p := newPayouts()

	e := auction.New(auction.Config{
		MinCycles: minCycles,
		Period:    time.Hour,
		Bank:      auction.NewBank(bankBalance),
	})
	e.Bind(p, p)

	return e, p
}

func TestBidCycles(t *testing.T) {
	t.Log("Given the need to validate cycle bids are bounded and accumulated.")
	{
		e, _ := newEngine(1_000_000, 0)

		if _, err := e.BidCycles(alice, 999_999); !errors.Is(err, auction.ErrBiddingTooSmall) {
			t.Fatalf("\t%s\tShould reject a bid below the minimum: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a bid below the minimum.", success)

		total, err := e.BidCycles(alice, 1_000_000)
		if err != nil {
			t.Fatalf("\t%s\tShould accept a minimum bid: %v", failed, err)
		}
		if total != 1_000_000 {
			t.Fatalf("\t%s\tShould return the running total 1000000, got %d.", failed, total)
		}

		total, err = e.BidCycles(alice, 2_000_000)
		if err != nil {
			t.Fatalf("\t%s\tShould accept a repeat bid: %v", failed, err)
		}
		if total != 3_000_000 {
			t.Fatalf("\t%s\tShould accumulate the bidder total to 3000000, got %d.", failed, total)
		}
		t.Logf("\t%s\tShould accumulate repeat bids for the same bidder.", success)

		info := e.BiddingInfo()
		if info.TotalCyclesBid != 3_000_000 || info.NumBidders != 1 {
			t.Fatalf("\t%s\tShould snapshot the accumulators, got %+v.", failed, info)
		}
		t.Logf("\t%s\tShould snapshot the accumulators.", success)
	}
}

func TestRunAuction(t *testing.T) {
	t.Log("Given the need to validate the proportional fee distribution.")
	{
		e, p := newEngine(1_000_000_000, 2_000_000_000)
		e.SetPeriod(0)

		e.BidCycles(alice, 3_000_000)
		e.BidCycles(bob, 7_000_000)
		e.RecordFee(100)

		info, err := e.Run(time.Now())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to run the auction: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to run the auction.", success)

		if p.amount[alice] != 30 || p.amount[bob] != 70 {
			t.Fatalf("\t%s\tShould distribute 30/70, got %d/%d.", failed, p.amount[alice], p.amount[bob])
		}
		if info.TokensDistributed != 100 || info.CyclesCollected != 10_000_000 {
			t.Fatalf("\t%s\tShould report the distribution totals, got %+v.", failed, info)
		}
		t.Logf("\t%s\tShould distribute the fees in proportion to the cycle bids.", success)

		bidding := e.BiddingInfo()
		if bidding.AccumulatedFees != 0 || bidding.TotalCyclesBid != 0 || bidding.NumBidders != 0 {
			t.Fatalf("\t%s\tShould zero the accumulators, got %+v.", failed, bidding)
		}
		t.Logf("\t%s\tShould zero the accumulators.", success)

		if bidding.FeeRatio <= 0 || bidding.FeeRatio >= 1 {
			t.Fatalf("\t%s\tShould recompute a fee ratio in (0,1) for a reserve above the minimum, got %f.", failed, bidding.FeeRatio)
		}
		t.Logf("\t%s\tShould recompute the fee ratio from the reserve.", success)

		got, err := e.AuctionInfo(info.ID)
		if err != nil || got != info {
			t.Fatalf("\t%s\tShould retain the auction in the history: %v", failed, err)
		}
		if _, err := e.AuctionInfo(info.ID + 1); !errors.Is(err, auction.ErrNotFound) {
			t.Fatalf("\t%s\tShould fail with ErrNotFound for an unknown auction: %v", failed, err)
		}
		t.Logf("\t%s\tShould retain the auction history.", success)
	}
}

func TestRunAuctionTruncation(t *testing.T) {
	t.Log("Given the need to validate the truncating division leaves the remainder pooled.")
	{
		e, p := newEngine(1_000_000, 0)
		e.SetPeriod(0)

		e.BidCycles(alice, 1_000_000)
		e.BidCycles(bob, 2_000_000)
		e.RecordFee(100)

		info, err := e.Run(time.Now())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to run the auction: %v", failed, err)
		}

		// 100*1/3 truncates to 33, 100*2/3 truncates to 66. The remaining
		// token stays in the pool for the next auction.
		if p.amount[alice] != 33 || p.amount[bob] != 66 {
			t.Fatalf("\t%s\tShould truncate per-bidder shares, got %d/%d.", failed, p.amount[alice], p.amount[bob])
		}
		if info.TokensDistributed != 99 {
			t.Fatalf("\t%s\tShould report 99 tokens distributed, got %d.", failed, info.TokensDistributed)
		}
		t.Logf("\t%s\tShould truncate per-bidder shares and pool the remainder.", success)
	}
}

func TestRunAuctionGuards(t *testing.T) {
	t.Log("Given the need to validate the auction guards.")
	{
		t.Logf("\tTest 0:\tWhen the auction period has not elapsed.")
		{
			e, _ := newEngine(1_000_000, 0)

			e.BidCycles(alice, 5_000_000)
			e.RecordFee(50)

			if _, err := e.Run(time.Now()); !errors.Is(err, auction.ErrTooEarly) {
				t.Fatalf("\t%s\tTest 0:\tShould fail with ErrTooEarly: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould fail with ErrTooEarly.", success)

			info := e.BiddingInfo()
			if info.AccumulatedFees != 50 || info.TotalCyclesBid != 5_000_000 {
				t.Fatalf("\t%s\tTest 0:\tShould leave the accumulators unchanged, got %+v.", failed, info)
			}
			t.Logf("\t%s\tTest 0:\tShould leave the accumulators unchanged.", success)
		}

		t.Logf("\tTest 1:\tWhen no bids were made.")
		{
			e, _ := newEngine(1_000_000, 0)
			e.SetPeriod(0)

			e.RecordFee(50)

			if _, err := e.Run(time.Now()); !errors.Is(err, auction.ErrNoBids) {
				t.Fatalf("\t%s\tTest 1:\tShould fail with ErrNoBids: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould fail with ErrNoBids.", success)
		}
	}
}

func TestRunAuctionPayoutFailure(t *testing.T) {
	t.Log("Given the need to validate unpaid bids survive a failed payout.")
	{
		e, p := newEngine(1_000_000_000, 2_000_000_000)
		e.SetPeriod(0)

		e.BidCycles(alice, 3_000_000)
		e.BidCycles(bob, 7_000_000)
		e.RecordFee(100)

		// The payout runs in account order, so alice is paid before the
		// disbursement to bob is rejected.
		p.failFor = bob

		if _, err := e.Run(time.Now()); err == nil {
			t.Fatalf("\t%s\tShould fail when a disbursement is rejected.", failed)
		}
		t.Logf("\t%s\tShould fail when a disbursement is rejected.", success)

		if p.amount[alice] != 30 || p.amount[bob] != 0 {
			t.Fatalf("\t%s\tShould pay bidders before the failure, got %d/%d.", failed, p.amount[alice], p.amount[bob])
		}
		t.Logf("\t%s\tShould pay the bidders before the failure.", success)

		info := e.BiddingInfo()
		if info.AccumulatedFees != 70 {
			t.Fatalf("\t%s\tShould restore the undistributed fees 70, got %d.", failed, info.AccumulatedFees)
		}
		if info.TotalCyclesBid != 7_000_000 || info.NumBidders != 1 {
			t.Fatalf("\t%s\tShould restore the unpaid bid, got %+v.", failed, info)
		}
		t.Logf("\t%s\tShould restore the unpaid bid and fees.", success)

		p.failFor = ""

		retry, err := e.Run(time.Now())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to run again right away: %v", failed, err)
		}
		if p.amount[bob] != 70 || retry.TokensDistributed != 70 {
			t.Fatalf("\t%s\tShould pay the restored bid on the retry, got %d.", failed, p.amount[bob])
		}
		t.Logf("\t%s\tShould pay the restored bid on the retry.", success)
	}
}

func TestFeeRatioCurve(t *testing.T) {
	t.Log("Given the need to validate the fee ratio curve against the reserve.")
	{
		const minCycles = 1_000_000

		run := func(bankBalance uint64) float64 {
			t.Helper()

			e, _ := newEngine(minCycles, bankBalance)
			e.SetPeriod(0)
			e.BidCycles(alice, 1_000_000)

			if _, err := e.Run(time.Now()); err != nil {
				t.Fatalf("\t%s\tShould be able to run the auction: %v", failed, err)
			}

			return e.FeeRatio()
		}

		// The bid itself adds 1_000_000 cycles to the reserve before the
		// ratio is recomputed.
		if ratio := run(0); ratio != 1.0 {
			t.Fatalf("\t%s\tShould pin the ratio at 1.0 at or below the minimum reserve, got %f.", failed, ratio)
		}
		t.Logf("\t%s\tShould pin the ratio at 1.0 at or below the minimum reserve.", success)

		low := run(4_000_000)
		high := run(1_000_000)
		if high <= low {
			t.Fatalf("\t%s\tShould decay as the reserve grows, got %f then %f.", failed, high, low)
		}
		if low <= 0 || high >= 1 {
			t.Fatalf("\t%s\tShould stay inside (0,1) above the minimum reserve, got %f and %f.", failed, low, high)
		}
		t.Logf("\t%s\tShould decay monotonically toward zero as the reserve grows.", success)
	}
}
