package state

import (
	"time"

	"github.com/ardanlabs/tokenledger/foundation/token/account"
	"github.com/ardanlabs/tokenledger/foundation/token/auction"
)

// BidCycles accepts a cycle bid from the specified bidder for the next
// auction and returns the bidder's running cycle total for this window.
func (s *State) BidCycles(bidder account.AccountID, cycles uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total, err := s.engine.BidCycles(bidder, cycles)
	if err != nil {
		return 0, err
	}

	s.evHandler("state: bid: bidder[%s] cycles[%d] total[%d]", bidder, cycles, total)

	return total, nil
}

// RunAuction closes the current auction window, distributing the accumulated
// fees to bidders in proportion to their cycle contributions. Any caller can
// trigger it once the auction period has elapsed.
func (s *State) RunAuction() (auction.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := s.engine.Run(time.Now().UTC())
	if err != nil {
		return auction.Info{}, err
	}

	s.evHandler("state: auction: id[%d] distributed[%d] cycles[%d] ratio[%f]", info.ID, info.TokensDistributed, info.CyclesCollected, info.FeeRatio)

	return info, nil
}

// AuctionInfo returns the information about a previously held auction.
func (s *State) AuctionInfo(id uint64) (auction.Info, error) {
	return s.engine.AuctionInfo(id)
}

// BiddingInfo returns a snapshot of the current auction accumulators.
func (s *State) BiddingInfo() auction.BiddingInfo {
	return s.engine.BiddingInfo()
}

// MinCycles returns the minimum cycle reserve configured for the token.
func (s *State) MinCycles() uint64 {
	return s.engine.MinCycles()
}

// SetMinCycles updates the minimum cycle reserve. Owner only.
func (s *State) SetMinCycles(caller account.AccountID, minCycles uint64) error {
	if err := s.ledger.CheckOwner(caller); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.SetMinCycles(minCycles)

	return nil
}

// SetAuctionPeriod updates the minimum time between two auctions. Owner only.
func (s *State) SetAuctionPeriod(caller account.AccountID, period time.Duration) error {
	if err := s.ledger.CheckOwner(caller); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.SetPeriod(period)

	return nil
}
