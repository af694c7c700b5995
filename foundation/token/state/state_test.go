package state_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ardanlabs/tokenledger/foundation/token/account"
	"github.com/ardanlabs/tokenledger/foundation/token/auction"
	"github.com/ardanlabs/tokenledger/foundation/token/genesis"
	"github.com/ardanlabs/tokenledger/foundation/token/ledger"
	"github.com/ardanlabs/tokenledger/foundation/token/notify"
	"github.com/ardanlabs/tokenledger/foundation/token/peer"
	"github.com/ardanlabs/tokenledger/foundation/token/state"
	"github.com/ardanlabs/tokenledger/foundation/token/txlog"
	"github.com/ardanlabs/tokenledger/foundation/token/txlog/storage"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const (
	ownerHex = "0x6Fe6CF3c8fF57c58d24BfC869668F48BCbDb3BD9"
	aliceHex = "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"
	bobHex   = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
	feeToHex = "0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76"
)

var (
	owner = account.AccountID(ownerHex)
	alice = account.AccountID(aliceHex)
	bob   = account.AccountID(bobHex)
	feeTo = account.AccountID(feeToHex)
)

// sender implements the notify.Sender interface for testing.
type sender struct {
	calls int
	err   error
}

func (s *sender) Send(ctx context.Context, to account.AccountID, n notify.Notification) error {
	s.calls++
	return s.err
}

func newState(t *testing.T, snd notify.Sender) *state.State {
	t.Helper()

	gen := genesis.Genesis{
		Name:        "Ardan Token",
		Symbol:      "ARD",
		Decimals:    8,
		TotalSupply: 100_000,
		Owner:       ownerHex,
		Fee:         10,
		FeeTo:       feeToHex,
		MinCycles:   1_000_000_000_000,
		Balances: map[string]uint64{
			aliceHex: 1_000,
			bobHex:   1_000,
		},
	}

	s, err := state.New(state.Config{
		Genesis:    gen,
		TokenID:    owner,
		Serializer: storage.NewMemory(),
		Sender:     snd,
		Bank:       auction.NewBank(0),
		Registry:   peer.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}

	return s
}

func TestGenesisMint(t *testing.T) {
	t.Log("Given the need to validate a fresh deployment logs the genesis mint.")
	{
		s := newState(t, &sender{})

		if size := s.HistorySize(); size != 1 {
			t.Fatalf("\t%s\tShould start with one record, got %d.", failed, size)
		}

		rec, err := s.Transaction(0)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to get record 0: %v", failed, err)
		}
		if rec.Kind != txlog.KindMint || rec.Amount != 100_000 {
			t.Fatalf("\t%s\tShould log the genesis mint, got %+v.", failed, rec)
		}
		t.Logf("\t%s\tShould log the genesis mint at index 0.", success)

		if bal := s.BalanceOf(owner); bal != 98_000 {
			t.Fatalf("\t%s\tShould leave the owner with the uncarved supply, got %d.", failed, bal)
		}
		t.Logf("\t%s\tShould carve the genesis balances out of the supply.", success)
	}
}

func TestTransferRoundTrip(t *testing.T) {
	t.Log("Given the need to validate each operation yields a retrievable record.")
	{
		s := newState(t, &sender{})

		index, err := s.Transfer(alice, bob, 100, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to transfer: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to transfer.", success)

		rec, err := s.Transaction(index)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to retrieve the record: %v", failed, err)
		}
		if rec.From != alice || rec.To != bob || rec.Amount != 100 || rec.Fee != 10 || rec.Status != txlog.StatusSucceeded {
			t.Fatalf("\t%s\tShould match the operation's effective amounts, got %+v.", failed, rec)
		}
		t.Logf("\t%s\tShould match the operation's effective amounts.", success)

		if bal := s.BalanceOf(alice); bal != 890 {
			t.Fatalf("\t%s\tShould leave the sender with 890, got %d.", failed, bal)
		}
		if bal := s.BalanceOf(feeTo); bal != 10 {
			t.Fatalf("\t%s\tShould route the whole fee to the fee-receiver before any auction, got %d.", failed, bal)
		}
		t.Logf("\t%s\tShould route the whole fee to the fee-receiver before any auction.", success)
	}
}

func TestFailedOperationRecorded(t *testing.T) {
	t.Log("Given the need to validate recorded failures and silent validations.")
	{
		s := newState(t, &sender{})
		before := s.HistorySize()

		if _, err := s.Transfer(alice, bob, 10_000, nil); !errors.Is(err, ledger.ErrInsufficientBalance) {
			t.Fatalf("\t%s\tShould fail with ErrInsufficientBalance: %v", failed, err)
		}

		if size := s.HistorySize(); size != before+1 {
			t.Fatalf("\t%s\tShould log the failed attempt, size %d.", failed, size)
		}

		rec, err := s.Transaction(before)
		if err != nil || rec.Status != txlog.StatusFailed {
			t.Fatalf("\t%s\tShould log the attempt with a Failed status, got %+v.", failed, rec)
		}
		t.Logf("\t%s\tShould log balance failures with a Failed status.", success)

		if _, err := s.Mint(alice, alice, 100); !errors.Is(err, ledger.ErrUnauthorized) {
			t.Fatalf("\t%s\tShould fail with ErrUnauthorized: %v", failed, err)
		}
		if size := s.HistorySize(); size != before+1 {
			t.Fatalf("\t%s\tShould not log pure validation failures, size %d.", failed, size)
		}
		t.Logf("\t%s\tShould not log pure validation failures.", success)
	}
}

func TestTransferAndNotify(t *testing.T) {
	t.Log("Given the need to validate notification failures never undo transfers.")
	{
		snd := sender{err: errors.New("remote unavailable")}
		s := newState(t, &snd)

		index, err := s.TransferAndNotify(context.Background(), alice, bob, 100, nil)
		if !errors.Is(err, notify.ErrNotificationFailed) {
			t.Fatalf("\t%s\tShould surface the notification failure: %v", failed, err)
		}
		t.Logf("\t%s\tShould surface the notification failure.", success)

		if bal := s.BalanceOf(bob); bal != 1_100 {
			t.Fatalf("\t%s\tShould keep the transfer applied, got %d.", failed, bal)
		}
		t.Logf("\t%s\tShould keep the transfer applied.", success)

		snd.err = nil
		if _, err := s.Notify(context.Background(), index); err != nil {
			t.Fatalf("\t%s\tShould be able to retry the notification: %v", failed, err)
		}
		if status := s.NotificationStatus(index); status != notify.StatusNotified {
			t.Fatalf("\t%s\tShould settle the status at Notified, got %s.", failed, status)
		}
		t.Logf("\t%s\tShould be able to retry the notification.", success)

		if _, err := s.Notify(context.Background(), index); !errors.Is(err, notify.ErrAlreadyNotified) {
			t.Fatalf("\t%s\tShould reject another notify: %v", failed, err)
		}
		if _, err := s.Notify(context.Background(), 1_000); !errors.Is(err, notify.ErrTxDoesNotExist) {
			t.Fatalf("\t%s\tShould reject an unknown transaction: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject duplicates and unknown transactions.", success)
	}
}

func TestAuctionEndToEnd(t *testing.T) {
	t.Log("Given the need to validate the full fee collection and auction cycle.")
	{
		s := newState(t, &sender{})

		if err := s.SetAuctionPeriod(owner, 0); err != nil {
			t.Fatalf("\t%s\tShould be able to zero the auction period: %v", failed, err)
		}

		// Establish a fee ratio. The reserve stays below the minimum, so the
		// first auction pins the ratio at 1.0.
		if _, err := s.BidCycles(alice, 1_000_000); err != nil {
			t.Fatalf("\t%s\tShould be able to bid: %v", failed, err)
		}
		if _, err := s.RunAuction(); err != nil {
			t.Fatalf("\t%s\tShould be able to run the first auction: %v", failed, err)
		}
		if ratio := s.BiddingInfo().FeeRatio; ratio != 1.0 {
			t.Fatalf("\t%s\tShould pin the fee ratio at 1.0 below the minimum reserve, got %f.", failed, ratio)
		}
		t.Logf("\t%s\tShould establish a fee ratio with the first auction.", success)

		// With ratio 1.0, the fees of these transfers accumulate in full.
		s.Transfer(alice, bob, 100, nil)
		s.Transfer(bob, alice, 100, nil)

		if fees := s.BiddingInfo().AccumulatedFees; fees != 20 {
			t.Fatalf("\t%s\tShould accumulate both fees, got %d.", failed, fees)
		}
		t.Logf("\t%s\tShould accumulate the fees for the next auction.", success)

		s.BidCycles(alice, 3_000_000)
		s.BidCycles(bob, 7_000_000)

		sizeBefore := s.HistorySize()
		info, err := s.RunAuction()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to run the second auction: %v", failed, err)
		}

		if info.TokensDistributed != 20 || info.CyclesCollected != 10_000_000 {
			t.Fatalf("\t%s\tShould distribute the accumulated fees, got %+v.", failed, info)
		}
		if bal := s.BalanceOf(alice); bal != 1_000-110+100+6 {
			t.Fatalf("\t%s\tShould credit alice with her 30%% share, got %d.", failed, bal)
		}
		if bal := s.BalanceOf(bob); bal != 1_000+100-110+14 {
			t.Fatalf("\t%s\tShould credit bob with his 70%% share, got %d.", failed, bal)
		}
		t.Logf("\t%s\tShould distribute the pool in proportion to the bids.", success)

		recs, err := s.Transactions(sizeBefore, 10)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to read the distribution records: %v", failed, err)
		}
		if len(recs) != 2 || recs[0].Kind != txlog.KindAuction || recs[1].Kind != txlog.KindAuction {
			t.Fatalf("\t%s\tShould log one Auction record per distribution, got %d.", failed, len(recs))
		}
		t.Logf("\t%s\tShould log one Auction record per distribution.", success)

		got, err := s.AuctionInfo(info.ID)
		if err != nil || got.ID != info.ID {
			t.Fatalf("\t%s\tShould retain the auction info: %v", failed, err)
		}
		t.Logf("\t%s\tShould retain the auction info.", success)
	}
}

func TestOwnerGates(t *testing.T) {
	t.Log("Given the need to validate owner-only configuration.")
	{
		s := newState(t, &sender{})

		if err := s.SetFee(alice, 5); !errors.Is(err, ledger.ErrUnauthorized) {
			t.Fatalf("\t%s\tShould reject a non-owner setting the fee: %v", failed, err)
		}
		if err := s.SetMinCycles(alice, 1); !errors.Is(err, ledger.ErrUnauthorized) {
			t.Fatalf("\t%s\tShould reject a non-owner setting min cycles: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject non-owner configuration changes.", success)

		if err := s.SetFee(owner, 5); err != nil {
			t.Fatalf("\t%s\tShould allow the owner to set the fee: %v", failed, err)
		}
		if fee := s.Metadata().Fee; fee != 5 {
			t.Fatalf("\t%s\tShould apply the new fee, got %d.", failed, fee)
		}
		t.Logf("\t%s\tShould allow the owner to change the configuration.", success)

		if err := s.SetOwner(owner, alice); err != nil {
			t.Fatalf("\t%s\tShould allow the owner to hand over ownership: %v", failed, err)
		}
		if err := s.SetFee(owner, 10); !errors.Is(err, ledger.ErrUnauthorized) {
			t.Fatalf("\t%s\tShould reject the previous owner afterwards: %v", failed, err)
		}
		t.Logf("\t%s\tShould transfer ownership.", success)
	}
}
