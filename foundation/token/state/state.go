// Package state is the core API for the token and wires the ledger, the
// transaction log, the notifier and the auction engine together behind one
// surface. Update operations are serialized the way the source execution
// environment serializes them: one at a time, with remote notification
// calls suspending outside the serialization window.
package state

import (
	"sync"
	"time"

	"github.com/ardanlabs/tokenledger/foundation/token/account"
	"github.com/ardanlabs/tokenledger/foundation/token/auction"
	"github.com/ardanlabs/tokenledger/foundation/token/genesis"
	"github.com/ardanlabs/tokenledger/foundation/token/ledger"
	"github.com/ardanlabs/tokenledger/foundation/token/notify"
	"github.com/ardanlabs/tokenledger/foundation/token/peer"
	"github.com/ardanlabs/tokenledger/foundation/token/txlog"
)

// EventHandler defines a function that is called when events occur in the
// processing of token operations.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to start the token state.
type Config struct {
	Genesis    genesis.Genesis
	TokenID    account.AccountID
	Serializer txlog.Serializer
	Sender     notify.Sender
	Bank       auction.CycleBank
	Registry   *peer.Registry
	Retention  int
	EvHandler  EventHandler
}

// State manages the token engine.
type State struct {
	mu sync.Mutex

	tokenID    account.AccountID
	deployTime time.Time
	evHandler  EventHandler

	ledger   *ledger.Ledger
	txlog    *txlog.Log
	notifier *notify.Notifier
	engine   *auction.Engine
	bank     auction.CycleBank
	registry *peer.Registry
}

// New constructs a new token state from the genesis information, replaying
// any transaction records found in the serializer. A fresh deployment mints
// the total supply to the owner and records it at index 0.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	engine := auction.New(auction.Config{
		MinCycles: cfg.Genesis.MinCycles,
		Period:    cfg.Genesis.AuctionPeriod,
		Bank:      cfg.Bank,
	})

	ldgr, err := ledger.New(cfg.Genesis, engine)
	if err != nil {
		return nil, err
	}

	log, err := txlog.New(cfg.Serializer, cfg.Retention)
	if err != nil {
		return nil, err
	}

	deployTime := cfg.Genesis.Date
	if deployTime.IsZero() {
		deployTime = time.Now().UTC()
	}

	s := State{
		tokenID:    cfg.TokenID,
		deployTime: deployTime,
		evHandler:  ev,
		ledger:     ldgr,
		txlog:      log,
		notifier:   notify.New(cfg.Sender, cfg.TokenID),
		engine:     engine,
		bank:       cfg.Bank,
		registry:   cfg.Registry,
	}

	// The payout dependencies are bound after the ledger and the log exist.
	engine.Bind(ldgr, &s)

	// A fresh deployment logs the genesis mint of the total supply.
	if log.Size() == 0 {
		owner := ldgr.Stats().Owner
		rec := txlog.NewRecord(txlog.KindMint, owner, owner, cfg.Genesis.TotalSupply, 0, txlog.StatusSucceeded)
		if _, err := log.Append(rec); err != nil {
			return nil, err
		}
		ev("state: genesis mint: owner[%s] supply[%d]", owner, cfg.Genesis.TotalSupply)
	}

	return &s, nil
}

// Shutdown cleanly brings the state down.
func (s *State) Shutdown() error {
	return s.txlog.Close()
}

// Size implements the auction.Recorder interface and reports the number of
// records ever logged.
func (s *State) Size() uint64 {
	return s.txlog.Size()
}

// AppendAuction implements the auction.Recorder interface and logs one
// auction distribution.
func (s *State) AppendAuction(to account.AccountID, amount uint64) (uint64, error) {
	rec := txlog.NewRecord(txlog.KindAuction, ledger.AuctionAccount, to, amount, 0, txlog.StatusSucceeded)
	return s.txlog.Append(rec)
}

// record logs the outcome of an applied operation and returns the assigned
// transaction index.
func (s *State) record(applied ledger.Applied, status string) (uint64, error) {
	rec := txlog.NewRecord(applied.Kind, applied.From, applied.To, applied.Amount, applied.Fee, status)
	rec.Caller = applied.Caller

	return s.txlog.Append(rec)
}
