package state

import (
	"github.com/ardanlabs/tokenledger/foundation/token/account"
	"github.com/ardanlabs/tokenledger/foundation/token/peer"
)

// SetName updates the token name. Owner only.
func (s *State) SetName(caller account.AccountID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.SetName(caller, name)
}

// SetLogo updates the token logo. Owner only.
func (s *State) SetLogo(caller account.AccountID, logo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.SetLogo(caller, logo)
}

// SetFee updates the fee charged on value-moving operations. Owner only.
func (s *State) SetFee(caller account.AccountID, fee uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.SetFee(caller, fee)
}

// SetFeeTo updates the account receiving the owner share of fees. Owner only.
func (s *State) SetFeeTo(caller account.AccountID, feeTo account.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.SetFeeTo(caller, feeTo)
}

// SetOwner hands ownership of the token to another account. Owner only.
func (s *State) SetOwner(caller account.AccountID, owner account.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.SetOwner(caller, owner)
}

// ToggleTest flips the test-token mode and returns the new setting. Owner
// only.
func (s *State) ToggleTest(caller account.AccountID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.ToggleTest(caller)
}

// RegisterPeer records the host an account receives transaction
// notifications on.
func (s *State) RegisterPeer(accountID account.AccountID, host string) {
	s.registry.Add(peer.New(accountID, host))
	s.evHandler("state: peer registered: account[%s] host[%s]", accountID, host)
}

// Peers returns the registered notification endpoints.
func (s *State) Peers() []peer.Peer {
	return s.registry.Copy()
}
