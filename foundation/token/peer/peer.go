// Package peer maintains the registry of accounts that can receive
// transaction notifications and the hosts they are reachable on.
package peer

import (
	"sync"

	"github.com/ardanlabs/tokenledger/foundation/token/account"
)

// Peer represents a notification endpoint for an account.
type Peer struct {
	Account account.AccountID
	Host    string
}

// New constructs a new peer value.
func New(accountID account.AccountID, host string) Peer {
	return Peer{
		Account: accountID,
		Host:    host,
	}
}

// =============================================================================

// Registry represents the data representation to maintain the set of
// accounts with registered notification endpoints.
type Registry struct {
	mu  sync.RWMutex
	set map[account.AccountID]Peer
}

// NewRegistry constructs a new registry to manage notification endpoints.
func NewRegistry() *Registry {
	return &Registry{
		set: make(map[account.AccountID]Peer),
	}
}

// Add registers the endpoint for an account, replacing any previous one.
func (r *Registry) Add(peer Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.set[peer.Account] = peer
}

// Remove unregisters the endpoint for an account.
func (r *Registry) Remove(accountID account.AccountID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.set, accountID)
}

// Lookup returns the endpoint registered for the account.
func (r *Registry) Lookup(accountID account.AccountID) (Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	peer, exists := r.set[accountID]
	return peer, exists
}

// Copy returns a list of the registered peers.
func (r *Registry) Copy() []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	peers := make([]Peer, 0, len(r.set))
	for _, peer := range r.set {
		peers = append(peers, peer)
	}

	return peers
}
