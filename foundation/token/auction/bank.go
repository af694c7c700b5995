package auction

import "sync"

// Bank is an in-memory cycle accounting implementation of the CycleBank
// interface. Production deployments replace this with the accounting the
// host provides.
type Bank struct {
	mu      sync.RWMutex
	balance uint64
}

// NewBank constructs a bank holding the specified starting reserve.
func NewBank(balance uint64) *Bank {
	return &Bank{balance: balance}
}

// Balance returns the current cycle reserve.
func (b *Bank) Balance() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.balance
}

// Accept takes the supplied cycles into the reserve and returns the new
// balance.
func (b *Bank) Accept(cycles uint64) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.balance += cycles
	return b.balance
}

// Consume removes cycles from the reserve to model execution costs, bounded
// at zero.
func (b *Bank) Consume(cycles uint64) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cycles > b.balance {
		cycles = b.balance
	}
	b.balance -= cycles

	return b.balance
}
