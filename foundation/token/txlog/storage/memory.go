package storage

import (
	"sync"

	"github.com/ardanlabs/tokenledger/foundation/token/txlog"
)

// Memory represents the serialization implementation for keeping transaction
// records in memory. This implements the txlog.Serializer interface and is
// used for testing and ephemeral deployments.
type Memory struct {
	mu      sync.RWMutex
	records []txlog.Record
}

// NewMemory constructs a Memory value for use.
func NewMemory() *Memory {
	return &Memory{}
}

// Close in this implementation has nothing to do.
func (m *Memory) Close() error {
	return nil
}

// Write stores the specified record in memory.
func (m *Memory) Write(rec txlog.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, rec)

	return nil
}

// Evict removes the oldest retained record if it carries the specified index.
func (m *Memory) Evict(index uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.records) > 0 && m.records[0].Index == index {
		m.records = m.records[1:]
	}

	return nil
}

// ForEach returns an iterator to walk through all the stored records in
// index order.
func (m *Memory) ForEach() txlog.Iterator {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]txlog.Record, len(m.records))
	copy(records, m.records)

	return &MemoryIterator{records: records}
}

// Reset will clear out the records in memory.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = nil

	return nil
}

// =============================================================================

// MemoryIterator represents the iteration implementation for walking through
// records held in memory. This implements the txlog.Iterator interface.
type MemoryIterator struct {
	records []txlog.Record
	eoc     bool
}

// Next retrieves the next record from memory.
func (mi *MemoryIterator) Next() (txlog.Record, error) {
	if len(mi.records) == 0 {
		mi.eoc = true
		return txlog.Record{}, nil
	}

	rec := mi.records[0]
	mi.records = mi.records[1:]

	return rec, nil
}

// Done returns the end of log value.
func (mi *MemoryIterator) Done() bool {
	return mi.eoc
}
