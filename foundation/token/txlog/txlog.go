// Package txlog maintains the append-only, capacity-bounded history of
// applied ledger operations.
package txlog

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/tokenledger/foundation/token/account"
)

// Default bounds for the log. The retention bound caps how many records are
// held before the oldest are evicted. The query bound caps how many records
// a single range request can ask for.
const (
	DefaultRetention = 1_000_000
	MaxQueryLimit    = 1_000
)

// Serializer interface represents the behavior required to be implemented by
// any package providing support for storing and reading transaction records.
type Serializer interface {
	Write(rec Record) error
	Evict(index uint64) error
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by
// any package providing support to iterate over stored records.
type Iterator interface {
	Next() (Record, error)
	Done() bool
}

// =============================================================================

// Log manages the bounded transaction history. Record indices are global and
// monotonic: the first record ever written has index 0 and indices are never
// reused, even after eviction.
type Log struct {
	mu sync.RWMutex

	records   []Record
	base      uint64 // Index of records[0].
	retention int

	serializer Serializer
}

// New constructs a log with the specified retention bound and reloads any
// records found in the serializer. A retention of 0 selects the default.
func New(serializer Serializer, retention int) (*Log, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}

	log := Log{
		retention:  retention,
		serializer: serializer,
	}

	// Replay the records kept by the serializer. The first stored record
	// establishes the base index since older records may have been evicted.
	iter := serializer.ForEach()
	for rec, err := iter.Next(); !iter.Done(); rec, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		if len(log.records) == 0 {
			log.base = rec.Index
		} else if rec.Index != log.base+uint64(len(log.records)) {
			return nil, fmt.Errorf("record gap in storage: got index %d, exp %d", rec.Index, log.base+uint64(len(log.records)))
		}

		log.records = append(log.records, rec)
	}

	return &log, nil
}

// Close closes the underlying serializer.
func (l *Log) Close() error {
	return l.serializer.Close()
}

// Size returns the total number of records ever appended, including any that
// have since been evicted.
func (l *Log) Size() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.base + uint64(len(l.records))
}

// Append assigns the next monotonic index to the record, stores it and
// returns the assigned index. When the retention bound is exceeded the
// oldest record is evicted.
func (l *Log) Append(rec Record) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec.Index = l.base + uint64(len(l.records))

	if err := l.serializer.Write(rec); err != nil {
		return 0, err
	}
	l.records = append(l.records, rec)

	if len(l.records) > l.retention {
		evict := l.records[0].Index
		l.records = l.records[1:]
		l.base++

		if err := l.serializer.Evict(evict); err != nil {
			return 0, err
		}
	}

	return rec.Index, nil
}

// Get returns the record stored under the specified index. The second return
// is false both for indices that were never assigned and for indices whose
// records have been evicted. Callers cannot tell those cases apart.
func (l *Log) Get(index uint64) (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index < l.base || index >= l.base+uint64(len(l.records)) {
		return Record{}, false
	}

	return l.records[index-l.base], true
}

// Range returns the records with index in [start, start+limit). Requests for
// more than MaxQueryLimit records are rejected to bound the response cost.
// Indices outside the retained window are simply absent from the result.
func (l *Log) Range(start uint64, limit int) ([]Record, error) {
	if limit > MaxQueryLimit {
		return nil, fmt.Errorf("limit must not exceed %d", MaxQueryLimit)
	}
	if limit <= 0 {
		return nil, nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	end := start + uint64(limit)
	if start < l.base {
		start = l.base
	}
	if max := l.base + uint64(len(l.records)); end > max {
		end = max
	}
	if start >= end {
		return nil, nil
	}

	recs := make([]Record, end-start)
	copy(recs, l.records[start-l.base:end-l.base])

	return recs, nil
}

// ByAccount returns the records with index in [start, start+limit) where the
// specified account is the sender, recipient or caller. The window [start,
// start+limit) is a window over the global log, not over the account's own
// records, so fewer matching records than limit may be returned even when
// more exist.
func (l *Log) ByAccount(who account.AccountID, start uint64, limit int) ([]Record, error) {
	recs, err := l.Range(start, limit)
	if err != nil {
		return nil, err
	}

	var matched []Record
	for _, rec := range recs {
		if rec.Touches(who) {
			matched = append(matched, rec)
		}
	}

	return matched, nil
}

// AmountByAccount returns the sum of the amounts across all retained records
// related to the specified account.
func (l *Log) AmountByAccount(who account.AccountID) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var amount uint64
	for _, rec := range l.records {
		if rec.Touches(who) {
			amount += rec.Amount
		}
	}

	return amount
}
