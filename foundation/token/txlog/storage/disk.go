// Package storage implements the txlog.Serializer interface for keeping
// transaction records on disk and in memory.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/ardanlabs/tokenledger/foundation/token/txlog"
)

// Disk represents the serialization implementation for reading and storing
// transaction records in their own separate files on disk. This implements
// the txlog.Serializer interface.
type Disk struct {
	dbPath string
}

// NewDisk constructs a Disk value for use.
func NewDisk(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each record and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Write takes the specified record and stores it on disk in a file labeled
// with the record index.
func (d *Disk) Write(rec txlog.Record) error {

	// Marshal the record for writing to disk in a more human readable format.
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	// Create a new file for this record and name it based on the index.
	f, err := os.OpenFile(d.getPath(rec.Index), os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	// Write the new record to disk.
	if _, err := f.Write(data); err != nil {
		return err
	}

	return nil
}

// Evict removes the file for the specified record index.
func (d *Disk) Evict(index uint64) error {
	if err := os.Remove(d.getPath(index)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}

// ForEach returns an iterator to walk through all the stored records in
// index order, starting with the oldest retained record.
func (d *Disk) ForEach() txlog.Iterator {
	return &DiskIterator{disk: d, indexes: d.retainedIndexes()}
}

// Reset will clear out the records on disk.
func (d *Disk) Reset() error {
	for _, index := range d.retainedIndexes() {
		if err := os.Remove(d.getPath(index)); err != nil {
			return err
		}
	}

	return nil
}

// getRecord reads the contents of the specified record file by index.
func (d *Disk) getRecord(index uint64) (txlog.Record, error) {
	f, err := os.OpenFile(d.getPath(index), os.O_RDONLY, 0600)
	if err != nil {
		return txlog.Record{}, err
	}
	defer f.Close()

	var rec txlog.Record
	if err := json.NewDecoder(f).Decode(&rec); err != nil {
		return txlog.Record{}, err
	}

	return rec, nil
}

// retainedIndexes lists the record indexes currently present on disk in
// ascending order. Eviction can remove files from the front so the list
// does not necessarily start at zero.
func (d *Disk) retainedIndexes() []uint64 {
	entries, err := os.ReadDir(d.dbPath)
	if err != nil {
		return nil
	}

	var indexes []uint64
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}

		index, err := strconv.ParseUint(strings.TrimSuffix(name, ".json"), 10, 64)
		if err != nil {
			continue
		}
		indexes = append(indexes, index)
	}
	sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })

	return indexes
}

// getPath forms the path to the specified record.
func (d *Disk) getPath(index uint64) string {
	name := strconv.FormatUint(index, 10)
	return path.Join(d.dbPath, fmt.Sprintf("%s.json", name))
}

// =============================================================================

// DiskIterator represents the iteration implementation for walking through
// and reading records on disk. This implements the txlog.Iterator interface.
type DiskIterator struct {
	disk    *Disk    // Access to the disk storage API.
	indexes []uint64 // Record indexes left to iterate over.
	eoc     bool     // Represents the iterator is at the end of the log.
}

// Next retrieves the next record from disk.
func (di *DiskIterator) Next() (txlog.Record, error) {
	if len(di.indexes) == 0 {
		di.eoc = true
		return txlog.Record{}, nil
	}

	index := di.indexes[0]
	di.indexes = di.indexes[1:]

	return di.disk.getRecord(index)
}

// Done returns the end of log value.
func (di *DiskIterator) Done() bool {
	return di.eoc
}
