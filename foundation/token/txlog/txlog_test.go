package txlog_test

import (
	"testing"

	"github.com/ardanlabs/tokenledger/foundation/token/account"
	"github.com/ardanlabs/tokenledger/foundation/token/txlog"
	"github.com/ardanlabs/tokenledger/foundation/token/txlog/storage"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

var (
	alice = account.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
	bob   = account.AccountID("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")
	carol = account.AccountID("0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76")
)

func appendN(t *testing.T, log *txlog.Log, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		rec := txlog.NewRecord(txlog.KindTransfer, alice, bob, uint64(i+1), 1, txlog.StatusSucceeded)
		if _, err := log.Append(rec); err != nil {
			t.Fatalf("\t%s\tShould be able to append record %d: %v", failed, i, err)
		}
	}
}

func TestAppendGet(t *testing.T) {
	t.Log("Given the need to validate appended records are retrievable by index.")
	{
		log, err := txlog.New(storage.NewMemory(), 0)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the log: %v", failed, err)
		}

		rec := txlog.NewRecord(txlog.KindMint, alice, bob, 500, 0, txlog.StatusSucceeded)
		index, err := log.Append(rec)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to append: %v", failed, err)
		}
		if index != 0 {
			t.Fatalf("\t%s\tShould assign index 0 to the first record, got %d.", failed, index)
		}
		t.Logf("\t%s\tShould assign index 0 to the first record.", success)

		got, exists := log.Get(index)
		if !exists {
			t.Fatalf("\t%s\tShould be able to get the record back.", failed)
		}
		if got.Kind != txlog.KindMint || got.Amount != 500 || got.Index != 0 {
			t.Fatalf("\t%s\tShould round-trip the record fields, got %+v.", failed, got)
		}
		t.Logf("\t%s\tShould round-trip the record fields.", success)

		if _, exists := log.Get(1); exists {
			t.Fatalf("\t%s\tShould not find an index beyond the history size.", failed)
		}
		t.Logf("\t%s\tShould not find an index beyond the history size.", success)
	}
}

func TestEviction(t *testing.T) {
	t.Log("Given the need to validate the retention bound evicts oldest first.")
	{
		log, err := txlog.New(storage.NewMemory(), 5)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the log: %v", failed, err)
		}

		appendN(t, log, 8)

		if size := log.Size(); size != 8 {
			t.Fatalf("\t%s\tShould keep the history size at 8, got %d.", failed, size)
		}
		t.Logf("\t%s\tShould keep counting evicted records in the history size.", success)

		for index := uint64(0); index < 3; index++ {
			if _, exists := log.Get(index); exists {
				t.Fatalf("\t%s\tShould report evicted index %d as not found.", failed, index)
			}
		}
		t.Logf("\t%s\tShould report evicted indices as not found.", success)

		if _, exists := log.Get(3); !exists {
			t.Fatalf("\t%s\tShould retain the newest 5 records.", failed)
		}
		t.Logf("\t%s\tShould retain the newest records.", success)
	}
}

func TestRange(t *testing.T) {
	t.Log("Given the need to validate bounded range queries.")
	{
		log, err := txlog.New(storage.NewMemory(), 0)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the log: %v", failed, err)
		}

		appendN(t, log, 10)

		recs, err := log.Range(2, 3)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to query a range: %v", failed, err)
		}
		if len(recs) != 3 || recs[0].Index != 2 || recs[2].Index != 4 {
			t.Fatalf("\t%s\tShould return records [2,5), got %d records.", failed, len(recs))
		}
		t.Logf("\t%s\tShould return the records in [start, start+limit).", success)

		if _, err := log.Range(0, txlog.MaxQueryLimit+1); err == nil {
			t.Fatalf("\t%s\tShould reject an oversized limit.", failed)
		}
		t.Logf("\t%s\tShould reject an oversized limit.", success)

		recs, err = log.Range(8, 5)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to query past the end: %v", failed, err)
		}
		if len(recs) != 2 {
			t.Fatalf("\t%s\tShould clamp the range at the history size, got %d.", failed, len(recs))
		}
		t.Logf("\t%s\tShould clamp the range at the history size.", success)
	}
}

func TestByAccount(t *testing.T) {
	t.Log("Given the need to validate the account filter scans a fixed window.")
	{
		log, err := txlog.New(storage.NewMemory(), 0)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the log: %v", failed, err)
		}

		// Alternate records touching carol with records that do not.
		for i := 0; i < 10; i++ {
			to := bob
			if i%2 == 0 {
				to = carol
			}
			rec := txlog.NewRecord(txlog.KindTransfer, alice, to, uint64(i+1), 1, txlog.StatusSucceeded)
			if _, err := log.Append(rec); err != nil {
				t.Fatalf("\t%s\tShould be able to append: %v", failed, err)
			}
		}

		recs, err := log.ByAccount(carol, 0, 10)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to filter by account: %v", failed, err)
		}
		if len(recs) != 5 {
			t.Fatalf("\t%s\tShould find 5 records for carol, got %d.", failed, len(recs))
		}
		t.Logf("\t%s\tShould find the records related to the account.", success)

		// The window is over the global log, so a window of 4 can return
		// fewer than 4 matches.
		recs, err = log.ByAccount(carol, 0, 4)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to filter a window: %v", failed, err)
		}
		if len(recs) != 2 {
			t.Fatalf("\t%s\tShould under-return from a fixed scan window, got %d.", failed, len(recs))
		}
		t.Logf("\t%s\tShould under-return from a fixed scan window.", success)
	}
}

func TestDiskReload(t *testing.T) {
	t.Log("Given the need to validate the log rebuilds from disk after eviction.")
	{
		dir := t.TempDir()

		disk, err := storage.NewDisk(dir)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct disk storage: %v", failed, err)
		}

		log, err := txlog.New(disk, 4)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the log: %v", failed, err)
		}

		appendN(t, log, 6)
		log.Close()

		disk2, err := storage.NewDisk(dir)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to reopen disk storage: %v", failed, err)
		}

		reloaded, err := txlog.New(disk2, 4)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to reload the log: %v", failed, err)
		}

		if size := reloaded.Size(); size != 6 {
			t.Fatalf("\t%s\tShould rebuild the history size from disk, got %d.", failed, size)
		}
		t.Logf("\t%s\tShould rebuild the history size from disk.", success)

		if _, exists := reloaded.Get(1); exists {
			t.Fatalf("\t%s\tShould keep evicted indices evicted across reloads.", failed)
		}
		if rec, exists := reloaded.Get(5); !exists || rec.Amount != 6 {
			t.Fatalf("\t%s\tShould retain the newest records across reloads.", failed)
		}
		t.Logf("\t%s\tShould retain the newest records across reloads.", success)

		index, err := reloaded.Append(txlog.NewRecord(txlog.KindBurn, alice, alice, 1, 0, txlog.StatusSucceeded))
		if err != nil {
			t.Fatalf("\t%s\tShould be able to append after a reload: %v", failed, err)
		}
		if index != 6 {
			t.Fatalf("\t%s\tShould continue the monotonic index after a reload, got %d.", failed, index)
		}
		t.Logf("\t%s\tShould continue the monotonic index after a reload.", success)
	}
}
