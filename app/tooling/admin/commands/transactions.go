package commands

import (
	"fmt"

	"github.com/ardanlabs/tokenledger/foundation/token/txlog/storage"
)

// Transactions prints the stored transaction log, optionally filtered
// down to a single account.
func Transactions(args []string, db *storage.Disk) error {
	var acct string
	if len(args) == 3 {
		acct = args[2]
	}

	iter := db.ForEach()
	for rec, err := iter.Next(); !iter.Done(); rec, err = iter.Next() {
		if err != nil {
			return err
		}

		if acct != "" && acct != string(rec.From) && acct != string(rec.To) && acct != string(rec.Caller) {
			continue
		}

		fmt.Printf("ID: %d  Kind: %s  From: %s  To: %s  Amount: %d  Fee: %d  Status: %s\n",
			rec.Index, rec.Kind, rec.From, rec.To, rec.Amount, rec.Fee, rec.Status)
	}

	return nil
}
