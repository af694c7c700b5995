package commands

import (
	"fmt"

	"github.com/ardanlabs/tokenledger/foundation/token/account"
	"github.com/ardanlabs/tokenledger/foundation/token/genesis"
	"github.com/ardanlabs/tokenledger/foundation/token/txlog"
	"github.com/ardanlabs/tokenledger/foundation/token/txlog/storage"
)

// Balances replays the stored transaction log over the genesis balance
// sheet and prints the resulting balances.
func Balances(args []string, db *storage.Disk) error {
	var onlyAct string
	if len(args) == 3 {
		onlyAct = args[2]
	}

	gen, err := genesis.Load()
	if err != nil {
		return err
	}

	balances := make(map[account.AccountID]uint64)
	for accountID, bal := range gen.Balances {
		balances[account.AccountID(accountID)] = bal
	}

	iter := db.ForEach()
	for rec, err := iter.Next(); !iter.Done(); rec, err = iter.Next() {
		if err != nil {
			return err
		}

		if rec.Status != txlog.StatusSucceeded {
			continue
		}

		switch rec.Kind {
		case txlog.KindMint:
			balances[rec.To] += rec.Amount

		case txlog.KindBurn:
			balances[rec.From] -= rec.Amount

		case txlog.KindTransfer, txlog.KindTransferFrom:
			balances[rec.From] -= rec.Amount + rec.Fee
			balances[rec.To] += rec.Amount
			balances[account.AccountID(gen.FeeTo)] += rec.Fee

		case txlog.KindAuction:
			balances[rec.To] += rec.Amount
		}
	}

	for accountID, bal := range balances {
		if onlyAct != "" && onlyAct != string(accountID) {
			continue
		}
		fmt.Printf("Account: %s  Balance: %d\n", accountID, bal)
	}

	return nil
}
