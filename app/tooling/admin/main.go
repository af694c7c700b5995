// This program performs administrative tasks for the token service.
package main

import (
	"fmt"
	"os"

	"github.com/ardanlabs/tokenledger/app/tooling/admin/commands"
	"github.com/ardanlabs/tokenledger/foundation/logger"
	"github.com/ardanlabs/tokenledger/foundation/token/txlog/storage"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	db, err := storage.NewDisk("ztoken/txs/")
	if err != nil {
		return err
	}
	defer db.Close()

	return processCommands(os.Args, db)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args []string, db *storage.Disk) error {
	if len(args) < 2 {
		return fmt.Errorf("expecting a command: bals or trans")
	}

	switch args[1] {
	case "bals":
		if err := commands.Balances(args, db); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}
	case "trans":
		if err := commands.Transactions(args, db); err != nil {
			return fmt.Errorf("getting transactions: %w", err)
		}
	}

	return nil
}
