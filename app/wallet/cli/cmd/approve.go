package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/tokenledger/foundation/token/account"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var spender string

// approveCmd represents the approve command.
var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Allow another account to spend your tokens",
	Run:   approveRun,
}

func init() {
	rootCmd.AddCommand(approveCmd)
	approveCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8280", "Url of the token service.")
	approveCmd.Flags().StringVarP(&spender, "spender", "s", "", "Account allowed to spend.")
	approveCmd.Flags().Uint64VarP(&value, "value", "v", 0, "Allowance to grant.")
}

func approveRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	caller := account.PublicKeyToAccountID(privateKey.PublicKey)

	tx := struct {
		Caller  string `json:"caller"`
		Spender string `json:"spender"`
		Value   uint64 `json:"value"`
	}{
		Caller:  string(caller),
		Spender: spender,
		Value:   value,
	}

	data, err := json.Marshal(tx)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/tx/approve", url), "application/json", bytes.NewBuffer(data))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var result struct {
		TxID   uint64 `json:"tx_id"`
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Fatal(err)
	}

	if result.Error != "" {
		log.Fatal(result.Error)
	}
	fmt.Printf("tx[%d]: %s\n", result.TxID, result.Status)
}
