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

var (
	url    string
	to     string
	value  uint64
	notify bool
)

// sendCmd represents the send command.
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send tokens to another account",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8280", "Url of the token service.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Account to send tokens to.")
	sendCmd.Flags().Uint64VarP(&value, "value", "v", 0, "Value to send.")
	sendCmd.Flags().BoolVarP(&notify, "notify", "n", false, "Notify the receiving service.")
}

func sendRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	caller := account.PublicKeyToAccountID(privateKey.PublicKey)

	tx := struct {
		Caller string `json:"caller"`
		To     string `json:"to"`
		Value  uint64 `json:"value"`
	}{
		Caller: string(caller),
		To:     to,
		Value:  value,
	}

	data, err := json.Marshal(tx)
	if err != nil {
		log.Fatal(err)
	}

	endpoint := fmt.Sprintf("%s/v1/tx/transfer", url)
	if notify {
		endpoint = fmt.Sprintf("%s/v1/tx/transfer/notify", url)
	}

	resp, err := http.Post(endpoint, "application/json", bytes.NewBuffer(data))
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
