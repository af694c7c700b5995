package public

import (
	"github.com/ardanlabs/tokenledger/foundation/token/account"
)

// transferTx represents a request to move tokens between accounts.
type transferTx struct {
	Caller   string  `json:"caller" validate:"required"`
	To       string  `json:"to" validate:"required"`
	Value    uint64  `json:"value"`
	FeeLimit *uint64 `json:"fee_limit"`
}

// transferFromTx represents a delegated transfer request.
type transferFromTx struct {
	Caller string `json:"caller" validate:"required"`
	From   string `json:"from" validate:"required"`
	To     string `json:"to" validate:"required"`
	Value  uint64 `json:"value"`
}

// approveTx represents a request to set a spending allowance.
type approveTx struct {
	Caller  string `json:"caller" validate:"required"`
	Spender string `json:"spender" validate:"required"`
	Value   uint64 `json:"value"`
}

// burnTx represents a request to destroy tokens.
type burnTx struct {
	Caller string `json:"caller" validate:"required"`
	From   string `json:"from" validate:"required"`
	Value  uint64 `json:"value" validate:"required"`
}

// bidTx represents a request to bid operation cycles on the current auction.
type bidTx struct {
	Caller string `json:"caller" validate:"required"`
	Cycles uint64 `json:"cycles" validate:"required"`
}

// balance represents an account balance with its resolved name.
type balance struct {
	Account account.AccountID `json:"account"`
	Name    string            `json:"name"`
	Balance uint64            `json:"balance"`
}

// balances is the response for the balance listing endpoints.
type balances struct {
	TotalSupply uint64    `json:"total_supply"`
	Holders     int       `json:"holders"`
	Balances    []balance `json:"balances"`
}

// txResult reports the index assigned to an applied transaction.
type txResult struct {
	TxID   uint64 `json:"tx_id"`
	Status string `json:"status"`
}
