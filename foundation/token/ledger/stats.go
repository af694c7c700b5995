package ledger

import (
	"time"

	"github.com/ardanlabs/tokenledger/foundation/token/account"
)

// Stats is the centrally-owned configuration and metadata record for the
// token. All fields are mutable only through the owner-gated setters.
type Stats struct {
	Name        string
	Symbol      string
	Decimals    uint8
	Logo        string
	Owner       account.AccountID
	Fee         uint64
	FeeTo       account.AccountID
	TotalSupply uint64
	IsTestToken bool
	DeployTime  time.Time
}

// Metadata is the read-only subset of the stats reported to clients.
type Metadata struct {
	Name        string            `json:"name"`
	Symbol      string            `json:"symbol"`
	Decimals    uint8             `json:"decimals"`
	Logo        string            `json:"logo"`
	Owner       account.AccountID `json:"owner"`
	Fee         uint64            `json:"fee"`
	FeeTo       account.AccountID `json:"fee_to"`
	TotalSupply uint64            `json:"total_supply"`
	IsTestToken bool              `json:"is_test_token"`
}
