// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"os"
	"time"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date          time.Time         `json:"date"`
	Name          string            `json:"name"`           // Human readable token name.
	Symbol        string            `json:"symbol"`         // Short ticker symbol for the token.
	Decimals      uint8             `json:"decimals"`       // Number of decimal places in one whole token.
	Logo          string            `json:"logo"`           // Reference to the token logo.
	TotalSupply   uint64            `json:"total_supply"`   // Amount minted to the owner at deploy time.
	Owner         string            `json:"owner"`          // Account allowed to run the owner-only operations.
	Fee           uint64            `json:"fee"`            // Fee charged on each value-moving operation.
	FeeTo         string            `json:"fee_to"`         // Account receiving the owner share of fees.
	IsTestToken   bool              `json:"is_test_token"`  // When set, minting is not restricted to the owner.
	MinCycles     uint64            `json:"min_cycles"`     // Cycle reserve below which all fees fund auctions.
	AuctionPeriod time.Duration     `json:"auction_period"` // Minimum time between two auctions.
	Balances      map[string]uint64 `json:"balances"`
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load() (Genesis, error) {
	path := "ztoken/genesis.json"
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	err = json.Unmarshal(content, &genesis)
	if err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}
