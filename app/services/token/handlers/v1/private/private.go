// Package private maintains the group of handlers for owner level access.
package private

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/tokenledger/business/web/errs"
	"github.com/ardanlabs/tokenledger/foundation/nameservice"
	"github.com/ardanlabs/tokenledger/foundation/token/account"
	"github.com/ardanlabs/tokenledger/foundation/token/state"
	"github.com/ardanlabs/tokenledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of owner level endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
}

// Mint creates new tokens and credits them to the specified account.
func (h Handlers) Mint(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx struct {
		Caller string `json:"caller" validate:"required"`
		To     string `json:"to" validate:"required"`
		Value  uint64 `json:"value" validate:"required"`
	}
	if err := web.Decode(r, &tx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	caller, err := account.ToAccountID(tx.Caller)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	to, err := account.ToAccountID(tx.To)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("mint", "traceid", v.TraceID, "to", to, "value", tx.Value)
	txID, err := h.State.Mint(caller, to, tx.Value)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		TxID   uint64 `json:"tx_id"`
		Status string `json:"status"`
	}{
		TxID:   txID,
		Status: "minted",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SetName changes the display name of the token.
func (h Handlers) SetName(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx struct {
		Caller string `json:"caller" validate:"required"`
		Name   string `json:"name" validate:"required"`
	}
	if err := web.Decode(r, &tx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	caller, err := account.ToAccountID(tx.Caller)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := h.State.SetName(caller, tx.Name); err != nil {
		return errs.NewTrusted(err, http.StatusUnauthorized)
	}

	return respondUpdated(ctx, w)
}

// SetLogo changes the logo of the token.
func (h Handlers) SetLogo(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx struct {
		Caller string `json:"caller" validate:"required"`
		Logo   string `json:"logo" validate:"required"`
	}
	if err := web.Decode(r, &tx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	caller, err := account.ToAccountID(tx.Caller)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := h.State.SetLogo(caller, tx.Logo); err != nil {
		return errs.NewTrusted(err, http.StatusUnauthorized)
	}

	return respondUpdated(ctx, w)
}

// SetFee changes the flat fee charged on transfers.
func (h Handlers) SetFee(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx struct {
		Caller string `json:"caller" validate:"required"`
		Fee    uint64 `json:"fee"`
	}
	if err := web.Decode(r, &tx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	caller, err := account.ToAccountID(tx.Caller)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := h.State.SetFee(caller, tx.Fee); err != nil {
		return errs.NewTrusted(err, http.StatusUnauthorized)
	}

	return respondUpdated(ctx, w)
}

// SetFeeTo changes the account that collects the non auction share of fees.
func (h Handlers) SetFeeTo(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx struct {
		Caller string `json:"caller" validate:"required"`
		FeeTo  string `json:"fee_to" validate:"required"`
	}
	if err := web.Decode(r, &tx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	caller, err := account.ToAccountID(tx.Caller)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	feeTo, err := account.ToAccountID(tx.FeeTo)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := h.State.SetFeeTo(caller, feeTo); err != nil {
		return errs.NewTrusted(err, http.StatusUnauthorized)
	}

	return respondUpdated(ctx, w)
}

// SetOwner transfers ownership of the token.
func (h Handlers) SetOwner(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx struct {
		Caller string `json:"caller" validate:"required"`
		Owner  string `json:"owner" validate:"required"`
	}
	if err := web.Decode(r, &tx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	caller, err := account.ToAccountID(tx.Caller)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	owner, err := account.ToAccountID(tx.Owner)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := h.State.SetOwner(caller, owner); err != nil {
		return errs.NewTrusted(err, http.StatusUnauthorized)
	}

	return respondUpdated(ctx, w)
}

// ToggleTest flips the unrestricted mint/burn mode used for testing.
func (h Handlers) ToggleTest(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx struct {
		Caller string `json:"caller" validate:"required"`
	}
	if err := web.Decode(r, &tx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	caller, err := account.ToAccountID(tx.Caller)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	enabled, err := h.State.ToggleTest(caller)
	if err != nil {
		return errs.NewTrusted(err, http.StatusUnauthorized)
	}

	resp := struct {
		TestToken bool `json:"is_test_token"`
	}{
		TestToken: enabled,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SetMinCycles changes the cycle reserve threshold of the fee ratio curve.
func (h Handlers) SetMinCycles(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx struct {
		Caller    string `json:"caller" validate:"required"`
		MinCycles uint64 `json:"min_cycles" validate:"required"`
	}
	if err := web.Decode(r, &tx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	caller, err := account.ToAccountID(tx.Caller)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := h.State.SetMinCycles(caller, tx.MinCycles); err != nil {
		return errs.NewTrusted(err, http.StatusUnauthorized)
	}

	return respondUpdated(ctx, w)
}

// SetAuctionPeriod changes the minimum time between auctions.
func (h Handlers) SetAuctionPeriod(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx struct {
		Caller string `json:"caller" validate:"required"`
		Period string `json:"period" validate:"required"`
	}
	if err := web.Decode(r, &tx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	caller, err := account.ToAccountID(tx.Caller)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	period, err := time.ParseDuration(tx.Period)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := h.State.SetAuctionPeriod(caller, period); err != nil {
		return errs.NewTrusted(err, http.StatusUnauthorized)
	}

	return respondUpdated(ctx, w)
}

// RegisterPeer records the host a token account can be notified on.
func (h Handlers) RegisterPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx struct {
		Account string `json:"account" validate:"required"`
		Host    string `json:"host" validate:"required"`
	}
	if err := web.Decode(r, &tx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	accountID, err := account.ToAccountID(tx.Account)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.State.RegisterPeer(accountID, tx.Host)

	return respondUpdated(ctx, w)
}

// Peers returns the set of known peer token services.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Peers(), http.StatusOK)
}

// =============================================================================

func respondUpdated(ctx context.Context, w http.ResponseWriter) error {
	resp := struct {
		Status string `json:"status"`
	}{
		Status: "updated",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
