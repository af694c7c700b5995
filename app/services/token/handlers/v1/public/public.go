// Package public maintains the group of handlers for public token access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/tokenledger/business/web/errs"
	"github.com/ardanlabs/tokenledger/foundation/events"
	"github.com/ardanlabs/tokenledger/foundation/nameservice"
	"github.com/ardanlabs/tokenledger/foundation/token/account"
	"github.com/ardanlabs/tokenledger/foundation/token/notify"
	"github.com/ardanlabs/tokenledger/foundation/token/state"
	"github.com/ardanlabs/tokenledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of token ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// TokenInfo returns the full set of token level information.
func (h Handlers) TokenInfo(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.TokenInfo(), http.StatusOK)
}

// Metadata returns the token metadata.
func (h Handlers) Metadata(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Metadata(), http.StatusOK)
}

// Balances returns the current balances for all holders or a single account.
func (h Handlers) Balances(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	acct := web.Param(r, "account")

	var holders []balance
	switch acct {
	case "":
		info := h.State.TokenInfo()
		for _, holder := range h.State.Holders(0, info.HolderNumber) {
			holders = append(holders, balance{
				Account: holder.Account,
				Name:    h.NS.Lookup(holder.Account),
				Balance: holder.Balance,
			})
		}

	default:
		accountID, err := account.ToAccountID(acct)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		holders = append(holders, balance{
			Account: accountID,
			Name:    h.NS.Lookup(accountID),
			Balance: h.State.BalanceOf(accountID),
		})
	}

	resp := balances{
		TotalSupply: h.State.TotalSupply(),
		Holders:     h.State.TokenInfo().HolderNumber,
		Balances:    holders,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Allowance returns the remaining allowance between an owner and a spender.
func (h Handlers) Allowance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	owner, err := account.ToAccountID(web.Param(r, "owner"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	spender, err := account.ToAccountID(web.Param(r, "spender"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Allowance uint64 `json:"allowance"`
	}{
		Allowance: h.State.Allowance(owner, spender),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Approvals returns the open approvals granted by the specified account.
func (h Handlers) Approvals(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	owner, err := account.ToAccountID(web.Param(r, "owner"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, h.State.UserApprovals(owner), http.StatusOK)
}

// Transaction returns a single transaction record by index.
func (h Handlers) Transaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.ParseUint(web.Param(r, "id"), 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	rec, err := h.State.Transaction(id)
	if err != nil {
		return errs.NewTrusted(err, http.StatusNotFound)
	}

	return web.Respond(ctx, w, rec, http.StatusOK)
}

// Transactions returns a window of the transaction log.
func (h Handlers) Transactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	start, limit, err := pageParams(r)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	recs, err := h.State.Transactions(start, limit)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, recs, http.StatusOK)
}

// UserTransactions returns the transactions in a window of the log that
// relate to the specified account.
func (h Handlers) UserTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID, err := account.ToAccountID(web.Param(r, "account"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	start, limit, err := pageParams(r)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	recs, err := h.State.UserTransactions(accountID, start, limit)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Amount       uint64 `json:"amount"`
		Transactions any    `json:"transactions"`
	}{
		Amount:       h.State.UserTransactionAmount(accountID),
		Transactions: recs,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Transfer moves tokens from the caller to another account.
func (h Handlers) Transfer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx transferTx
	if err := web.Decode(r, &tx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	caller, to, err := accountPair(tx.Caller, tx.To)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("transfer", "traceid", v.TraceID, "from", caller, "to", to, "value", tx.Value)
	txID, err := h.State.Transfer(caller, to, tx.Value, tx.FeeLimit)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, txResult{TxID: txID, Status: "transferred"}, http.StatusOK)
}

// TransferIncludeFee moves tokens deducting the fee from the value.
func (h Handlers) TransferIncludeFee(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx transferTx
	if err := web.Decode(r, &tx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	caller, to, err := accountPair(tx.Caller, tx.To)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	txID, err := h.State.TransferIncludeFee(caller, to, tx.Value)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, txResult{TxID: txID, Status: "transferred"}, http.StatusOK)
}

// TransferFrom moves tokens between two accounts using the caller's allowance.
func (h Handlers) TransferFrom(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx transferFromTx
	if err := web.Decode(r, &tx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	caller, err := account.ToAccountID(tx.Caller)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	from, to, err := accountPair(tx.From, tx.To)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	txID, err := h.State.TransferFrom(caller, from, to, tx.Value)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, txResult{TxID: txID, Status: "transferred"}, http.StatusOK)
}

// TransferAndNotify moves tokens and then notifies the receiving canister.
func (h Handlers) TransferAndNotify(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx transferTx
	if err := web.Decode(r, &tx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	caller, to, err := accountPair(tx.Caller, tx.To)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	txID, err := h.State.TransferAndNotify(ctx, caller, to, tx.Value, tx.FeeLimit)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, txResult{TxID: txID, Status: "transferred and notified"}, http.StatusOK)
}

// Approve sets the allowance a spender can draw from the caller's balance.
func (h Handlers) Approve(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx approveTx
	if err := web.Decode(r, &tx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	caller, spender, err := accountPair(tx.Caller, tx.Spender)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	txID, err := h.State.Approve(caller, spender, tx.Value)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, txResult{TxID: txID, Status: "approved"}, http.StatusOK)
}

// Burn destroys tokens from the specified account.
func (h Handlers) Burn(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx burnTx
	if err := web.Decode(r, &tx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	caller, from, err := accountPair(tx.Caller, tx.From)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	txID, err := h.State.Burn(caller, from, tx.Value)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, txResult{TxID: txID, Status: "burned"}, http.StatusOK)
}

// Notify delivers the exactly once notification for the specified transaction.
func (h Handlers) Notify(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.ParseUint(web.Param(r, "id"), 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	txID, err := h.State.Notify(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, notify.ErrTxDoesNotExist):
			return errs.NewTrusted(err, http.StatusNotFound)
		case errors.Is(err, notify.ErrAlreadyNotified):
			return errs.NewTrusted(err, http.StatusConflict)
		default:
			return errs.NewTrusted(err, http.StatusBadGateway)
		}
	}

	return web.Respond(ctx, w, txResult{TxID: txID, Status: "notified"}, http.StatusOK)
}

// NotificationStatus returns the notification state of a transaction.
func (h Handlers) NotificationStatus(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.ParseUint(web.Param(r, "id"), 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		TxID   uint64 `json:"tx_id"`
		Status string `json:"status"`
	}{
		TxID:   id,
		Status: h.State.NotificationStatus(id),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Notification receives a transaction notification from a peer token service.
func (h Handlers) Notification(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var n notify.Notification
	if err := web.Decode(r, &n); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	h.Log.Infow("notification received", "traceid", v.TraceID, "txid", n.TxID, "from", n.From, "token", n.TokenID, "amount", n.Amount)
	h.Evts.Send(fmt.Sprintf("notification: tx[%d] from[%s] token[%s] amount[%d]", n.TxID, n.From, n.TokenID, n.Amount))

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "accepted",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BidCycles accepts a cycle bid on the current auction.
func (h Handlers) BidCycles(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx bidTx
	if err := web.Decode(r, &tx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	caller, err := account.ToAccountID(tx.Caller)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	total, err := h.State.BidCycles(caller, tx.Cycles)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		TotalBid uint64 `json:"total_bid"`
	}{
		TotalBid: total,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// RunAuction closes the current auction cycle and distributes the fee pool.
func (h Handlers) RunAuction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	info, err := h.State.RunAuction()
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// BiddingInfo returns a snapshot of the auction currently accepting bids.
func (h Handlers) BiddingInfo(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.BiddingInfo(), http.StatusOK)
}

// AuctionInfo returns the results of a completed auction.
func (h Handlers) AuctionInfo(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.ParseUint(web.Param(r, "id"), 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	info, err := h.State.AuctionInfo(id)
	if err != nil {
		return errs.NewTrusted(err, http.StatusNotFound)
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// =============================================================================

// accountPair converts two hex strings into account ids.
func accountPair(a string, b string) (account.AccountID, account.AccountID, error) {
	accountA, err := account.ToAccountID(a)
	if err != nil {
		return "", "", err
	}

	accountB, err := account.ToAccountID(b)
	if err != nil {
		return "", "", err
	}

	return accountA, accountB, nil
}

// pageParams pulls the start/limit window from the request path.
func pageParams(r *http.Request) (uint64, int, error) {
	start, err := strconv.ParseUint(web.Param(r, "start"), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start: %w", err)
	}

	limit, err := strconv.Atoi(web.Param(r, "limit"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid limit: %w", err)
	}

	return start, limit, nil
}
