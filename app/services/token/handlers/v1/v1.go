// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/tokenledger/app/services/token/handlers/v1/private"
	"github.com/ardanlabs/tokenledger/app/services/token/handlers/v1/public"
	"github.com/ardanlabs/tokenledger/foundation/events"
	"github.com/ardanlabs/tokenledger/foundation/nameservice"
	"github.com/ardanlabs/tokenledger/foundation/token/state"
	"github.com/ardanlabs/tokenledger/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)

	app.Handle(http.MethodGet, version, "/token/info", pbl.TokenInfo)
	app.Handle(http.MethodGet, version, "/token/metadata", pbl.Metadata)
	app.Handle(http.MethodGet, version, "/balances/list", pbl.Balances)
	app.Handle(http.MethodGet, version, "/balances/list/:account", pbl.Balances)
	app.Handle(http.MethodGet, version, "/allowance/:owner/:spender", pbl.Allowance)
	app.Handle(http.MethodGet, version, "/approvals/:owner", pbl.Approvals)

	app.Handle(http.MethodGet, version, "/tx/get/:id", pbl.Transaction)
	app.Handle(http.MethodGet, version, "/tx/list/:start/:limit", pbl.Transactions)
	app.Handle(http.MethodGet, version, "/tx/account/:account/:start/:limit", pbl.UserTransactions)
	app.Handle(http.MethodPost, version, "/tx/transfer", pbl.Transfer)
	app.Handle(http.MethodPost, version, "/tx/transfer/fee", pbl.TransferIncludeFee)
	app.Handle(http.MethodPost, version, "/tx/transfer/from", pbl.TransferFrom)
	app.Handle(http.MethodPost, version, "/tx/transfer/notify", pbl.TransferAndNotify)
	app.Handle(http.MethodPost, version, "/tx/approve", pbl.Approve)
	app.Handle(http.MethodPost, version, "/tx/burn", pbl.Burn)
	app.Handle(http.MethodPost, version, "/tx/notify/:id", pbl.Notify)
	app.Handle(http.MethodGet, version, "/tx/notify/:id", pbl.NotificationStatus)
	app.Handle(http.MethodPost, version, "/tx/notification", pbl.Notification)

	app.Handle(http.MethodPost, version, "/auction/bid", pbl.BidCycles)
	app.Handle(http.MethodPost, version, "/auction/run", pbl.RunAuction)
	app.Handle(http.MethodGet, version, "/auction/bidding", pbl.BiddingInfo)
	app.Handle(http.MethodGet, version, "/auction/info/:id", pbl.AuctionInfo)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
	}

	app.Handle(http.MethodPost, version, "/admin/mint", prv.Mint)
	app.Handle(http.MethodPost, version, "/admin/name", prv.SetName)
	app.Handle(http.MethodPost, version, "/admin/logo", prv.SetLogo)
	app.Handle(http.MethodPost, version, "/admin/fee", prv.SetFee)
	app.Handle(http.MethodPost, version, "/admin/feeto", prv.SetFeeTo)
	app.Handle(http.MethodPost, version, "/admin/owner", prv.SetOwner)
	app.Handle(http.MethodPost, version, "/admin/test", prv.ToggleTest)
	app.Handle(http.MethodPost, version, "/admin/auction/mincycles", prv.SetMinCycles)
	app.Handle(http.MethodPost, version, "/admin/auction/period", prv.SetAuctionPeriod)

	app.Handle(http.MethodPost, version, "/node/peer", prv.RegisterPeer)
	app.Handle(http.MethodGet, version, "/node/peers", prv.Peers)
}
