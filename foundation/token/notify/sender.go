package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/tokenledger/foundation/token/account"
	"github.com/ardanlabs/tokenledger/foundation/token/peer"
)

// HTTPSender delivers notifications over HTTP to the host the recipient
// account registered in the peer registry. This implements the Sender
// interface.
type HTTPSender struct {
	registry *peer.Registry
	client   http.Client
}

// NewHTTPSender constructs a sender that resolves recipients through the
// specified registry.
func NewHTTPSender(registry *peer.Registry, timeout time.Duration) *HTTPSender {
	return &HTTPSender{
		registry: registry,
		client:   http.Client{Timeout: timeout},
	}
}

// Send posts the transaction notification to the recipient's registered
// host. A recipient without a registered endpoint is a delivery failure.
func (hs *HTTPSender) Send(ctx context.Context, to account.AccountID, n Notification) error {
	pr, exists := hs.registry.Lookup(to)
	if !exists {
		return fmt.Errorf("account %s has no notification endpoint", to)
	}

	data, err := json.Marshal(n)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v1/tx/notification", pr.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hs.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("endpoint %s returned status %d", url, resp.StatusCode)
	}

	return nil
}
