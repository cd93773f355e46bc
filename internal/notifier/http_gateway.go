package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shelfcheck/item-audit/internal/domain"
)

// HTTPGateway delivers notification requests by POSTing to the notifier
// service. The URL is injected from config so tests can point to a local mock.
type HTTPGateway struct {
	url        string
	httpClient *http.Client
}

func NewHTTPGateway(url string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send posts the request and expects a 202 Accepted response.
func (g *HTTPGateway) Send(ctx context.Context, n *domain.NotificationRequest) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected notifier status: %d", resp.StatusCode)
	}
	return nil
}

// compile-time check that HTTPGateway implements Gateway
var _ Gateway = (*HTTPGateway)(nil)
