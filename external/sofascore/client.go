package sofascore

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/livescore/external/webclient"
	"github.com/riskibarqy/livescore/internal/domain/match"
)

const (
	ProviderName = "sofascore"

	defaultBaseURL = "https://www.sofascore.com"
	liveEventsPath = "/api/v1/sport/football/events/live"
)

// Client reads the live football events feed.
type Client struct {
	web     *webclient.Client
	baseURL string
}

func NewClient(web *webclient.Client, baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{web: web, baseURL: baseURL}
}

func (c *Client) Name() string { return ProviderName }

func (c *Client) FetchMatches(ctx context.Context) ([]match.ProviderRow, error) {
	var payload LivePayload
	if err := c.web.GetJSON(ctx, c.baseURL+liveEventsPath, &payload); err != nil {
		return nil, fmt.Errorf("fetch sofascore live events: %w", err)
	}
	return ParseLivePayload(payload, match.UTCNowISO()), nil
}
