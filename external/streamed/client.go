package streamed

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/livescore/external/webclient"
	"github.com/riskibarqy/livescore/internal/domain/match"
)

const (
	ProviderName = "streamed"

	defaultBaseURL  = "https://streamed.pk"
	liveMatchesPath = "/api/matches/live"
)

// Client reads the live-matches listing. The feed carries no trustworthy
// score or status; it exists to discover watch URLs for fixtures the other
// providers already know about.
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
	var payload []ListedMatch
	if err := c.web.GetJSON(ctx, c.baseURL+liveMatchesPath, &payload); err != nil {
		return nil, fmt.Errorf("fetch streamed live matches: %w", err)
	}
	return ParseLivePayload(payload, c.baseURL, match.UTCNowISO()), nil
}
