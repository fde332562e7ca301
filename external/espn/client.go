package espn

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/livescore/external/webclient"
	"github.com/riskibarqy/livescore/internal/domain/match"
)

const (
	ProviderName = "espn"

	defaultBaseURL = "https://site.api.espn.com"
	scoreboardPath = "/apis/site/v2/sports/soccer/all/scoreboard"
)

// Client reads the public all-soccer scoreboard feed.
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
	var payload ScoreboardPayload
	if err := c.web.GetJSON(ctx, c.baseURL+scoreboardPath, &payload); err != nil {
		return nil, fmt.Errorf("fetch espn scoreboard: %w", err)
	}
	return ParseScoreboard(payload, match.UTCNowISO()), nil
}
