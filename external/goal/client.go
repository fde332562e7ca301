package goal

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/livescore/external/webclient"
	"github.com/riskibarqy/livescore/internal/domain/match"
)

const (
	ProviderName = "goal"

	defaultBaseURL = "https://www.goal.com"
	liveScoresPath = "/en/live-scores"
)

// Client scrapes the live-scores page. Goal ships the structured match data
// inside the page's Next.js bootstrap script, so this is an HTML fetch plus
// an embedded-JSON parse, not a DOM walk.
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
	html, err := c.web.GetText(ctx, c.baseURL+liveScoresPath)
	if err != nil {
		return nil, fmt.Errorf("fetch goal live scores: %w", err)
	}
	return ParseLiveScoresHTML(html)
}
