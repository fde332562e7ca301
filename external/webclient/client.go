package webclient

import (
	"context"
	"crypto/tls"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/livescore/internal/platform/logging"
	"github.com/riskibarqy/livescore/internal/platform/resilience"
	"github.com/riskibarqy/livescore/internal/usecase"
)

// Score feeds sit behind bot-protection layers tuned for browsers, so the
// client presents itself as one and asks for uncompressed bodies.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0 Safari/537.36"

const maxBodyBytes = 6 << 20

var errTransient = crerr.New("transient upstream failure")

type Config struct {
	HTTPClient     *http.Client
	Timeout        time.Duration
	MaxRetries     int
	InsecureTLS    bool
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client is the shared fetch layer for every score provider: browser-shaped
// headers, bounded retries with linear backoff, and a circuit breaker in
// front of the socket.
type Client struct {
	httpClient     *http.Client
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.InsecureTLS {
			// Operators on intercepted corporate networks can relax TLS.
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// GetText fetches rawURL and returns the body as text.
func (c *Client) GetText(ctx context.Context, rawURL string) (string, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "circuit breaker rejected request",
				"host", hostOf(rawURL),
				"state", c.breaker.State(),
			)
			return "", fmt.Errorf("%w: %s is temporarily unavailable", usecase.ErrDependencyUnavailable, hostOf(rawURL))
		}
	}

	raw, err := c.executeRequest(ctx, rawURL)
	if c.circuitEnabled {
		if err != nil && stderrors.Is(err, errTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		return "", err
	}

	return string(raw), nil
}

// GetJSON fetches rawURL and decodes the body into target.
func (c *Client) GetJSON(ctx context.Context, rawURL string, target any) error {
	text, err := c.GetText(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal([]byte(text), target); err != nil {
		return fmt.Errorf("invalid JSON from %s: %w", hostOf(rawURL), err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", defaultUserAgent)
		req.Header.Set("Accept", "*/*")
		req.Header.Set("Accept-Encoding", "identity")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else {
				lastErr = fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, hostOf(rawURL), abbreviateBody(raw))
				if isRetryableStatus(resp.StatusCode) {
					lastErr = fmt.Errorf("%w: %v", errTransient, lastErr)
				} else {
					return nil, lastErr
				}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("request failed")
	}
	c.logger.WarnContext(ctx, "upstream request failed",
		"url", rawURL,
		"error", lastErr,
	)
	return nil, lastErr
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return parsed.Host
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
