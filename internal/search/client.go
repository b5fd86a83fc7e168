package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"leadflow/internal/config"
)

// ErrBlocked signals a CAPTCHA or anti-bot challenge page instead of
// real results. Callers treat it as "no result", never as fatal.
var ErrBlocked = errors.New("search engine blocked the request")

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

var blockMarkers = []string{
	"captcha",
	"verify that you're not a robot",
	"traffic from your computer network",
}

// Client fetches search result pages with throttling, rotating user
// agents and bounded retries on transient statuses.
type Client struct {
	httpClient *http.Client
	throttle   *Throttle
	maxRetries int
	referer    string
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.SearchTimeoutMs) * time.Millisecond},
		throttle: NewThrottle(
			time.Duration(cfg.SearchMinDelayMs)*time.Millisecond,
			time.Duration(cfg.SearchMaxDelayMs)*time.Millisecond,
		),
		maxRetries: cfg.SearchMaxRetries,
		referer:    "https://www.bing.com/",
	}
}

// FetchResultPage performs one throttled search request and returns the
// HTML body. A recognized block page returns ErrBlocked.
func (c *Client) FetchResultPage(ctx context.Context, searchURL string) (string, error) {
	var lastErr error
	attempts := c.maxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		c.throttle.WaitTurn()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Referer", c.referer)
		req.Header.Set("DNT", "1")
		req.Header.Set("Upgrade-Insecure-Requests", "1")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("search status %d", resp.StatusCode)
			if isRetryableStatus(resp.StatusCode) && attempt < attempts {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				continue
			}
			return "", lastErr
		}

		if looksBlocked(string(body)) {
			return "", ErrBlocked
		}
		return string(body), nil
	}

	if lastErr == nil {
		lastErr = errors.New("search request failed")
	}
	return "", lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func looksBlocked(body string) bool {
	lower := strings.ToLower(body)
	for _, marker := range blockMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
