package search

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testClient(transport http.RoundTripper, maxRetries int) *Client {
	return &Client{
		httpClient: &http.Client{Transport: transport},
		throttle:   NewThrottle(0, 0),
		maxRetries: maxRetries,
		referer:    "https://www.bing.com/",
	}
}

func htmlResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestFetchResultPageRetriesTransientStatus(t *testing.T) {
	attempt := 0
	client := testClient(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		attempt++
		if r.Header.Get("User-Agent") == "" {
			t.Fatal("missing user agent")
		}
		if attempt == 1 {
			return htmlResponse(http.StatusTooManyRequests, "slow down"), nil
		}
		return htmlResponse(http.StatusOK, "<html>results</html>"), nil
	}), 2)

	body, err := client.FetchResultPage(context.Background(), "https://www.bing.com/search?q=test")
	if err != nil {
		t.Fatal(err)
	}
	if body != "<html>results</html>" {
		t.Fatalf("body=%q", body)
	}
	if attempt != 2 {
		t.Fatalf("attempts=%d", attempt)
	}
}

func TestFetchResultPageNonRetryableStatus(t *testing.T) {
	attempt := 0
	client := testClient(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		attempt++
		return htmlResponse(http.StatusNotFound, "gone"), nil
	}), 2)

	if _, err := client.FetchResultPage(context.Background(), "https://www.bing.com/search?q=test"); err == nil {
		t.Fatal("expected error")
	}
	if attempt != 1 {
		t.Fatalf("attempts=%d", attempt)
	}
}

func TestFetchResultPageDetectsBlockPage(t *testing.T) {
	client := testClient(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return htmlResponse(http.StatusOK, "<html>Please verify that you're not a robot</html>"), nil
	}), 0)

	_, err := client.FetchResultPage(context.Background(), "https://www.bing.com/search?q=test")
	if !errors.Is(err, ErrBlocked) {
		t.Fatalf("err=%v", err)
	}
}

func TestFetchResultPageExhaustsRetries(t *testing.T) {
	attempt := 0
	client := testClient(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		attempt++
		return htmlResponse(http.StatusServiceUnavailable, "down"), nil
	}), 2)

	if _, err := client.FetchResultPage(context.Background(), "https://www.bing.com/search?q=test"); err == nil {
		t.Fatal("expected error")
	}
	if attempt != 3 {
		t.Fatalf("attempts=%d", attempt)
	}
}
