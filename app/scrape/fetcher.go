package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go"
)

type Fetcher struct {
	httpClient *http.Client
	baseUrl    string
	userAgent  string
	attempts   uint
	backoff    time.Duration
}

// NewFetcher configures page fetching. retries is the number of additional
// attempts after the first one; 0 means a single attempt.
func NewFetcher(baseUrl string, userAgent string, retries int, backoff time.Duration) *Fetcher {
	if retries < 0 {
		retries = 0
	}

	return &Fetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseUrl:    baseUrl,
		userAgent:  userAgent,
		attempts:   uint(retries) + 1,
		backoff:    backoff,
	}
}

// Run fetches one listing page. Transport errors and non-200 responses are
// retried with exponential backoff until the configured attempts are
// exhausted, then the last cause is returned.
func (f *Fetcher) Run(ctx context.Context, page int) ([]byte, error) {
	pageUrl, err := f.buildPageUrl(page)
	if err != nil {
		return nil, fmt.Errorf("failed to build page URL: %w", err)
	}

	var data []byte

	err = retry.Do(
		func() error {
			var fetchErr error
			data, fetchErr = f.fetchPage(ctx, pageUrl)
			return fetchErr
		},
		retry.Attempts(f.attempts),
		retry.Delay(f.backoff),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
	}

	return data, nil
}

func (f *Fetcher) buildPageUrl(page int) (string, error) {
	parsed, err := url.Parse(f.baseUrl)
	if err != nil {
		return "", err
	}

	query := parsed.Query()
	query.Set("page", strconv.Itoa(page))
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

func (f *Fetcher) fetchPage(ctx context.Context, pageUrl string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
