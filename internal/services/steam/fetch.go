package steam

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
)

// Fetcher returns the raw body of a URL. Implementations do not retry.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

const defaultMaxBodySize = 64 << 20

// CollyFetcher fetches URLs with a fresh colly collector per request so each
// call carries its own context and revisits are always allowed.
type CollyFetcher struct {
	userAgent   string
	timeout     time.Duration
	maxBodySize int
}

var _ Fetcher = (*CollyFetcher)(nil)

// NewCollyFetcher builds a fetcher. A zero timeout keeps colly's default.
func NewCollyFetcher(userAgent string, timeout time.Duration) *CollyFetcher {
	return &CollyFetcher{userAgent: userAgent, timeout: timeout, maxBodySize: defaultMaxBodySize}
}

// Fetch performs a GET and returns the body of a 2xx response.
func (f *CollyFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	)
	if f.userAgent != "" {
		c.UserAgent = f.userAgent
	}
	if f.timeout > 0 {
		c.SetRequestTimeout(f.timeout)
	}
	c.MaxBodySize = f.maxBodySize

	var (
		body   []byte
		status int
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	var fetchErr error
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	requestStart := time.Now()
	err := c.Visit(url)
	latency := time.Since(requestStart)
	if err == nil {
		err = fetchErr
	}
	if err != nil {
		if status != 0 {
			return nil, fmt.Errorf("fetch %s returned %d (latency=%v): %w", url, status, latency, err)
		}
		return nil, fmt.Errorf("fetch %s (latency=%v): %w", url, latency, err)
	}
	return body, nil
}
