// Package webclient wraps a browser-impersonating HTTP client for the
// marketplace. Workana serves different markup to obvious bots, so both the
// scraper and the submitter ride a Chrome TLS profile with realistic headers.
package webclient

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	fhttpcookiejar "github.com/bogdanfinn/fhttp/cookiejar"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

// userAgents are rotated per request; all current desktop browsers.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// Client is a cookie-carrying HTTP client with a Chrome TLS fingerprint.
type Client struct {
	http tls_client.HttpClient
}

// New creates a client with its own cookie jar and the given request timeout.
func New(timeout time.Duration) (*Client, error) {
	jar, err := fhttpcookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	httpClient, err := tls_client.NewHttpClient(
		tls_client.NewNoopLogger(),
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithTimeoutSeconds(int(timeout.Seconds())),
		tls_client.WithCookieJar(jar),
	)
	if err != nil {
		return nil, fmt.Errorf("create tls client: %w", err)
	}

	return &Client{http: httpClient}, nil
}

// Do sends the request, filling in a random user agent when none is set.
func (c *Client) Do(req *fhttp.Request) (*fhttp.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgents[rand.IntN(len(userAgents))])
	}
	return c.http.Do(req)
}

// Get issues a GET for target.
func (c *Client) Get(ctx context.Context, target string) (*fhttp.Response, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", target, err)
	}
	return c.Do(req)
}

// SetCookies seeds the jar for u, e.g. from an exported login session.
func (c *Client) SetCookies(u *url.URL, cookies []*fhttp.Cookie) {
	c.http.SetCookies(u, cookies)
}
