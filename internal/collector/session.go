package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultQueryURL  = "https://query2.finance.yahoo.com"
	DefaultCookieURL = "https://fc.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 2.0 // requests per second
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// ErrUnauthorized is returned when the provider keeps rejecting the session.
var ErrUnauthorized = errors.New("yahoo rejected session")

// StatusError carries a non-200 response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// YahooFetcher fetches market data from the public Yahoo Finance endpoints.
// The crumb and cookie pair is negotiated lazily and rotated, together with
// the user agent, whenever the provider answers 401, 403 or 429.
type YahooFetcher struct {
	queryURL  string
	cookieURL string
	client    *http.Client
	transport *http.Transport
	limiter   *rate.Limiter
	log       zerolog.Logger
	now       func() time.Time

	mu      sync.Mutex
	crumb   string
	uaIndex int
}

// Option configures a YahooFetcher.
type Option func(*YahooFetcher)

// WithQueryURL overrides the API host, mostly for tests. Empty keeps the default.
func WithQueryURL(u string) Option {
	return func(f *YahooFetcher) {
		if u != "" {
			f.queryURL = strings.TrimRight(u, "/")
		}
	}
}

// WithCookieURL overrides the endpoint used to obtain the session cookie.
func WithCookieURL(u string) Option {
	return func(f *YahooFetcher) {
		if u != "" {
			f.cookieURL = u
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(f *YahooFetcher) { f.log = l.With().Str("fetcher", "yahoo").Logger() }
}

// WithRateLimit sets the sustained request rate. Zero or less disables it.
func WithRateLimit(perSecond float64) Option {
	return func(f *YahooFetcher) {
		if perSecond <= 0 {
			f.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		f.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

func WithTimeout(d time.Duration) Option {
	return func(f *YahooFetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithProxy routes every request through the given proxy URL.
func WithProxy(proxy string) Option {
	return func(f *YahooFetcher) {
		if proxy == "" {
			return
		}
		u, err := url.Parse(proxy)
		if err != nil {
			f.log.Warn().Err(err).Str("proxy", proxy).Msg("ignoring invalid proxy")
			return
		}
		f.transport.Proxy = http.ProxyURL(u)
	}
}

// NewYahooFetcher creates a fetcher with its own cookie jar.
func NewYahooFetcher(opts ...Option) *YahooFetcher {
	jar, _ := cookiejar.New(nil)
	transport := http.DefaultTransport.(*http.Transport).Clone()
	f := &YahooFetcher{
		queryURL:  DefaultQueryURL,
		cookieURL: DefaultCookieURL,
		transport: transport,
		client:    &http.Client{Timeout: DefaultTimeout, Jar: jar, Transport: transport},
		limiter:   rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		log:       zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) userAgent() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return userAgents[f.uaIndex%len(userAgents)]
}

// rotate drops the crumb and moves to the next user agent.
func (f *YahooFetcher) rotate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.crumb = ""
	f.uaIndex++
	f.log.Debug().Int("ua", f.uaIndex%len(userAgents)).Msg("rotated session")
}

func (f *YahooFetcher) ensureCrumb(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.crumb != "" {
		return f.crumb, nil
	}
	ua := userAgents[f.uaIndex%len(userAgents)]

	// The cookie endpoint answers 404 but still sets the session cookie.
	if _, _, err := f.do(ctx, f.cookieURL, ua); err != nil {
		return "", fmt.Errorf("fetch cookie: %w", err)
	}
	status, body, err := f.do(ctx, f.queryURL+"/v1/test/getcrumb", ua)
	if err != nil {
		return "", fmt.Errorf("fetch crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(body))
	if status != http.StatusOK || crumb == "" || strings.Contains(crumb, "<") {
		return "", fmt.Errorf("%w: crumb status %d", ErrUnauthorized, status)
	}
	f.crumb = crumb
	f.log.Debug().Msg("negotiated crumb")
	return crumb, nil
}

func (f *YahooFetcher) do(ctx context.Context, rawURL, ua string) (int, []byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "application/json,text/plain,*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// get performs an API call, retrying once with a fresh session when the
// provider rejects the current one.
func (f *YahooFetcher) get(ctx context.Context, path string, params url.Values, withCrumb bool) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		q := url.Values{}
		for k, v := range params {
			q[k] = v
		}
		if withCrumb {
			crumb, err := f.ensureCrumb(ctx)
			if err != nil {
				lastErr = err
				f.rotate()
				continue
			}
			q.Set("crumb", crumb)
		}

		status, body, err := f.do(ctx, f.queryURL+path+"?"+q.Encode(), f.userAgent())
		if err != nil {
			return nil, err
		}
		switch status {
		case http.StatusOK:
			return body, nil
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
			f.log.Warn().Int("status", status).Str("path", path).Int("attempt", attempt+1).Msg("session rejected")
			lastErr = fmt.Errorf("%w: %d", ErrUnauthorized, status)
			f.rotate()
		case http.StatusNotFound:
			return nil, ErrNoData
		default:
			return nil, &StatusError{Status: status, Body: truncate(string(body), 200)}
		}
	}
	return nil, lastErr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
