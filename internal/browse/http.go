package browse

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	browser "github.com/EDDYCJY/fake-useragent"
	"github.com/PuerkitoBio/goquery"
)

// HTTPSession implements Session over plain HTTP with a parsed DOM.
// "Click" follows the matched element's href; WaitFor re-fetches the
// page until the selector appears. Good enough for the supported sites,
// which render their chapter lists server-side.
type HTTPSession struct {
	client  *http.Client
	doc     *goquery.Document
	current string
}

type Options struct {
	Timeout   time.Duration
	UserAgent string // empty picks a rotated desktop UA
}

func NewHTTPSession(opts Options) *HTTPSession {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = browser.Computer()
	}

	jar, _ := cookiejar.New(nil)

	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        16,
		MaxIdleConnsPerHost: 4,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPSession{
		client: &http.Client{
			Timeout: opts.Timeout,
			Jar:     jar,
			Transport: uaTransport{
				// scanlator sites sit behind Cloudflare more often than not
				base: cloudflarebp.AddCloudFlareByPass(base),
				ua:   ua,
			},
		},
	}
}

// NewFactory returns a Factory producing independent HTTP sessions with
// the given options.
func NewFactory(opts Options) Factory {
	return func() (Session, error) {
		return NewHTTPSession(opts), nil
	}
}

type uaTransport struct {
	base http.RoundTripper
	ua   string
}

func (t uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.ua)
	}
	return t.base.RoundTrip(req)
}

func (s *HTTPSession) Navigate(ctx context.Context, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := doWithRetry(s.client, req, 3, 500*time.Millisecond)
	if err != nil {
		return fmt.Errorf("get %s: %w", target, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("get %s: HTTP %d", target, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("parse %s: %w", target, err)
	}

	s.doc = doc
	s.current = target
	return nil
}

func (s *HTTPSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		if s.doc != nil && s.doc.Find(selector).Length() > 0 {
			return nil
		}
		if time.Now().After(deadline) || s.current == "" {
			return fmt.Errorf("selector %q not found on %s", selector, s.current)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}

		// static pages don't change, but a refetch gets past partial
		// responses and soft rate limits
		if err := s.Navigate(ctx, s.current); err != nil {
			return err
		}
	}
}

func (s *HTTPSession) Click(ctx context.Context, selector string) error {
	if s.doc == nil {
		return fmt.Errorf("click %q: no document loaded", selector)
	}

	el := s.doc.Find(selector).First()
	if el.Length() == 0 {
		return fmt.Errorf("click %q: no match on %s", selector, s.current)
	}

	href, ok := el.Attr("href")
	if !ok || href == "" {
		return fmt.Errorf("click %q: element has no href", selector)
	}

	return s.Navigate(ctx, AbsoluteURL(s.current, href))
}

func (s *HTTPSession) Document() *goquery.Document { return s.doc }

func (s *HTTPSession) URL() string { return s.current }

func (s *HTTPSession) Close() error {
	s.client.CloseIdleConnections()
	s.doc = nil
	return nil
}

// doWithRetry executes the request with a simple linear-backoff retry,
// retrying transport errors and 5xx responses.
func doWithRetry(c *http.Client, req *http.Request, attempts int, backoff time.Duration) (*http.Response, error) {
	var resp *http.Response
	var err error

	for i := 1; i <= attempts; i++ {
		resp, err = c.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}

		if i == attempts {
			break
		}

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(backoff * time.Duration(i)):
		}
	}

	if err == nil && resp != nil {
		return nil, fmt.Errorf("HTTP %d after %d attempts", resp.StatusCode, attempts)
	}
	return nil, err
}
