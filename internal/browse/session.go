// Package browse provides the page-session capability that site
// adapters consume: navigate to a URL, wait for a page region, extract
// from the rendered document, and click pagination controls. Adapters
// never talk to the network directly.
package browse

import (
	"context"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Session is one browsing session. Its lifecycle (open/close) is owned
// by the caller, not by the adapters it is handed to.
type Session interface {
	// Navigate loads the given URL and replaces the current document.
	Navigate(ctx context.Context, url string) error

	// WaitFor blocks until the selector matches something in the
	// current document or the timeout elapses.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error

	// Click activates the first element matching the selector
	// (pagination links, "load more" controls).
	Click(ctx context.Context, selector string) error

	// Document returns the current document, nil before the first
	// successful Navigate.
	Document() *goquery.Document

	// URL returns the current location.
	URL() string

	Close() error
}

// Factory opens a fresh Session. The tracking engine gives each worker
// its own session and guarantees release on all exit paths.
type Factory func() (Session, error)

// AbsoluteURL resolves href against base. Relative hrefs are common in
// chapter lists; anything unparseable comes back unchanged.
func AbsoluteURL(base, href string) string {
	if href == "" {
		return base
	}

	u, err := url.Parse(href)
	if err == nil && u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	return b.ResolveReference(u).String()
}
