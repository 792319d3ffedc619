package adapter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"scantrack/internal/browse"
)

// fakeSession serves canned HTML per URL, implementing browse.Session
// without any network.
type fakeSession struct {
	pages   map[string]string
	current string
	doc     *goquery.Document
	closed  bool
}

var _ browse.Session = (*fakeSession)(nil)

func newFakeSession(pages map[string]string) *fakeSession {
	return &fakeSession{pages: pages}
}

func (f *fakeSession) Navigate(_ context.Context, url string) error {
	html, ok := f.pages[url]
	if !ok {
		return fmt.Errorf("fake: no page for %s", url)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return err
	}
	f.doc = doc
	f.current = url
	return nil
}

func (f *fakeSession) WaitFor(_ context.Context, selector string, _ time.Duration) error {
	if f.doc == nil || f.doc.Find(selector).Length() == 0 {
		return fmt.Errorf("fake: selector %q not found on %s", selector, f.current)
	}
	return nil
}

func (f *fakeSession) Click(ctx context.Context, selector string) error {
	if f.doc == nil {
		return fmt.Errorf("fake: no document")
	}
	el := f.doc.Find(selector).First()
	if el.Length() == 0 {
		return fmt.Errorf("fake: click %q: no match", selector)
	}
	href, ok := el.Attr("href")
	if !ok || href == "" {
		return fmt.Errorf("fake: click %q: no href", selector)
	}
	return f.Navigate(ctx, browse.AbsoluteURL(f.current, href))
}

func (f *fakeSession) Document() *goquery.Document { return f.doc }

func (f *fakeSession) URL() string { return f.current }

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}
