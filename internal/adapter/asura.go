package adapter

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"scantrack/internal/browse"
	"scantrack/pkg/models"
)

const (
	asuraName = "asurascans"
	asuraBase = "https://asuracomic.net"
)

// AsuraScans reads asuracomic.net. Series pages list chapters as
// /chapter links inside the series grid; titles sit in h3 elements next
// to format tags ("MANHWA", "MANGA", ...) that must be skipped.
type AsuraScans struct {
	session browse.Session
}

func NewAsuraScans(s browse.Session) *AsuraScans {
	return &AsuraScans{session: s}
}

func (a *AsuraScans) Name() string { return asuraName }

func (a *AsuraScans) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	searchURL := asuraBase + "/series?name=" + url.QueryEscape(query)

	if err := a.session.Navigate(ctx, searchURL); err != nil {
		return nil, &FetchError{Site: asuraName, URL: searchURL, Err: err}
	}
	if err := a.session.WaitFor(ctx, ".grid", 10*time.Second); err != nil {
		// no results grid rendered: treat as nothing found
		log.Printf("[%s] no result grid for %q: %v", asuraName, query, err)
		return nil, nil
	}

	var results []models.SearchResult
	seen := make(map[string]struct{})

	a.session.Document().Find(`.grid a[href*="series/"]`).Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		abs := browse.AbsoluteURL(a.session.URL(), href)
		if _, dup := seen[abs]; dup {
			return
		}

		title := asuraTitle(link)
		if title == "" {
			return
		}

		seen[abs] = struct{}{}
		cover, _ := link.Find("img").First().Attr("src")
		if cover == "" {
			cover, _ = link.Find("img").First().Attr("data-src")
		}

		results = append(results, models.SearchResult{
			Title:    title,
			URL:      abs,
			CoverURL: cover,
		})
	})

	log.Printf("[%s] %d results for %q", asuraName, len(results), query)
	return results, nil
}

// asuraTitle digs the series title out of a result card, skipping the
// format badges.
func asuraTitle(link *goquery.Selection) string {
	var title string
	link.Find("h3, span").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		text := collapseWS(el.Text())
		switch strings.ToUpper(text) {
		case "", "MANHWA", "MANGA", "MANHUA", "WEBTOON":
			return true
		}
		if len(text) > 2 {
			title = text
			return false
		}
		return true
	})
	return title
}

func (a *AsuraScans) ListChapters(ctx context.Context, itemURL string) ([]models.RawChapter, error) {
	if err := a.session.Navigate(ctx, itemURL); err != nil {
		return nil, &FetchError{Site: asuraName, URL: itemURL, Err: err}
	}
	if err := a.session.WaitFor(ctx, `a[href*="/chapter"]`, 10*time.Second); err != nil {
		log.Printf("[%s] no chapter list on %s: %v", asuraName, itemURL, err)
		return nil, nil
	}

	// The weekly/monthly tabs are client-side; when the "All" tab is a
	// real link, follow it, otherwise the full list is already present.
	if err := a.session.Click(ctx, `[role="tab"][data-value="all"]`); err == nil {
		_ = a.session.WaitFor(ctx, `a[href*="/chapter"]`, 5*time.Second)
	}

	var entries []models.RawChapter
	seen := make(map[string]struct{})

	a.session.Document().Find(`a[href*="/chapter"]`).Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		abs := browse.AbsoluteURL(a.session.URL(), href)
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}

		label := collapseWS(link.Find("h3").First().Text())
		if label == "" {
			label = collapseWS(link.Text())
		}
		if label == "" {
			return
		}

		entries = append(entries, models.RawChapter{
			Label:    label,
			Title:    label,
			URL:      abs,
			DateText: extractDateText(link.Text()),
		})
	})

	chapters := finishChapters(entries, time.Now())
	log.Printf("[%s] %d chapters on %s", asuraName, len(chapters), itemURL)
	return chapters, nil
}
