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
	ravenName = "ravenscans"
	ravenBase = "https://ravenscans.org"
)

// RavenScans reads ravenscans.org, a WordPress manga theme. Chapter
// rows live in .chbox containers whose link text carries the label on
// the first line and the release date on the second.
type RavenScans struct {
	session browse.Session
}

func NewRavenScans(s browse.Session) *RavenScans {
	return &RavenScans{session: s}
}

func (r *RavenScans) Name() string { return ravenName }

func (r *RavenScans) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	searchURL := ravenBase + "/?s=" + url.QueryEscape(query)

	if err := r.session.Navigate(ctx, searchURL); err != nil {
		return nil, &FetchError{Site: ravenName, URL: searchURL, Err: err}
	}
	if err := r.session.WaitFor(ctx, "article.item-thumb, .c-tabs-item__content", 10*time.Second); err != nil {
		log.Printf("[%s] no search results for %q: %v", ravenName, query, err)
		return nil, nil
	}

	var results []models.SearchResult
	seen := make(map[string]struct{})

	r.session.Document().Find("article.item-thumb, .post-title, .manga-item").Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a").First()
		if link.Length() == 0 {
			if goquery.NodeName(item) != "a" {
				return
			}
			link = item
		}

		href, ok := link.Attr("href")
		if !ok {
			return
		}
		abs := browse.AbsoluteURL(r.session.URL(), href)
		if _, dup := seen[abs]; dup {
			return
		}

		title := collapseWS(link.Text())
		if title == "" {
			title = collapseWS(item.Text())
		}
		if title == "" {
			return
		}

		seen[abs] = struct{}{}
		cover, _ := item.Find("img").First().Attr("src")

		results = append(results, models.SearchResult{
			Title:    title,
			URL:      abs,
			CoverURL: cover,
		})
	})

	log.Printf("[%s] %d results for %q", ravenName, len(results), query)
	return results, nil
}

func (r *RavenScans) ListChapters(ctx context.Context, itemURL string) ([]models.RawChapter, error) {
	if err := r.session.Navigate(ctx, itemURL); err != nil {
		return nil, &FetchError{Site: ravenName, URL: itemURL, Err: err}
	}
	if err := r.session.WaitFor(ctx, ".chbox", 10*time.Second); err != nil {
		log.Printf("[%s] no chapter boxes on %s: %v", ravenName, itemURL, err)
		return nil, nil
	}

	var entries []models.RawChapter

	r.session.Document().Find(".chbox .eph-num a").Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok {
			return
		}

		text := strings.TrimSpace(link.Text())
		if text == "" {
			return
		}

		// "Chapter 147\nSeptember 11, 2025"
		lines := strings.Split(text, "\n")
		label := strings.TrimSpace(lines[0])

		dateText := ""
		if len(lines) > 1 {
			dateText = strings.TrimSpace(lines[1])
		}
		if dateText == "" {
			dateText = extractDateText(text)
		}

		entries = append(entries, models.RawChapter{
			Label:    label,
			Title:    collapseWS(text),
			URL:      browse.AbsoluteURL(r.session.URL(), href),
			DateText: dateText,
		})
	})

	chapters := finishChapters(entries, time.Now())
	log.Printf("[%s] %d chapters on %s", ravenName, len(chapters), itemURL)
	return chapters, nil
}
