package adapter

import (
	"context"
	"log"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"scantrack/internal/browse"
	"scantrack/pkg/models"
)

const (
	madaraName = "madarascans"
	madaraBase = "https://madarascans.com"

	// safety cap on "load more" pagination
	madaraMaxPages = 20
)

// MadaraScans reads madarascans.com (stock Madara WordPress layout).
// Long series paginate their chapter list behind a "load more" control,
// so extraction loops over pages until the control disappears.
type MadaraScans struct {
	session browse.Session
}

func NewMadaraScans(s browse.Session) *MadaraScans {
	return &MadaraScans{session: s}
}

func (m *MadaraScans) Name() string { return madaraName }

func (m *MadaraScans) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	searchURL := madaraBase + "/?s=" + url.QueryEscape(query) + "&post_type=wp-manga"

	if err := m.session.Navigate(ctx, searchURL); err != nil {
		return nil, &FetchError{Site: madaraName, URL: searchURL, Err: err}
	}
	if err := m.session.WaitFor(ctx, ".c-tabs-item__content", 10*time.Second); err != nil {
		log.Printf("[%s] no search results for %q: %v", madaraName, query, err)
		return nil, nil
	}

	var results []models.SearchResult
	seen := make(map[string]struct{})

	m.session.Document().Find(".c-tabs-item__content").Each(func(_ int, item *goquery.Selection) {
		link := item.Find(".post-title a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		abs := browse.AbsoluteURL(m.session.URL(), href)
		if _, dup := seen[abs]; dup {
			return
		}

		title := collapseWS(link.Text())
		if title == "" {
			return
		}

		seen[abs] = struct{}{}
		cover, _ := item.Find("img").First().Attr("src")
		if cover == "" {
			cover, _ = item.Find("img").First().Attr("data-src")
		}

		results = append(results, models.SearchResult{
			Title:    title,
			URL:      abs,
			CoverURL: cover,
		})
	})

	log.Printf("[%s] %d results for %q", madaraName, len(results), query)
	return results, nil
}

func (m *MadaraScans) ListChapters(ctx context.Context, itemURL string) ([]models.RawChapter, error) {
	if err := m.session.Navigate(ctx, itemURL); err != nil {
		return nil, &FetchError{Site: madaraName, URL: itemURL, Err: err}
	}
	if err := m.session.WaitFor(ctx, "li.wp-manga-chapter", 10*time.Second); err != nil {
		log.Printf("[%s] no chapter list on %s: %v", madaraName, itemURL, err)
		return nil, nil
	}

	var entries []models.RawChapter
	seenURL := make(map[string]struct{})

	for page := 0; page < madaraMaxPages; page++ {
		m.collectPage(&entries, seenURL)

		// keep loading until the control is gone; a failed click just
		// means the list is complete
		if err := m.session.Click(ctx, "a.load-more-chapters, .chapter-readmore a"); err != nil {
			break
		}
		if err := m.session.WaitFor(ctx, "li.wp-manga-chapter", 5*time.Second); err != nil {
			break
		}
	}

	chapters := finishChapters(entries, time.Now())
	log.Printf("[%s] %d chapters on %s", madaraName, len(chapters), itemURL)
	return chapters, nil
}

func (m *MadaraScans) collectPage(entries *[]models.RawChapter, seenURL map[string]struct{}) {
	m.session.Document().Find("li.wp-manga-chapter").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		abs := browse.AbsoluteURL(m.session.URL(), href)
		if _, dup := seenURL[abs]; dup {
			return
		}
		seenURL[abs] = struct{}{}

		label := collapseWS(link.Text())
		if label == "" {
			return
		}

		dateText := collapseWS(row.Find(".chapter-release-date").First().Text())
		if dateText == "" {
			dateText = extractDateText(row.Text())
		}

		*entries = append(*entries, models.RawChapter{
			Label:    label,
			Title:    label,
			URL:      abs,
			DateText: dateText,
		})
	})
}
