package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ravenSeriesHTML = `<html><body>
<div class="chbox"><div class="eph-num">
  <a href="/solo-max/chapter-147">Chapter 147
September 11, 2025</a>
</div></div>
<div class="chbox"><div class="eph-num">
  <a href="/solo-max/chapter-2">Chapter 2
June 1, 2025</a>
</div></div>
<div class="chbox"><div class="eph-num">
  <a href="/solo-max/chapter-2-bis">Ch. 2
June 1, 2025</a>
</div></div>
<div class="chbox"><div class="eph-num">
  <a href="/solo-max/chapter-10">Chapter 10
July 4, 2025</a>
</div></div>
</body></html>`

func TestRavenScansListChapters(t *testing.T) {
	itemURL := "https://ravenscans.org/manga/solo-max"
	s := newFakeSession(map[string]string{itemURL: ravenSeriesHTML})

	chapters, err := NewRavenScans(s).ListChapters(context.Background(), itemURL)
	require.NoError(t, err)

	// duplicate key "2" collapsed, numeric order oldest -> newest
	require.Len(t, chapters, 3)
	assert.Equal(t, "Chapter 2", chapters[0].Label)
	assert.Equal(t, "Chapter 10", chapters[1].Label)
	assert.Equal(t, "Chapter 147", chapters[2].Label)

	assert.Equal(t, "https://ravenscans.org/solo-max/chapter-147", chapters[2].URL)
	assert.Equal(t, "September 11, 2025", chapters[2].DateText)
}

func TestRavenScansListChaptersEmptyPage(t *testing.T) {
	itemURL := "https://ravenscans.org/manga/gone"
	s := newFakeSession(map[string]string{itemURL: `<html><body><p>nothing</p></body></html>`})

	chapters, err := NewRavenScans(s).ListChapters(context.Background(), itemURL)
	require.NoError(t, err)
	assert.Empty(t, chapters)
}

func TestRavenScansListChaptersNavigateFailure(t *testing.T) {
	s := newFakeSession(nil) // every Navigate fails

	_, err := NewRavenScans(s).ListChapters(context.Background(), "https://ravenscans.org/manga/x")
	require.Error(t, err)

	var fe *FetchError
	assert.ErrorAs(t, err, &fe)
	assert.Equal(t, "ravenscans", fe.Site)
}

func TestRavenScansSearch(t *testing.T) {
	s := newFakeSession(map[string]string{
		"https://ravenscans.org/?s=solo": `<html><body>
			<article class="item-thumb">
				<a href="/manga/solo-max">Solo Max</a>
				<img src="/covers/solo.jpg"/>
			</article>
			<article class="item-thumb">
				<a href="/manga/solo-min">Solo Min</a>
			</article>
		</body></html>`,
	})

	results, err := NewRavenScans(s).Search(context.Background(), "solo")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "Solo Max", results[0].Title)
	assert.Equal(t, "https://ravenscans.org/manga/solo-max", results[0].URL)
	assert.Equal(t, "/covers/solo.jpg", results[0].CoverURL)
}

func TestRavenScansSearchNoResults(t *testing.T) {
	s := newFakeSession(map[string]string{
		"https://ravenscans.org/?s=nothing": `<html><body><p>No results</p></body></html>`,
	})

	results, err := NewRavenScans(s).Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAsuraScansSearch(t *testing.T) {
	s := newFakeSession(map[string]string{
		"https://asuracomic.net/series?name=blade": `<html><body>
			<div class="grid">
				<a href="series/blade-of-dawn">
					<img data-src="/covers/blade.webp"/>
					<span>MANHWA</span>
					<h3>Blade of Dawn</h3>
				</a>
				<a href="series/blade-of-dusk">
					<h3>Blade of Dusk</h3>
				</a>
			</div>
		</body></html>`,
	})

	results, err := NewAsuraScans(s).Search(context.Background(), "blade")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "Blade of Dawn", results[0].Title)
	assert.Equal(t, "https://asuracomic.net/series/blade-of-dawn", results[0].URL)
	assert.Equal(t, "/covers/blade.webp", results[0].CoverURL)
}

func TestAsuraScansListChapters(t *testing.T) {
	itemURL := "https://asuracomic.net/series/blade-of-dawn"
	s := newFakeSession(map[string]string{itemURL: `<html><body>
		<a href="/series/blade-of-dawn/chapter/3"><h3>Chapter 3</h3><h3>January 2nd 2026</h3></a>
		<a href="/series/blade-of-dawn/chapter/1"><h3>Chapter 1</h3><h3>2 weeks ago</h3></a>
		<a href="/series/blade-of-dawn/chapter/1"><h3>Chapter 1</h3><h3>2 weeks ago</h3></a>
	</body></html>`})

	chapters, err := NewAsuraScans(s).ListChapters(context.Background(), itemURL)
	require.NoError(t, err)

	require.Len(t, chapters, 2)
	assert.Equal(t, "Chapter 1", chapters[0].Label)
	assert.Equal(t, "Chapter 3", chapters[1].Label)
	assert.Equal(t, "January 2nd 2026", chapters[1].DateText)
}

func TestMadaraScansListChaptersPaginates(t *testing.T) {
	itemURL := "https://madarascans.com/manga/iron-crown"
	s := newFakeSession(map[string]string{
		itemURL: `<html><body><ul>
			<li class="wp-manga-chapter">
				<a href="/manga/iron-crown/chapter-2/">Chapter 2</a>
				<span class="chapter-release-date">2 days ago</span>
			</li>
			<li class="wp-manga-chapter">
				<a href="/manga/iron-crown/chapter-1/">Chapter 1</a>
				<span class="chapter-release-date">3 days ago</span>
			</li>
		</ul>
		<a class="load-more-chapters" href="/manga/iron-crown/page/2/">Load more</a>
		</body></html>`,
		"https://madarascans.com/manga/iron-crown/page/2/": `<html><body><ul>
			<li class="wp-manga-chapter">
				<a href="/manga/iron-crown/chapter-0-5/">Ch. 0.5</a>
				<span class="chapter-release-date">January 3, 2025</span>
			</li>
		</ul></body></html>`,
	})

	chapters, err := NewMadaraScans(s).ListChapters(context.Background(), itemURL)
	require.NoError(t, err)

	require.Len(t, chapters, 3)
	assert.Equal(t, "Ch. 0.5", chapters[0].Label)
	assert.Equal(t, "Chapter 1", chapters[1].Label)
	assert.Equal(t, "Chapter 2", chapters[2].Label)
	assert.Equal(t, "https://madarascans.com/manga/iron-crown/chapter-2/", chapters[2].URL)
}

func TestMadaraScansSearch(t *testing.T) {
	s := newFakeSession(map[string]string{
		"https://madarascans.com/?s=iron&post_type=wp-manga": `<html><body>
			<div class="c-tabs-item__content">
				<div class="post-title"><h3><a href="/manga/iron-crown/">Iron Crown</a></h3></div>
				<img src="/covers/iron.jpg"/>
			</div>
		</body></html>`,
	})

	results, err := NewMadaraScans(s).Search(context.Background(), "iron")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "Iron Crown", results[0].Title)
	assert.Equal(t, "https://madarascans.com/manga/iron-crown/", results[0].URL)
}
