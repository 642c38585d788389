package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/desertthunder/multilink/internal/shared"
)

const (
	maxPageBytes = 2 << 20

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	// Spotify only renders OpenGraph tags for link-preview crawlers.
	previewUserAgent = "TelegramBot (like Twitterbot) Android"
)

// PageMeta is the subset of a track page's markup used to identify the track.
type PageMeta struct {
	Title       string // og:title
	Description string // og:description
	Musician    string // music:musician_description
	DocTitle    string // <title>
	FinalURL    *url.URL
}

// Empty reports whether no usable metadata was found.
func (m *PageMeta) Empty() bool {
	return m.Title == "" && m.Description == "" && m.Musician == "" && m.DocTitle == ""
}

// Check returns [shared.ErrMetadataNotFound] for a page that carried none of the tags read here.
func (m *PageMeta) Check() error {
	if m.Empty() {
		return fmt.Errorf("%w: %s", shared.ErrMetadataNotFound, m.FinalURL)
	}
	return nil
}

// TrackTitle is og:title, or the document title when the page has no OpenGraph title.
func (m *PageMeta) TrackTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.DocTitle
}

func metaContent(doc *goquery.Document, key string) string {
	sel := doc.Find(fmt.Sprintf(`meta[property=%q], meta[name=%q]`, key, key)).First()
	return strings.TrimSpace(sel.AttrOr("content", ""))
}

// fetchPage downloads rawURL, following redirects, and parses its OpenGraph metadata.
func fetchPage(ctx context.Context, client *http.Client, rawURL, userAgent string) (*PageMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", shared.ErrAPIRequest, req.URL.Host, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	meta := &PageMeta{
		Title:       metaContent(doc, "og:title"),
		Description: metaContent(doc, "og:description"),
		Musician:    metaContent(doc, "music:musician_description"),
		DocTitle:    strings.TrimSpace(doc.Find("title").First().Text()),
		FinalURL:    req.URL,
	}
	if resp.Request != nil && resp.Request.URL != nil {
		meta.FinalURL = resp.Request.URL
	}
	return meta, nil
}
