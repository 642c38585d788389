package services

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

var (
	parenthetical = regexp.MustCompile(`\([^()]*\)`)
	bracketed     = regexp.MustCompile(`\[[^\[\]]*\]`)
)

// CleanQuery builds the search string "{performer} {title}" with parenthetical and bracketed annotations
// such as "(feat. X)" or "[Remastered]" removed and whitespace collapsed.
//
// Applying it to its own output yields the same string.
func CleanQuery(performer, title string) string {
	q := strings.TrimSpace(performer + " " + title)
	for {
		next := bracketed.ReplaceAllString(parenthetical.ReplaceAllString(q, " "), " ")
		if next == q {
			break
		}
		q = next
	}
	return strings.Join(strings.Fields(q), " ")
}

// MatchScore is the Jaro-Winkler similarity of a search query and a hit, in [0, 1].
func MatchScore(query, hit string) float64 {
	if query == "" || hit == "" {
		return 0
	}
	jw := metrics.NewJaroWinkler()
	jw.CaseSensitive = false
	return strutil.Similarity(strings.TrimSpace(query), CleanQuery(hit, ""), jw)
}

// SpotifySearchURL returns the web player search page for query.
func SpotifySearchURL(query string) string {
	return "https://open.spotify.com/search/" + url.PathEscape(query)
}

// YandexSearchURL returns the Yandex Music search page for query.
func YandexSearchURL(query string) string {
	return "https://music.yandex.ru/search?" + url.Values{"text": {query}}.Encode()
}

// MTSSearchURL returns the MTS Music search page for query.
func MTSSearchURL(query string) string {
	return "https://music.mts.ru/search?" + url.Values{"text": {query}}.Encode()
}
