// Yandex Music implementation of [Service]
//
// The API is undocumented; response shapes follow what api.music.yandex.net returns to its own clients.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/multilink/internal/models"
	"github.com/desertthunder/multilink/internal/shared"
)

const (
	yandexBaseURL     = "https://api.music.yandex.net"
	yandexTitleSuffix = " слушать онлайн на Яндекс Музыке"
)

// flexID accepts ids encoded as either JSON numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	*f = flexID(strings.Trim(string(b), `"`))
	return nil
}

type yandexArtist struct {
	Name string `json:"name"`
}

type yandexAlbum struct {
	ID flexID `json:"id"`
}

// YandexTrack is a track object as returned by the tracks and search endpoints.
type YandexTrack struct {
	ID      flexID         `json:"id"`
	Title   string         `json:"title"`
	Version string         `json:"version"`
	Artists []yandexArtist `json:"artists"`
	Albums  []yandexAlbum  `json:"albums"`
}

func (t YandexTrack) performer() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, ", ")
}

// URL returns the canonical web link for the track.
func (t YandexTrack) URL() string {
	if len(t.Albums) > 0 && t.Albums[0].ID != "" {
		return fmt.Sprintf("https://music.yandex.ru/album/%s/track/%s", t.Albums[0].ID, t.ID)
	}
	return fmt.Sprintf("https://music.yandex.ru/track/%s", t.ID)
}

type yandexTracksResponse struct {
	Result []YandexTrack `json:"result"`
}

type yandexSearchResponse struct {
	Result struct {
		Best *struct {
			Type   string          `json:"type"`
			Result json.RawMessage `json:"result"`
		} `json:"best"`
		Tracks *struct {
			Results []YandexTrack `json:"results"`
		} `json:"tracks"`
	} `json:"result"`
}

// YandexService implements [Service] for Yandex Music.
type YandexService struct {
	base
	api *APIClient
}

// NewYandexService creates the Yandex Music service. API calls are enabled when creds carries a token.
func NewYandexService(creds shared.TokenConfig, opts ServiceOpts) *YandexService {
	opts = opts.withDefaults(string(models.YandexMusic))
	s := &YandexService{base: base{desc: yandexDescriptor, httpClient: opts.HTTPClient, logger: opts.Logger}}

	if creds.Token == "" {
		return s
	}
	baseURL := opts.APIBaseURL
	if baseURL == "" {
		baseURL = yandexBaseURL
	}
	s.api = NewAPIClient(strings.TrimRight(baseURL, "/"), "OAuth "+creds.Token, opts.HTTPClient)
	return s
}

// Authenticated reports whether API calls are available.
func (s *YandexService) Authenticated() bool {
	return s.api != nil
}

// Extract identifies the track behind a music.yandex.* URL.
func (s *YandexService) Extract(ctx context.Context, rawURL string) (models.TrackReference, error) {
	u, err := parseLink(rawURL)
	if err != nil {
		return models.TrackReference{}, err
	}

	ref := s.placeholder(rawURL)
	if id := pathID(u, "track"); id != "" && s.api != nil {
		track, err := s.Track(ctx, id)
		if err == nil {
			s.fill(&ref, track.Title, track.performer())
			return ref, nil
		}
		s.logger.Warn("track lookup failed, reading page", "id", id, "err", err)
	}

	meta, err := fetchPage(ctx, s.httpClient, u.String(), browserUserAgent)
	if err == nil {
		err = meta.Check()
	}
	if err != nil {
		s.logger.Warn("page fetch failed", "url", rawURL, "err", err)
		return ref, nil
	}

	performer, title := splitYandexTitle(meta.TrackTitle())
	s.fill(&ref, title, performer)
	return ref, nil
}

// Track fetches one track by id.
func (s *YandexService) Track(ctx context.Context, id string) (*YandexTrack, error) {
	if s.api == nil {
		return nil, shared.ErrMissingCredentials
	}

	var resp yandexTracksResponse
	if err := s.api.GetJSON(ctx, "/tracks/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	if len(resp.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	return &resp.Result[0], nil
}

// Search returns the best track hit for the cleaned query.
func (s *YandexService) Search(ctx context.Context, title, performer string) models.CrossServiceResult {
	query := CleanQuery(performer, title)
	if s.api == nil {
		return s.fallback(YandexSearchURL(query))
	}

	params := url.Values{"text": {query}, "type": {"all"}, "page": {"0"}}
	var resp yandexSearchResponse
	if err := s.api.GetJSON(ctx, "/search?"+params.Encode(), &resp); err != nil {
		return s.failed(err)
	}

	hit, ok := bestYandexTrack(&resp)
	if !ok {
		return s.failed(fmt.Errorf("%w: %q", shared.ErrTrackNotFound, query))
	}
	return s.found(hit.URL(), query, hit.performer(), hit.Title)
}

func bestYandexTrack(resp *yandexSearchResponse) (YandexTrack, bool) {
	if best := resp.Result.Best; best != nil && best.Type == "track" && len(best.Result) > 0 {
		var t YandexTrack
		if err := json.Unmarshal(best.Result, &t); err == nil && t.ID != "" {
			return t, true
		}
	}
	if tracks := resp.Result.Tracks; tracks != nil && len(tracks.Results) > 0 {
		return tracks.Results[0], true
	}
	return YandexTrack{}, false
}

// splitYandexTitle splits "Performer — Title" preview titles. Without a separator the whole string is the title.
func splitYandexTitle(s string) (performer, title string) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), yandexTitleSuffix))
	s = strings.TrimSuffix(s, ".")
	parts := strings.SplitN(s, " — ", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return "", s
}
