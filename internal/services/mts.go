// MTS Music implementation of [Service]
package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/multilink/internal/models"
	"github.com/desertthunder/multilink/internal/shared"
)

// The api.mtsmusic.ru routes (/tracks/{id} and /search?q=&type=tracks&limit=) have no public documentation.
// Every caller treats a failure there as a miss and falls back to the track page or the search page.
const (
	mtsBaseURL     = "https://api.mtsmusic.ru/v1"
	mtsTitleSuffix = " - слушать песню онлайн"
)

// MTSTrack is a track object from api.mtsmusic.ru.
type MTSTrack struct {
	ID     flexID `json:"id"`
	Title  string `json:"title"`
	Artist struct {
		Name string `json:"name"`
	} `json:"artist"`
}

// URL returns the web link for the track.
func (t MTSTrack) URL() string {
	return "https://music.mts.ru/track/" + string(t.ID)
}

type mtsTrackResponse struct {
	Data *MTSTrack `json:"data"`
}

type mtsSearchResponse struct {
	Tracks struct {
		Data []MTSTrack `json:"data"`
	} `json:"tracks"`
}

// MTSService implements [Service] for MTS Music.
type MTSService struct {
	base
	api *APIClient
}

// NewMTSService creates the MTS Music service. API calls are enabled when creds carries a token.
func NewMTSService(creds shared.TokenConfig, opts ServiceOpts) *MTSService {
	opts = opts.withDefaults(string(models.MTSMusic))
	s := &MTSService{base: base{desc: mtsDescriptor, httpClient: opts.HTTPClient, logger: opts.Logger}}

	if creds.Token == "" {
		return s
	}
	baseURL := opts.APIBaseURL
	if baseURL == "" {
		baseURL = mtsBaseURL
	}
	s.api = NewAPIClient(strings.TrimRight(baseURL, "/"), "Bearer "+creds.Token, opts.HTTPClient)
	return s
}

// Authenticated reports whether API calls are available.
func (s *MTSService) Authenticated() bool {
	return s.api != nil
}

// Extract identifies the track behind an MTS Music link.
//
// App-install links are unwrapped first: the redirect chain ends on a URL whose deep_link_value parameter
// carries the content page.
func (s *MTSService) Extract(ctx context.Context, rawURL string) (models.TrackReference, error) {
	u, err := parseLink(rawURL)
	if err != nil {
		return models.TrackReference{}, err
	}

	ref := s.placeholder(rawURL)
	content := u
	var meta *PageMeta

	if deep := deepLink(u); deep != nil {
		content = deep
	} else if !strings.EqualFold(u.Hostname(), "music.mts.ru") {
		m, err := fetchPage(ctx, s.httpClient, u.String(), browserUserAgent)
		if err != nil {
			s.logger.Warn("page fetch failed", "url", rawURL, "err", err)
			return ref, nil
		}
		meta = m
		if deep := deepLink(m.FinalURL); deep != nil {
			content, meta = deep, nil
		}
	}

	if id := pathID(content, "track"); id != "" && s.api != nil {
		track, err := s.Track(ctx, id)
		if err == nil {
			s.fill(&ref, track.Title, track.Artist.Name)
			return ref, nil
		}
		s.logger.Warn("track lookup failed, reading page", "id", id, "err", err)
	}

	if meta == nil {
		m, err := fetchPage(ctx, s.httpClient, content.String(), browserUserAgent)
		if err != nil {
			s.logger.Warn("page fetch failed", "url", content.String(), "err", err)
			return ref, nil
		}
		meta = m
	}
	if err := meta.Check(); err != nil {
		s.logger.Warn("page has no track metadata", "url", content.String(), "err", err)
		return ref, nil
	}

	s.fill(&ref, mtsTitle(meta.TrackTitle()), mtsPerformer(meta.Description))
	return ref, nil
}

// Track fetches one track by id.
func (s *MTSService) Track(ctx context.Context, id string) (*MTSTrack, error) {
	if s.api == nil {
		return nil, shared.ErrMissingCredentials
	}

	var resp mtsTrackResponse
	if err := s.api.GetJSON(ctx, "/tracks/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil || resp.Data.Title == "" {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	return resp.Data, nil
}

// Search returns the top track hit for the cleaned query.
func (s *MTSService) Search(ctx context.Context, title, performer string) models.CrossServiceResult {
	query := CleanQuery(performer, title)
	if s.api == nil {
		return s.fallback(MTSSearchURL(query))
	}

	params := url.Values{"q": {query}, "type": {"tracks"}, "limit": {"1"}}
	var resp mtsSearchResponse
	if err := s.api.GetJSON(ctx, "/search?"+params.Encode(), &resp); err != nil {
		return s.failed(err)
	}
	if len(resp.Tracks.Data) == 0 || resp.Tracks.Data[0].ID == "" {
		return s.failed(fmt.Errorf("%w: %q", shared.ErrTrackNotFound, query))
	}

	hit := resp.Tracks.Data[0]
	return s.found(hit.URL(), query, hit.Artist.Name, hit.Title)
}

// deepLink returns the content URL carried in the deep_link_value parameter, if any.
func deepLink(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	v := u.Query().Get("deep_link_value")
	if v == "" {
		return nil
	}
	if strings.Contains(strings.ToUpper(v), "%3A") {
		if dec, err := url.QueryUnescape(v); err == nil {
			v = dec
		}
	}
	deep, err := parseLink(v)
	if err != nil {
		return nil
	}
	return deep
}

func mtsTitle(s string) string {
	if i := strings.Index(s, mtsTitleSuffix); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// mtsPerformer reads "... исполнителя Performer!" or "... by Performer · ..." descriptions.
func mtsPerformer(desc string) string {
	if _, after, ok := strings.Cut(desc, "исполнителя"); ok {
		p, _, _ := strings.Cut(after, "!")
		return strings.TrimSpace(p)
	}
	if _, after, ok := strings.Cut(desc, "by "); ok {
		p, _, _ := strings.Cut(after, "·")
		return strings.TrimSpace(p)
	}
	return ""
}
