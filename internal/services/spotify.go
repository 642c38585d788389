// Spotify implementation of [Service]
//
// Web API access goes through github.com/zmb3/spotify/v2 with an app-only client-credentials token.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/multilink/internal/models"
	"github.com/desertthunder/multilink/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const spotifyBaseURL = "https://api.spotify.com/v1/"

// SpotifyService implements [Service] for Spotify.
//
// Without client credentials it reads the public track page and answers searches with a web player search link.
type SpotifyService struct {
	base
	client *spotify.Client
}

// NewSpotifyService creates the Spotify service. The API client is only built when both the client id and
// secret are set.
func NewSpotifyService(creds shared.SpotifyConfig, opts ServiceOpts) *SpotifyService {
	opts = opts.withDefaults(string(models.Spotify))
	s := &SpotifyService{base: base{desc: spotifyDescriptor, httpClient: opts.HTTPClient, logger: opts.Logger}}

	if !creds.Configured() {
		return s
	}

	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}
	apiURL := opts.APIBaseURL
	if apiURL == "" {
		apiURL = spotifyBaseURL
	}

	config := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     tokenURL,
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, opts.HTTPClient)
	s.client = spotify.New(config.Client(ctx), spotify.WithBaseURL(apiURL))
	return s
}

// Authenticated reports whether Web API calls are available.
func (s *SpotifyService) Authenticated() bool {
	return s.client != nil
}

// Extract identifies the track behind an open.spotify.com or spotify.link URL.
func (s *SpotifyService) Extract(ctx context.Context, rawURL string) (models.TrackReference, error) {
	u, err := parseLink(rawURL)
	if err != nil {
		return models.TrackReference{}, err
	}

	ref := s.placeholder(rawURL)
	if id := pathID(u, "track"); id != "" && s.client != nil {
		track, err := s.client.GetTrack(ctx, spotify.ID(id))
		if err == nil {
			s.fill(&ref, track.Name, joinArtists(track.Artists))
			return ref, nil
		}
		s.logger.Warn("track lookup failed, reading page", "id", id, "err", err)
	}

	meta, err := fetchPage(ctx, s.httpClient, u.String(), previewUserAgent)
	if err == nil {
		err = meta.Check()
	}
	if err != nil {
		s.logger.Warn("page fetch failed", "url", rawURL, "err", err)
		return ref, nil
	}

	s.fill(&ref, meta.Title, spotifyPerformer(meta))
	return ref, nil
}

// Search returns the top track hit for the cleaned query.
func (s *SpotifyService) Search(ctx context.Context, title, performer string) models.CrossServiceResult {
	query := CleanQuery(performer, title)
	if s.client == nil {
		return s.fallback(SpotifySearchURL(query))
	}

	res, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return s.failed(fmt.Errorf("%w: %w", shared.ErrAPIRequest, err))
	}
	if res.Tracks == nil || len(res.Tracks.Tracks) == 0 {
		return s.failed(fmt.Errorf("%w: %q", shared.ErrTrackNotFound, query))
	}

	hit := res.Tracks.Tracks[0]
	link := hit.ExternalURLs["spotify"]
	if link == "" {
		link = "https://open.spotify.com/track/" + hit.ID.String()
	}
	return s.found(link, query, joinArtists(hit.Artists), hit.Name)
}

func joinArtists(artists []spotify.SimpleArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, ", ")
}

// spotifyPerformer reads the performer from preview metadata.
//
// Descriptions come in two shapes: "Artist · Song · 2020" and "Listen to Song on Spotify. Artist · Song".
func spotifyPerformer(meta *PageMeta) string {
	if meta.Musician != "" {
		return meta.Musician
	}

	desc, title := meta.Description, meta.Title
	if desc == "" {
		return ""
	}

	segments := strings.Split(desc, "·")
	for i := range segments {
		segments[i] = strings.TrimSpace(segments[i])
	}
	for i := 1; i < len(segments); i++ {
		if strings.EqualFold(segments[i], "song") || (title != "" && segments[i] == title) {
			return cleanPerformer(segments[i-1])
		}
	}
	if title != "" && len(segments) > 1 && segments[0] == title {
		return cleanPerformer(segments[1])
	}

	if title != "" {
		if i := strings.Index(desc, title); i > 0 {
			return cleanPerformer(desc[:i])
		}
	}
	return ""
}

func cleanPerformer(s string) string {
	if i := strings.LastIndex(s, ". "); i >= 0 {
		s = s[i+2:]
	}
	s = strings.Trim(strings.TrimSpace(s), "·")
	s = strings.TrimSpace(s)
	if len(s) > 3 && strings.EqualFold(s[:3], "by ") {
		s = s[3:]
	}
	return strings.TrimSpace(s)
}
