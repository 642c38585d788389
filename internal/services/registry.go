package services

import (
	"regexp"
	"strings"

	"github.com/desertthunder/multilink/internal/models"
	"github.com/desertthunder/multilink/internal/shared"
)

var linkPattern = regexp.MustCompile(`(?i)https?://\S+`)

// trailing sentence punctuation that is never part of a shared link
const linkTrailer = ".,!?;:\"'»)"

var (
	spotifyDescriptor = models.ServiceDescriptor{
		ID:            models.Spotify,
		DisplayName:   "🟢 Spotify",
		Pattern:       regexp.MustCompile(`(?i)^https?://(?:open\.spotify\.com|spotify\.link)(?:[/?#]|$)`),
		DefaultTitle:  "Unknown Title",
		DefaultArtist: "Unknown Artist",
	}
	yandexDescriptor = models.ServiceDescriptor{
		ID:            models.YandexMusic,
		DisplayName:   "🟠 Yandex Music",
		Pattern:       regexp.MustCompile(`(?i)^https?://music\.yandex\.(?:ru|com|by|kz|uz)(?:[/?#]|$)`),
		DefaultTitle:  "Yandex Music Track",
		DefaultArtist: "Unknown Artist",
	}
	mtsDescriptor = models.ServiceDescriptor{
		ID:            models.MTSMusic,
		DisplayName:   "🟣 MTS Music",
		Pattern:       regexp.MustCompile(`(?i)^https?://(?:mts-music-spo\.onelink\.me|music\.mts\.ru)(?:[/?#]|$)`),
		DefaultTitle:  "Unknown Title",
		DefaultArtist: "Unknown Artist",
	}
)

// Descriptors returns the service table in registration order.
//
// The order decides both recognition precedence and the order of reply lines.
func Descriptors() []models.ServiceDescriptor {
	return []models.ServiceDescriptor{spotifyDescriptor, yandexDescriptor, mtsDescriptor}
}

// FirstLink returns the first HTTP(S) URL in text with trailing punctuation removed.
func FirstLink(text string) (string, bool) {
	link := linkPattern.FindString(text)
	link = strings.TrimRight(link, linkTrailer)
	return link, link != ""
}

// Recognize finds the first link in text and returns the descriptor of the first service whose pattern
// matches it.
func Recognize(descriptors []models.ServiceDescriptor, text string) (models.ServiceDescriptor, string, bool) {
	link, ok := FirstLink(text)
	if !ok {
		return models.ServiceDescriptor{}, "", false
	}
	for _, d := range descriptors {
		if d.Matches(link) {
			return d, link, true
		}
	}
	return models.ServiceDescriptor{}, "", false
}

// Registry holds the configured [Service] implementations in table order.
type Registry struct {
	services []Service
}

// NewRegistry creates a registry. Services keep the order they are given in.
func NewRegistry(svcs ...Service) *Registry {
	return &Registry{services: svcs}
}

// NewDefaultRegistry builds every supported service from the credentials in cfg.
//
// Services without credentials are still registered; they scrape pages and fall back to search links.
func NewDefaultRegistry(cfg shared.CredentialsConfig, opts ServiceOpts) *Registry {
	return NewRegistry(
		NewSpotifyService(cfg.Spotify, opts),
		NewYandexService(cfg.Yandex, opts),
		NewMTSService(cfg.MTS, opts),
	)
}

// Services returns the registered services in table order.
func (r *Registry) Services() []Service {
	return r.services
}

// Descriptors returns the descriptors of the registered services in table order.
func (r *Registry) Descriptors() []models.ServiceDescriptor {
	out := make([]models.ServiceDescriptor, 0, len(r.services))
	for _, s := range r.services {
		out = append(out, s.Descriptor())
	}
	return out
}

// Lookup returns the service registered under id.
func (r *Registry) Lookup(id models.ServiceID) (Service, bool) {
	for _, s := range r.services {
		if s.Descriptor().ID == id {
			return s, true
		}
	}
	return nil, false
}

// Recognize resolves the service that owns the first link in text.
func (r *Registry) Recognize(text string) (Service, string, bool) {
	d, link, ok := Recognize(r.Descriptors(), text)
	if !ok {
		return nil, "", false
	}
	s, found := r.Lookup(d.ID)
	return s, link, found
}
