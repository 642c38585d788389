// package services defines interface Service for interacting with music provider HTTP APIs and pages
//
// Spotify, Yandex Music, MTS Music
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/multilink/internal/models"
	"github.com/desertthunder/multilink/internal/shared"
)

// Service defines the interface for music service providers that can identify their own tracks and look up
// tracks from other services.
type Service interface {
	// Descriptor returns the static description of the service.
	Descriptor() models.ServiceDescriptor

	// Extract reads the title and performer behind a link owned by this service.
	// Only a link that cannot be parsed returns an error; every other failure degrades to placeholders.
	Extract(ctx context.Context, rawURL string) (models.TrackReference, error)

	// Search looks for the track on this service and returns the best hit.
	// Failures are reported inside the result, never as an error.
	Search(ctx context.Context, title, performer string) models.CrossServiceResult
}

// ServiceOpts contains dependencies shared by service implementations.
type ServiceOpts struct {
	HTTPClient *http.Client
	Logger     *log.Logger
	// APIBaseURL overrides the provider API root (used by tests).
	APIBaseURL string
	// TokenURL overrides the OAuth2 token endpoint (Spotify only).
	TokenURL string
}

func (o ServiceOpts) withDefaults(component string) ServiceOpts {
	if o.HTTPClient == nil {
		o.HTTPClient = NewHTTPClient(0)
	}
	if o.Logger == nil {
		o.Logger = shared.NewLogger(nil)
	}
	o.Logger = shared.WithLogger(o.Logger, "service", component)
	return o
}

const defaultHTTPTimeout = 15 * time.Second

// NewHTTPClient returns the client used for every provider call.
//
// One client is shared so connections are reused; per-call deadlines come from the request context.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

// base carries what every provider needs to degrade gracefully.
type base struct {
	desc       models.ServiceDescriptor
	httpClient *http.Client
	logger     *log.Logger
}

func (b *base) Descriptor() models.ServiceDescriptor {
	return b.desc
}

func (b *base) placeholder(rawURL string) models.TrackReference {
	return models.TrackReference{
		Origin:    b.desc.ID,
		SourceURL: rawURL,
		Title:     b.desc.DefaultTitle,
		Performer: b.desc.DefaultArtist,
	}
}

// fill copies non-empty extracted fields into ref.
func (b *base) fill(ref *models.TrackReference, title, performer string) {
	if t := strings.TrimSpace(title); t != "" {
		ref.Title = t
	}
	if p := strings.TrimSpace(performer); p != "" {
		ref.Performer = p
	}
}

func (b *base) found(link, query, hitPerformer, hitTitle string) models.CrossServiceResult {
	score := MatchScore(query, hitPerformer+" "+hitTitle)
	b.logger.Debug("search hit", "url", link, "score", fmt.Sprintf("%.2f", score))
	return models.CrossServiceResult{Service: b.desc.ID, URL: link, Score: score}
}

func (b *base) failed(err error) models.CrossServiceResult {
	b.logger.Warn("search failed", "err", err)
	return models.CrossServiceResult{Service: b.desc.ID, Err: err.Error()}
}

func (b *base) fallback(link string) models.CrossServiceResult {
	b.logger.Debug("credentials not configured, using search page", "url", link)
	return models.CrossServiceResult{Service: b.desc.ID, URL: link, Fallback: true}
}

// parseLink validates that rawURL is an absolute HTTP(S) URL with a host.
func parseLink(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedLink, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", shared.ErrMalformedLink, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: no host in %q", shared.ErrMalformedLink, rawURL)
	}
	return u, nil
}

// pathID returns the path segment that follows marker, e.g. the id in /track/{id}.
func pathID(u *url.URL, marker string) string {
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == marker && parts[i+1] != "" {
			return parts[i+1]
		}
	}
	return ""
}
