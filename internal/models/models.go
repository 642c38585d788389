// package models defines the data model for the multilink bot
package models

import "regexp"

// ServiceID identifies one of the supported streaming services.
type ServiceID string

const (
	Spotify     ServiceID = "spotify"
	YandexMusic ServiceID = "yandex"
	MTSMusic    ServiceID = "mts"
)

// ServiceDescriptor describes a supported service. Descriptors are immutable after start-up.
type ServiceDescriptor struct {
	ID            ServiceID
	DisplayName   string
	Pattern       *regexp.Regexp // case-insensitive, anchored at the scheme
	DefaultTitle  string         // placeholder used when the title cannot be extracted
	DefaultArtist string         // placeholder used when the performer cannot be extracted
}

// Matches reports whether rawURL belongs to this service.
func (d ServiceDescriptor) Matches(rawURL string) bool {
	return d.Pattern != nil && d.Pattern.MatchString(rawURL)
}

// TrackReference is the identity extracted from the link a user sent.
type TrackReference struct {
	Origin    ServiceID `json:"origin"`
	SourceURL string    `json:"source_url"`
	Title     string    `json:"title"`
	Performer string    `json:"performer"`
}

// CrossServiceResult is the outcome of searching one non-origin service.
//
// URL is empty when nothing was found; Err then carries the diagnostic.
type CrossServiceResult struct {
	Service  ServiceID `json:"service"`
	URL      string    `json:"url,omitempty"`
	Err      string    `json:"error,omitempty"`
	Fallback bool      `json:"fallback,omitempty"` // URL is a constructed search page
	Score    float64   `json:"score,omitempty"`    // similarity of the hit to the query, 0..1
}

// Found reports whether the result carries a link.
func (r CrossServiceResult) Found() bool {
	return r.URL != ""
}

// ReplyKind classifies what the pipeline produced for a message.
type ReplyKind string

const (
	ReplyTrack   ReplyKind = "track"
	ReplyInvalid ReplyKind = "invalid"
	ReplyError   ReplyKind = "error"
	ReplyWelcome ReplyKind = "welcome"
)

// Reply is the outbound message along with the data it was rendered from.
type Reply struct {
	Kind    ReplyKind            `json:"kind"`
	Text    string               `json:"text"`
	Plain   string               `json:"plain,omitempty"` // Text without markup, sent when Telegram rejects the markup
	Track   *TrackReference      `json:"track,omitempty"`
	Results []CrossServiceResult `json:"results,omitempty"`
}

// Markdown reports whether Text must be sent with a rich-text parse mode.
func (r Reply) Markdown() bool {
	return r.Kind == ReplyTrack
}
