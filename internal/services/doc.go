// Package services defines the [Service] interface for music streaming providers and implements it for Spotify,
// Yandex Music and MTS Music.
//
// # Service Interface
//
// Every provider can do two things:
//   - Extract : turn a link to one of its tracks into a [models.TrackReference]
//   - Search : find its own link for a (title, performer) pair, as a [models.CrossServiceResult]
//
// # Recognition
//
// [Recognize] scans message text for the first HTTP(S) URL and matches it against the ordered descriptor table
// returned by [Descriptors]. Host patterns are mutually exclusive, so the first match is the only match.
//
// # Degradation
//
// Neither operation lets a provider failure escape:
//   - Extract only returns an error ([shared.ErrMalformedLink]) when the link cannot be parsed at all.
//     Network, markup and API failures fall back to the service's placeholder title and performer.
//   - Search never returns an error. Missing credentials produce a constructed search-page link
//     (Fallback = true); any other failure produces an empty URL with the diagnostic in Err.
//
// # Providers
//
// [SpotifyService] uses the Web API through github.com/zmb3/spotify/v2 with client-credentials OAuth2 when a
// client id and secret are configured, and otherwise reads the OpenGraph tags of the public track page.
//
// [YandexService] calls api.music.yandex.net with an OAuth token, or reads the track page.
//
// [MTSService] unwraps onelink app-install links through their deep_link_value parameter before reading the
// content page or calling api.mtsmusic.ru.
package services
