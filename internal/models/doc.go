// Package models defines the value types that flow through a single multilink request.
//
// Every value lives for one inbound message only:
//   - [ServiceDescriptor] : static description of a supported streaming service, built once at start-up
//   - [TrackReference] : the track identity extracted from the link the user sent
//   - [CrossServiceResult] : the outcome of searching one other service for that track
//   - [Reply] : what the transport sends back, together with the data it was formatted from
//
// Nothing here is persisted and no value is shared between requests.
package models
