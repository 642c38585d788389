package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed = fmt.Errorf("authentication failed")
	ErrTimeout    = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest    = fmt.Errorf("API request failed")
	ErrTrackNotFound = fmt.Errorf("track not found")

	// Link handling errors
	ErrMalformedLink     = fmt.Errorf("malformed link")
	ErrUnrecognizedLink  = fmt.Errorf("unrecognized link")
	ErrMetadataNotFound  = fmt.Errorf("page metadata not found")
	ErrUnexpectedPayload = fmt.Errorf("unexpected response payload")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
