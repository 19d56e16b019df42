// Package constants defines timeout values used throughout the application.
package constants

import "time"

const (
	// Timeout for TMDB metadata requests
	TMDBRequestTimeout = 10 * time.Second

	// Timeout for a single image download
	ImageFetchTimeout = 10 * time.Second

	// Timeout for opening the local bolt database
	BoltOpenTimeout = 1 * time.Second

	// Timeout for remote marker store operations
	MarkerStoreTimeout = 5 * time.Second
)
