// Package constants defines numerical limits used throughout the application.
package constants

const (
	// Only the first MaxCastMembers cast entries (by billing order) are
	// kept per movie.
	MaxCastMembers = 5

	// Upper bound on concurrent image downloads during enrichment.
	ImageFetchGoroutines = 4
)
