// Package database provides the durable local cache using BoltDB.
// It holds four independent collections: movies by id, the top-rated
// ordering, the shared category list, and per-movie markers.
package database

import (
	"errors"

	"github.com/bgergo/reelcache/internal/models"
)

// ErrStorageUnavailable indicates the local persistence engine could not
// be opened. Callers degrade to network-only behavior rather than fail.
var ErrStorageUnavailable = errors.New("local storage unavailable")

// Database defines the local cache persistence operations.
// Point lookups return (nil, nil) when the key is absent.
type Database interface {
	// GetMovie retrieves a cached movie by id.
	GetMovie(id int) (*models.Movie, error)
	// SaveMovie upserts a single movie record.
	SaveMovie(movie *models.Movie) error
	// SaveMovies upserts a batch of movies in one transaction.
	SaveMovies(movies []models.Movie) error
	// GetTopRatedOrder returns the persisted ordering, unsorted.
	GetTopRatedOrder() ([]models.TopRatedEntry, error)
	// SaveTopRatedOrder persists ranks from the slice positions (1-based).
	SaveTopRatedOrder(ids []int) error
	// GetCategories returns all cached categories.
	GetCategories() ([]models.Category, error)
	// SaveCategories upserts the category list in one transaction.
	SaveCategories(categories []models.Category) error
	// GetAllMarkers returns every stored marker record.
	GetAllMarkers() ([]models.MarkerRecord, error)
	// SaveMarker upserts the full marker triple for a movie.
	SaveMarker(movieID int, marker models.MovieMarker) error
	// Close closes the underlying store.
	Close() error
}
