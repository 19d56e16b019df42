// Package markerstore provides the client for the remote marker
// collections: three multi-user document collections (Favorites,
// AlreadySeen, Watchlist) keyed by stringified movie id, each document
// holding the movie id, its title and the username that wrote it.
//
// The collections are keyed by movie id only, not by (user, movie);
// two profiles marking the same movie overwrite each other's document.
// Existing deployments depend on that key shape, so the
// last-writer-wins behavior stays.
package markerstore

import (
	"context"

	"github.com/bgergo/reelcache/internal/constants"
)

// Collection identifies one of the three remote marker collections.
type Collection string

const (
	Favorites   Collection = constants.CollectionFavorites
	AlreadySeen Collection = constants.CollectionAlreadySeen
	Watchlist   Collection = constants.CollectionWatchlist
)

// Collections lists all marker collections.
var Collections = []Collection{Favorites, AlreadySeen, Watchlist}

// MovieRef is the document stored per marked movie.
type MovieRef struct {
	ID       int    `bson:"id" json:"id"`
	Title    string `bson:"title" json:"title"`
	Username string `bson:"username" json:"username"`
}

// Event is one change notification from a collection subscription.
type Event struct {
	Collection Collection
	MovieID    int
	// Removed is true when the document was deleted (flag cleared).
	Removed bool
}

// RemoteStore is the narrow contract over the remote document database.
type RemoteStore interface {
	// Set upserts the document keyed by ref.ID.
	Set(ctx context.Context, coll Collection, ref MovieRef) error
	// Delete removes the document keyed by movieID. Deleting an absent
	// document is not an error.
	Delete(ctx context.Context, coll Collection, movieID int) error
	// List returns a snapshot of all documents in the collection.
	List(ctx context.Context, coll Collection) ([]MovieRef, error)
	// Contains reports whether a document for movieID exists.
	Contains(ctx context.Context, coll Collection, movieID int) (bool, error)
	// Watch subscribes to changes on the collection. The channel closes
	// when ctx is cancelled or the stream fails.
	Watch(ctx context.Context, coll Collection) (<-chan Event, error)
	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
