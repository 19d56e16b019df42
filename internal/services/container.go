package services

import (
	"github.com/bgergo/reelcache/internal/cache"
	"github.com/bgergo/reelcache/internal/database"
)

// Container holds all initialized services for dependency injection.
type Container struct {
	TMDB    *TMDB
	Images  *ImageService
	Catalog *CatalogService
	Markers *MarkerService
	Cache   *cache.LRUCache
	DB      database.Database
}
