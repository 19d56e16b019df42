package database

import "github.com/bgergo/reelcache/internal/models"

// NullDB is the Database used when the local persistence engine could
// not be opened: reads see an empty cache and writes are discarded, so
// every catalog read degrades to network-only behavior per policy.
type NullDB struct{}

// NewNull creates a no-op database.
func NewNull() *NullDB { return &NullDB{} }

func (*NullDB) GetMovie(int) (*models.Movie, error)                 { return nil, nil }
func (*NullDB) SaveMovie(*models.Movie) error                       { return ErrStorageUnavailable }
func (*NullDB) SaveMovies([]models.Movie) error                     { return ErrStorageUnavailable }
func (*NullDB) GetTopRatedOrder() ([]models.TopRatedEntry, error)   { return nil, nil }
func (*NullDB) SaveTopRatedOrder([]int) error                       { return ErrStorageUnavailable }
func (*NullDB) GetCategories() ([]models.Category, error)           { return nil, nil }
func (*NullDB) SaveCategories([]models.Category) error              { return ErrStorageUnavailable }
func (*NullDB) GetAllMarkers() ([]models.MarkerRecord, error)       { return nil, nil }
func (*NullDB) SaveMarker(int, models.MovieMarker) error            { return ErrStorageUnavailable }
func (*NullDB) Close() error                                        { return nil }
