package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bgergo/reelcache/internal/constants"
	"github.com/bgergo/reelcache/internal/models"
	bolt "go.etcd.io/bbolt"
)

const (
	dbFileMode = 0600
	dbDirMode  = 0755

	defaultDBFile = "cache.db"
)

// Bucket names mirror the collection layout: movies are keyed by movie
// id, topRated maps movie id to rank, categories maps category id to
// name, movieMarks maps movie id to the marker triple.
var (
	bucketMovies     = []byte("movies")
	bucketTopRated   = []byte("topRated")
	bucketCategories = []byte("categories")
	bucketMarkers    = []byte("movieMarks")
)

// BoltDB implements Database using a single shared bbolt handle, opened
// once and reused for the lifetime of the process.
type BoltDB struct {
	db *bolt.DB
}

// NewBolt opens (or creates) the local cache database at dbPath.
// An empty path uses the default file in the current directory.
func NewBolt(dbPath string) (*BoltDB, error) {
	if dbPath == "" {
		dbPath = filepath.Join(".", defaultDBFile)
	}

	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, dbDirMode); err != nil {
		return nil, fmt.Errorf("%w: failed to create database directory: %v", ErrStorageUnavailable, err)
	}

	db, err := bolt.Open(dbPath, dbFileMode, &bolt.Options{Timeout: constants.BoltOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open bolt database: %v", ErrStorageUnavailable, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketMovies, bucketTopRated, bucketCategories, bucketMarkers} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to create buckets: %v", ErrStorageUnavailable, err)
	}

	return &BoltDB{db: db}, nil
}

// Close closes the database handle.
func (s *BoltDB) Close() error {
	return s.db.Close()
}

func movieKey(id int) []byte {
	return []byte(strconv.Itoa(id))
}

// GetMovie retrieves a cached movie by id. Returns (nil, nil) when the
// movie is not cached.
func (s *BoltDB) GetMovie(id int) (*models.Movie, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketMovies).Get(movieKey(id)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get movie %d: %w", id, err)
	}
	if data == nil {
		return nil, nil
	}

	var movie models.Movie
	if err := json.Unmarshal(data, &movie); err != nil {
		return nil, fmt.Errorf("failed to decode movie %d: %w", id, err)
	}
	return &movie, nil
}

// SaveMovie upserts a single movie record.
func (s *BoltDB) SaveMovie(movie *models.Movie) error {
	data, err := json.Marshal(movie)
	if err != nil {
		return fmt.Errorf("failed to encode movie %d: %w", movie.ID, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMovies).Put(movieKey(movie.ID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save movie %d: %w", movie.ID, err)
	}
	return nil
}

// SaveMovies upserts a batch of movies. The whole batch lands in one
// transaction; a failure leaves the collection untouched.
func (s *BoltDB) SaveMovies(movies []models.Movie) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMovies)
		for i := range movies {
			data, err := json.Marshal(&movies[i])
			if err != nil {
				return err
			}
			if err := b.Put(movieKey(movies[i].ID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save movies: %w", err)
	}
	return nil
}

// GetTopRatedOrder returns the persisted ordering in storage order.
// Callers sort by rank.
func (s *BoltDB) GetTopRatedOrder() ([]models.TopRatedEntry, error) {
	var entries []models.TopRatedEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTopRated).ForEach(func(k, v []byte) error {
			id, err := strconv.Atoi(string(k))
			if err != nil {
				return err
			}
			rank, err := strconv.Atoi(string(v))
			if err != nil {
				return err
			}
			entries = append(entries, models.TopRatedEntry{ID: id, Rank: rank})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get top-rated order: %w", err)
	}
	return entries, nil
}

// SaveTopRatedOrder persists the ordering, assigning 1-based ranks from
// the slice positions. Ranks for listed ids are overwritten.
func (s *BoltDB) SaveTopRatedOrder(ids []int) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTopRated)
		for i, id := range ids {
			if err := b.Put(movieKey(id), []byte(strconv.Itoa(i+1))); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save top-rated order: %w", err)
	}
	return nil
}

// GetCategories returns all cached categories.
func (s *BoltDB) GetCategories() ([]models.Category, error) {
	var categories []models.Category
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCategories).ForEach(func(k, v []byte) error {
			id, err := strconv.Atoi(string(k))
			if err != nil {
				return err
			}
			categories = append(categories, models.Category{ID: id, Name: string(v)})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// SaveCategories upserts the category list in one transaction.
func (s *BoltDB) SaveCategories(categories []models.Category) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCategories)
		for _, cat := range categories {
			if err := b.Put(movieKey(cat.ID), []byte(cat.Name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save categories: %w", err)
	}
	return nil
}

// GetAllMarkers returns every stored marker record.
func (s *BoltDB) GetAllMarkers() ([]models.MarkerRecord, error) {
	var records []models.MarkerRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMarkers).ForEach(func(k, v []byte) error {
			id, err := strconv.Atoi(string(k))
			if err != nil {
				return err
			}
			var marker models.MovieMarker
			if err := json.Unmarshal(v, &marker); err != nil {
				return err
			}
			records = append(records, models.MarkerRecord{MovieID: id, Marker: marker})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get markers: %w", err)
	}
	return records, nil
}

// SaveMarker upserts the full marker triple for a movie. Un-marking
// stores the zero triple rather than deleting the record.
func (s *BoltDB) SaveMarker(movieID int, marker models.MovieMarker) error {
	data, err := json.Marshal(marker)
	if err != nil {
		return fmt.Errorf("failed to encode marker for movie %d: %w", movieID, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMarkers).Put(movieKey(movieID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save marker for movie %d: %w", movieID, err)
	}
	return nil
}
