package services

import (
	"context"
	"sort"
	"sync"

	"github.com/bgergo/reelcache/internal/constants"
	"github.com/bgergo/reelcache/internal/database"
	"github.com/bgergo/reelcache/internal/markerstore"
	"github.com/bgergo/reelcache/internal/models"
	"github.com/bgergo/reelcache/pkg/connectivity"
	"github.com/bgergo/reelcache/pkg/logger"
)

// CatalogClient is the contract the orchestrator needs from the remote
// metadata API.
type CatalogClient interface {
	GetTopRated(ctx context.Context) ([]models.Movie, error)
	Search(ctx context.Context, query models.SearchQuery) ([]models.Movie, error)
	GetGenres(ctx context.Context) ([]models.Category, error)
	GetMovie(ctx context.Context, id int) (*models.Movie, error)
	GetVideos(ctx context.Context, id int) ([]models.MovieVideo, error)
}

// ImageEncoder converts an image URL into a self-contained encoded string.
type ImageEncoder interface {
	FetchAsDataURI(ctx context.Context, url string) (string, error)
}

// CatalogService owns the read-through cache policy: every read tries
// the local store first and only falls through to the network, and a
// fallthrough populates the local store for the next offline read. The
// fallback order is strict: local-complete, local-partial-then-network,
// network-only, explicit-empty.
type CatalogService struct {
	db      database.Database
	catalog CatalogClient
	images  ImageEncoder
	online  connectivity.Checker
	logger  logger.Logger
}

// NewCatalogService creates the cache orchestrator.
func NewCatalogService(db database.Database, catalog CatalogClient, images ImageEncoder, online connectivity.Checker, log logger.Logger) *CatalogService {
	return &CatalogService{
		db:      db,
		catalog: catalog,
		images:  images,
		online:  online,
		logger:  log,
	}
}

// TopRated returns the top-rated listing. A non-empty cached ordering is
// served entirely from the local store with markers overlaid; otherwise
// the listing is fetched, returned immediately, and persisted in the
// background. Offline with no cached ordering yields an empty list, not
// an error.
func (s *CatalogService) TopRated(ctx context.Context) ([]models.Movie, error) {
	var (
		wg      sync.WaitGroup
		entries []models.TopRatedEntry
		markers []models.MarkerRecord
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		if entries, err = s.db.GetTopRatedOrder(); err != nil {
			s.logger.Warnf("[Catalog] top-rated order read failed: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if markers, err = s.db.GetAllMarkers(); err != nil {
			s.logger.Warnf("[Catalog] marker read failed: %v", err)
		}
	}()
	wg.Wait()

	if len(entries) > 0 {
		return s.assembleFromStore(entries, markerIndex(markers)), nil
	}

	if !s.online.Online() {
		return []models.Movie{}, nil
	}

	movies, err := s.catalog.GetTopRated(ctx)
	if err != nil {
		return nil, err
	}
	movies = s.encodeMovieImages(ctx, movies)

	// The caller gets the fresh listing immediately; persistence runs in
	// the background and its failure only gets logged.
	persisted := make([]models.Movie, len(movies))
	copy(persisted, movies)
	go s.persistTopRated(persisted)

	return movies, nil
}

func (s *CatalogService) persistTopRated(movies []models.Movie) {
	if err := s.db.SaveMovies(movies); err != nil {
		s.logger.Errorf("[Catalog] failed to persist top-rated movies: %v", err)
		return
	}
	ids := make([]int, len(movies))
	for i, m := range movies {
		ids[i] = m.ID
	}
	if err := s.db.SaveTopRatedOrder(ids); err != nil {
		s.logger.Errorf("[Catalog] failed to persist top-rated order: %v", err)
	}

	seen := make(map[int]bool)
	var categories []models.Category
	for _, m := range movies {
		for _, cat := range m.Categories {
			if !seen[cat.ID] {
				seen[cat.ID] = true
				categories = append(categories, cat)
			}
		}
	}
	if len(categories) > 0 {
		if err := s.db.SaveCategories(categories); err != nil {
			s.logger.Errorf("[Catalog] failed to persist categories: %v", err)
		}
	}
}

// assembleFromStore rebuilds the listing in rank order from cached
// records, overlaying the stored marker triple per movie.
func (s *CatalogService) assembleFromStore(entries []models.TopRatedEntry, markers map[int]models.MovieMarker) []models.Movie {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Rank < entries[j].Rank })

	movies := make([]models.Movie, 0, len(entries))
	for _, entry := range entries {
		movie, err := s.db.GetMovie(entry.ID)
		if err != nil {
			s.logger.Warnf("[Catalog] failed to read movie %d: %v", entry.ID, err)
			continue
		}
		if movie == nil {
			s.logger.Warnf("[Catalog] ordering references missing movie %d", entry.ID)
			continue
		}
		overlayMarker(movie, markers[entry.ID])
		movies = append(movies, *movie)
	}
	return movies
}

// Search runs a faceted query. No facets degenerates to the top-rated
// read. Every real search is network-only: offline searches return an
// explicit empty result instead of scanning the cache.
func (s *CatalogService) Search(ctx context.Context, query models.SearchQuery) ([]models.Movie, error) {
	if query.IsEmpty() {
		return s.TopRated(ctx)
	}
	if !s.online.Online() {
		return []models.Movie{}, nil
	}

	movies, err := s.catalog.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.encodeMovieImages(ctx, movies), nil
}

// Categories returns the shared category list, local store first.
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.db.GetCategories()
	if err != nil {
		s.logger.Warnf("[Catalog] category read failed: %v", err)
	}
	if len(categories) > 0 {
		return categories, nil
	}
	if !s.online.Online() {
		return []models.Category{}, nil
	}

	categories, err = s.catalog.GetGenres(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.db.SaveCategories(categories); err != nil {
		s.logger.Errorf("[Catalog] failed to persist categories: %v", err)
	}
	return categories, nil
}

// ExtendMovie completes a movie record for a detail view: when the
// record is missing locally or still carries un-encoded image
// references, and the network is reachable, it fetches videos, encodes
// the remaining images, and persists the result. Otherwise the input is
// returned with the marker overlaid, unmodified otherwise.
func (s *CatalogService) ExtendMovie(ctx context.Context, movie models.Movie, marker models.MovieMarker) (models.Movie, error) {
	if !s.needsEnrichment(movie) || !s.online.Online() {
		overlayMarker(&movie, marker)
		return movie, nil
	}

	videos, err := s.catalog.GetVideos(ctx, movie.ID)
	if err != nil {
		s.logger.Warnf("[Catalog] failed to fetch videos for movie %d: %v", movie.ID, err)
	} else {
		movie.Videos = videos
	}

	s.encodeImages(ctx, &movie)

	if err := s.db.SaveMovie(&movie); err != nil {
		s.logger.Errorf("[Catalog] failed to persist movie %d: %v", movie.ID, err)
	}

	overlayMarker(&movie, marker)
	return movie, nil
}

// needsEnrichment reports whether a detail read has to touch the
// network: the record is absent locally, or the backdrop or any cast
// profile reference still looks like an un-fetched remote path.
func (s *CatalogService) needsEnrichment(movie models.Movie) bool {
	stored, err := s.db.GetMovie(movie.ID)
	if err != nil {
		s.logger.Warnf("[Catalog] failed to read movie %d: %v", movie.ID, err)
	}
	if stored == nil {
		return true
	}
	if movie.BackImage != "" && !IsEncoded(movie.BackImage) {
		return true
	}
	for _, c := range movie.Characters {
		if c.ProfileImage != "" && !IsEncoded(c.ProfileImage) {
			return true
		}
	}
	return false
}

// MoviesForMarked resolves remote marker references into full movie
// records: local store first, remote fetch with persistence on a miss,
// skipped entirely when offline and uncached.
func (s *CatalogService) MoviesForMarked(ctx context.Context, refs []markerstore.MovieRef) ([]models.Movie, error) {
	movies := make([]models.Movie, 0, len(refs))
	for _, ref := range refs {
		movie, err := s.db.GetMovie(ref.ID)
		if err != nil {
			s.logger.Warnf("[Catalog] failed to read movie %d: %v", ref.ID, err)
		}
		if movie != nil {
			movies = append(movies, *movie)
			continue
		}
		if !s.online.Online() {
			continue
		}

		fetched, err := s.catalog.GetMovie(ctx, ref.ID)
		if err != nil {
			s.logger.Warnf("[Catalog] failed to fetch movie %d: %v", ref.ID, err)
			continue
		}
		s.encodeImages(ctx, fetched)
		if err := s.db.SaveMovie(fetched); err != nil {
			s.logger.Errorf("[Catalog] failed to persist movie %d: %v", ref.ID, err)
		}
		movies = append(movies, *fetched)
	}
	return movies, nil
}

// encodeMovieImages converts every un-encoded image reference in the
// list, with bounded parallelism across movies.
func (s *CatalogService) encodeMovieImages(ctx context.Context, movies []models.Movie) []models.Movie {
	sem := make(chan struct{}, constants.ImageFetchGoroutines)
	var wg sync.WaitGroup
	for i := range movies {
		wg.Add(1)
		sem <- struct{}{}
		go func(m *models.Movie) {
			defer wg.Done()
			defer func() { <-sem }()
			s.encodeImages(ctx, m)
		}(&movies[i])
	}
	wg.Wait()
	return movies
}

// encodeImages converts the poster, backdrop and cast profile
// references of one movie. An already-encoded reference is left alone;
// a failed fetch leaves the reference unconverted for the next pass.
func (s *CatalogService) encodeImages(ctx context.Context, movie *models.Movie) {
	movie.Image = s.encodeRef(ctx, movie.Image, constants.PosterImageSize)
	movie.BackImage = s.encodeRef(ctx, movie.BackImage, constants.BackdropImageSize)
	for i := range movie.Characters {
		movie.Characters[i].ProfileImage = s.encodeRef(ctx, movie.Characters[i].ProfileImage, constants.ProfileImageSize)
	}
}

func (s *CatalogService) encodeRef(ctx context.Context, ref, size string) string {
	if ref == "" || IsEncoded(ref) {
		return ref
	}
	encoded, err := s.images.FetchAsDataURI(ctx, constants.TMDBImageBaseURL+size+ref)
	if err != nil {
		s.logger.Warnf("[Catalog] image encode failed for %s: %v", ref, err)
		return ref
	}
	return encoded
}

func overlayMarker(movie *models.Movie, marker models.MovieMarker) {
	movie.Favorite = marker.Favorite
	movie.AlreadySeen = marker.AlreadySeen
	movie.Watchlist = marker.OnWatchList
}

func markerIndex(records []models.MarkerRecord) map[int]models.MovieMarker {
	index := make(map[int]models.MovieMarker, len(records))
	for _, r := range records {
		index[r.MovieID] = r.Marker
	}
	return index
}
