package services

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bgergo/reelcache/internal/database"
	"github.com/bgergo/reelcache/internal/markerstore"
	"github.com/bgergo/reelcache/internal/models"
	"github.com/bgergo/reelcache/pkg/connectivity"
	"github.com/bgergo/reelcache/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogClient struct {
	topRated  []models.Movie
	searched  []models.Movie
	movies    map[int]models.Movie
	videos    []models.MovieVideo
	calls     int32
	lastQuery models.SearchQuery
}

func (f *fakeCatalogClient) GetTopRated(ctx context.Context) ([]models.Movie, error) {
	atomic.AddInt32(&f.calls, 1)
	return append([]models.Movie(nil), f.topRated...), nil
}

func (f *fakeCatalogClient) Search(ctx context.Context, query models.SearchQuery) ([]models.Movie, error) {
	atomic.AddInt32(&f.calls, 1)
	f.lastQuery = query
	return append([]models.Movie(nil), f.searched...), nil
}

func (f *fakeCatalogClient) GetGenres(ctx context.Context) ([]models.Category, error) {
	atomic.AddInt32(&f.calls, 1)
	return []models.Category{{ID: 28, Name: "Action"}}, nil
}

func (f *fakeCatalogClient) GetMovie(ctx context.Context, id int) (*models.Movie, error) {
	atomic.AddInt32(&f.calls, 1)
	m, ok := f.movies[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (f *fakeCatalogClient) GetVideos(ctx context.Context, id int) ([]models.MovieVideo, error) {
	atomic.AddInt32(&f.calls, 1)
	return append([]models.MovieVideo(nil), f.videos...), nil
}

func (f *fakeCatalogClient) networkCalls() int {
	return int(atomic.LoadInt32(&f.calls))
}

type fakeEncoder struct {
	calls int32
}

func (f *fakeEncoder) FetchAsDataURI(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", nil
	}
	atomic.AddInt32(&f.calls, 1)
	return "data:image/jpeg;base64,ZmFrZQ==", nil
}

func newTestCatalog(t *testing.T, client CatalogClient, online bool) (*CatalogService, *database.BoltDB) {
	t.Helper()
	db, err := database.NewBolt(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewCatalogService(db, client, &fakeEncoder{}, connectivity.Static(online), logger.New())
	return svc, db
}

func TestTopRatedColdOnlinePopulatesStore(t *testing.T) {
	client := &fakeCatalogClient{topRated: []models.Movie{
		{ID: 1, Title: "First", Image: "/p1.jpg"},
		{ID: 2, Title: "Second", Image: "/p2.jpg"},
	}}
	svc, db := newTestCatalog(t, client, true)

	movies, err := svc.TopRated(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, 1, movies[0].ID)
	assert.Equal(t, 2, movies[1].ID)
	assert.True(t, IsEncoded(movies[0].Image))

	// Persistence is fire-and-forget; the store catches up shortly after.
	assert.Eventually(t, func() bool {
		entries, err := db.GetTopRatedOrder()
		if err != nil || len(entries) != 2 {
			return false
		}
		m1, _ := db.GetMovie(1)
		m2, _ := db.GetMovie(2)
		return m1 != nil && m2 != nil
	}, 2*time.Second, 10*time.Millisecond)

	entries, err := db.GetTopRatedOrder()
	require.NoError(t, err)
	ranks := map[int]int{}
	for _, e := range entries {
		ranks[e.ID] = e.Rank
	}
	assert.Equal(t, 1, ranks[1])
	assert.Equal(t, 2, ranks[2])
}

func TestTopRatedOfflineServesCachedOrder(t *testing.T) {
	client := &fakeCatalogClient{}
	svc, db := newTestCatalog(t, client, false)

	require.NoError(t, db.SaveMovies([]models.Movie{
		{ID: 5, Title: "Five"},
		{ID: 3, Title: "Three"},
	}))
	require.NoError(t, db.SaveTopRatedOrder([]int{5, 3}))
	require.NoError(t, db.SaveMarker(5, models.MovieMarker{Favorite: true}))

	movies, err := svc.TopRated(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, 5, movies[0].ID)
	assert.Equal(t, 3, movies[1].ID)
	assert.True(t, movies[0].Favorite)
	assert.False(t, movies[1].Favorite)
	assert.Zero(t, client.networkCalls(), "offline read must not touch the network")
}

func TestTopRatedOfflineReadIsIdempotent(t *testing.T) {
	client := &fakeCatalogClient{}
	svc, db := newTestCatalog(t, client, false)

	require.NoError(t, db.SaveMovies([]models.Movie{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}))
	require.NoError(t, db.SaveTopRatedOrder([]int{2, 1}))

	first, err := svc.TopRated(context.Background())
	require.NoError(t, err)
	second, err := svc.TopRated(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTopRatedOfflineEmptyStore(t *testing.T) {
	svc, _ := newTestCatalog(t, &fakeCatalogClient{}, false)

	movies, err := svc.TopRated(context.Background())
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestSearchOfflineReturnsEmpty(t *testing.T) {
	client := &fakeCatalogClient{searched: []models.Movie{{ID: 9}}}
	svc, _ := newTestCatalog(t, client, false)

	movies, err := svc.Search(context.Background(), models.SearchQuery{Title: "alien"})
	require.NoError(t, err)
	assert.Empty(t, movies)
	assert.Zero(t, client.networkCalls())
}

func TestSearchWithoutFacetsFallsBackToTopRated(t *testing.T) {
	client := &fakeCatalogClient{}
	svc, db := newTestCatalog(t, client, false)

	require.NoError(t, db.SaveMovies([]models.Movie{{ID: 4, Title: "Cached"}}))
	require.NoError(t, db.SaveTopRatedOrder([]int{4}))

	movies, err := svc.Search(context.Background(), models.SearchQuery{})
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, 4, movies[0].ID)
}

func TestExtendMovieEnrichesAndPersists(t *testing.T) {
	client := &fakeCatalogClient{videos: []models.MovieVideo{{ID: "v", Key: "k"}}}
	svc, db := newTestCatalog(t, client, true)

	movie := models.Movie{
		ID:        10,
		Title:     "Detail",
		Image:     "data:image/jpeg;base64,ZmFrZQ==",
		BackImage: "/back.jpg",
		Characters: []models.Cast{
			{ID: 1, Name: "Lead", ProfileImage: "/lead.jpg"},
		},
	}

	extended, err := svc.ExtendMovie(context.Background(), movie, models.MovieMarker{Favorite: true})
	require.NoError(t, err)
	require.Len(t, extended.Videos, 1)
	assert.True(t, IsEncoded(extended.BackImage))
	assert.True(t, IsEncoded(extended.Characters[0].ProfileImage))
	assert.True(t, extended.Favorite)

	stored, err := db.GetMovie(10)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, IsEncoded(stored.BackImage))
}

func TestExtendMovieSkipsAlreadyEnriched(t *testing.T) {
	client := &fakeCatalogClient{}
	encoder := &fakeEncoder{}
	db, err := database.NewBolt(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer db.Close()
	svc := NewCatalogService(db, client, encoder, connectivity.Static(true), logger.New())

	movie := models.Movie{
		ID:         11,
		Title:      "Done",
		Image:      "data:image/jpeg;base64,ZmFrZQ==",
		BackImage:  "data:image/jpeg;base64,ZmFrZQ==",
		Characters: []models.Cast{{ID: 1, ProfileImage: "data:image/jpeg;base64,ZmFrZQ=="}},
	}
	require.NoError(t, db.SaveMovie(&movie))

	got, err := svc.ExtendMovie(context.Background(), movie, models.MovieMarker{})
	require.NoError(t, err)
	assert.Equal(t, movie.BackImage, got.BackImage)
	assert.Zero(t, int(encoder.calls), "encoded references must not be fetched again")
	assert.Zero(t, client.networkCalls())
}

func TestExtendMovieOfflinePassesThrough(t *testing.T) {
	client := &fakeCatalogClient{}
	svc, _ := newTestCatalog(t, client, false)

	movie := models.Movie{ID: 12, Title: "Offline", BackImage: "/raw.jpg"}
	got, err := svc.ExtendMovie(context.Background(), movie, models.MovieMarker{OnWatchList: true})
	require.NoError(t, err)
	assert.Equal(t, "/raw.jpg", got.BackImage)
	assert.True(t, got.Watchlist)
	assert.Zero(t, client.networkCalls())
}

func TestMoviesForMarkedPrefersLocalStore(t *testing.T) {
	client := &fakeCatalogClient{movies: map[int]models.Movie{
		21: {ID: 21, Title: "Remote"},
	}}
	svc, db := newTestCatalog(t, client, true)

	require.NoError(t, db.SaveMovie(&models.Movie{ID: 20, Title: "Local"}))

	movies, err := svc.MoviesForMarked(context.Background(), []markerstore.MovieRef{
		{ID: 20}, {ID: 21},
	})
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "Local", movies[0].Title)
	assert.Equal(t, "Remote", movies[1].Title)

	// The remote fetch is persisted for the next offline read.
	stored, err := db.GetMovie(21)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestMoviesForMarkedOfflineSkipsUncached(t *testing.T) {
	client := &fakeCatalogClient{movies: map[int]models.Movie{31: {ID: 31}}}
	svc, db := newTestCatalog(t, client, false)

	require.NoError(t, db.SaveMovie(&models.Movie{ID: 30, Title: "Cached"}))

	movies, err := svc.MoviesForMarked(context.Background(), []markerstore.MovieRef{
		{ID: 30}, {ID: 31},
	})
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, 30, movies[0].ID)
	assert.Zero(t, client.networkCalls())
}

func TestCategoriesLocalFirst(t *testing.T) {
	client := &fakeCatalogClient{}
	svc, db := newTestCatalog(t, client, true)

	require.NoError(t, db.SaveCategories([]models.Category{{ID: 1, Name: "Stored"}}))

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Stored", categories[0].Name)
	assert.Zero(t, client.networkCalls())
}

func TestCategoriesOnlineFetchPersists(t *testing.T) {
	client := &fakeCatalogClient{}
	svc, db := newTestCatalog(t, client, true)

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)

	stored, err := db.GetCategories()
	require.NoError(t, err)
	assert.Equal(t, categories, stored)
}
