package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/bgergo/reelcache/internal/cache"
	"github.com/bgergo/reelcache/internal/config"
	"github.com/bgergo/reelcache/internal/database"
	"github.com/bgergo/reelcache/internal/models"
	"github.com/bgergo/reelcache/internal/services"
	"github.com/bgergo/reelcache/pkg/connectivity"
	"github.com/bgergo/reelcache/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRouter wires the API against a seeded local store in forced
// offline mode, so every read is served from the cache.
func setupTestRouter(t *testing.T) (*gin.Engine, database.Database) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewBolt(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.New()
	offline := connectivity.Static(false)
	memCache := cache.New(100, time.Hour)

	tmdb := services.NewTMDB("test-key", memCache, log)
	images := services.NewImageService(log)
	catalog := services.NewCatalogService(db, tmdb, images, offline, log)
	markers := services.NewMarkerService(db, nil, offline, log)

	container := &services.Container{
		TMDB:    tmdb,
		Images:  images,
		Catalog: catalog,
		Markers: markers,
		Cache:   memCache,
		DB:      db,
	}

	r := gin.New()
	New(container, &config.Config{}, log).RegisterRoutes(r)
	return r, db
}

func seedMovies(t *testing.T, db database.Database) {
	t.Helper()
	require.NoError(t, db.SaveMovies([]models.Movie{
		{ID: 1, Title: "First"},
		{ID: 2, Title: "Second"},
	}))
	require.NoError(t, db.SaveTopRatedOrder([]int{1, 2}))
}

type moviesResponse struct {
	Movies []models.Movie `json:"movies"`
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestTopRatedFromCache(t *testing.T) {
	router, db := setupTestRouter(t)
	seedMovies(t, db)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/movies/top-rated", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp moviesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Movies, 2)
	assert.Equal(t, "First", resp.Movies[0].Title)
}

func TestTopRatedOfflineEmptyState(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/movies/top-rated", nil)
	router.ServeHTTP(w, req)

	// Empty cache while offline is a valid empty state, not an error.
	require.Equal(t, http.StatusOK, w.Code)
	var resp moviesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Movies)
}

func TestSearchRejectsBadYear(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/movies/search?year=94", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchRejectsBadCategory(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/movies/search?category=horror", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkedRejectsUnknownKind(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/marked/liked", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestToggleRequiresUsername(t *testing.T) {
	router, db := setupTestRouter(t)
	seedMovies(t, db)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/movies/1/markers/favorites/toggle", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestToggleFavoriteRoundTrip(t *testing.T) {
	router, db := setupTestRouter(t)
	seedMovies(t, db)

	toggle := func() models.Movie {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/movies/1/markers/favorites/toggle", nil)
		req.Header.Set("X-Username", "anna")
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var movie models.Movie
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &movie))
		return movie
	}

	assert.True(t, toggle().Favorite)
	assert.False(t, toggle().Favorite)
}

func TestToggleUnknownMovie(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/movies/99/markers/favorites/toggle", nil)
	req.Header.Set("X-Username", "anna")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkedListsFlaggedMovies(t *testing.T) {
	router, db := setupTestRouter(t)
	seedMovies(t, db)
	require.NoError(t, db.SaveMarker(2, models.MovieMarker{OnWatchList: true}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/marked/watchlist", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp moviesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Movies, 1)
	assert.Equal(t, "Second", resp.Movies[0].Title)
	assert.True(t, resp.Movies[0].Watchlist)
}
