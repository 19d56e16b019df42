package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/bgergo/reelcache/internal/cache"
	"github.com/bgergo/reelcache/internal/constants"
	"github.com/bgergo/reelcache/internal/models"
	"github.com/bgergo/reelcache/pkg/httputil"
	"github.com/bgergo/reelcache/pkg/logger"
	"github.com/bgergo/reelcache/pkg/ratelimiter"
)

const genresCacheKey = "tmdb:genres"

// TMDB is the client for the remote movie metadata API. Responses are
// mapped into the domain model; unmapped remote fields are discarded.
type TMDB struct {
	apiKey      string
	baseURL     string
	cache       *cache.LRUCache
	rateLimiter *ratelimiter.TokenBucket
	httpClient  *http.Client
	logger      logger.Logger
}

// NewTMDB creates a TMDB client.
func NewTMDB(apiKey string, memCache *cache.LRUCache, log logger.Logger) *TMDB {
	return &TMDB{
		apiKey:      apiKey,
		baseURL:     constants.TMDBAPIBaseURL,
		cache:       memCache,
		rateLimiter: ratelimiter.NewTokenBucket(constants.TMDBRateBurst, constants.TMDBRateLimit),
		httpClient:  httputil.NewHTTPClient(constants.TMDBRequestTimeout),
		logger:      log,
	}
}

func (t *TMDB) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	t.rateLimiter.Wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build TMDB request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch TMDB data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("TMDB API error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode TMDB response: %w", err)
	}
	return nil
}

func (t *TMDB) endpoint(path string, params url.Values) string {
	params.Set("api_key", t.apiKey)
	return t.baseURL + path + "?" + params.Encode()
}

func listParams() url.Values {
	v := url.Values{}
	v.Set("language", constants.TMDBLanguageRegion)
	v.Set("region", constants.TMDBRegion)
	return v
}

// GetGenres fetches the shared category list. Categories do not change
// within a session, so the result is cached in memory.
func (t *TMDB) GetGenres(ctx context.Context) ([]models.Category, error) {
	if cached, found := t.cache.Get(genresCacheKey); found {
		return cached.([]models.Category), nil
	}

	var resp models.TMDBGenreList
	if err := t.getJSON(ctx, t.endpoint(constants.TMDBGenreListPath, url.Values{}), &resp); err != nil {
		return nil, err
	}

	categories := make([]models.Category, 0, len(resp.Genres))
	for _, g := range resp.Genres {
		categories = append(categories, models.Category{ID: g.ID, Name: g.Name})
	}
	t.cache.Set(genresCacheKey, categories)
	return categories, nil
}

// GetTopRated fetches the top-rated listing with cast lists attached.
func (t *TMDB) GetTopRated(ctx context.Context) ([]models.Movie, error) {
	categories, err := t.GetGenres(ctx)
	if err != nil {
		return nil, err
	}

	var resp models.TMDBMovieList
	if err := t.getJSON(ctx, t.endpoint(constants.TMDBTopRatedPath, listParams()), &resp); err != nil {
		return nil, err
	}

	return t.mapMovieList(ctx, resp.Results, categories), nil
}

// Search runs the remote query for the given facet combination. The
// facet decides the endpoint: discover variants for category/year,
// the text search endpoint whenever a title is present. Queries with a
// category facet are narrowed client-side afterwards, since the text
// search endpoint cannot filter by genre.
func (t *TMDB) Search(ctx context.Context, query models.SearchQuery) ([]models.Movie, error) {
	rawURL := t.searchURL(query)
	if rawURL == "" {
		return nil, nil
	}

	categories, err := t.GetGenres(ctx)
	if err != nil {
		return nil, err
	}

	var resp models.TMDBMovieList
	if err := t.getJSON(ctx, rawURL, &resp); err != nil {
		return nil, err
	}

	results := resp.Results
	if query.CategoryID != 0 {
		filtered := results[:0]
		for _, m := range results {
			for _, gid := range m.GenreIDs {
				if gid == query.CategoryID {
					filtered = append(filtered, m)
					break
				}
			}
		}
		results = filtered
	}

	return t.mapMovieList(ctx, results, categories), nil
}

// searchURL maps the facet combination to the matching endpoint, or ""
// when no facet is set.
func (t *TMDB) searchURL(query models.SearchQuery) string {
	if query.IsEmpty() {
		return ""
	}

	if query.Title != "" {
		params := listParams()
		params.Set("query", query.Title)
		if query.Year != "" {
			params.Set("year", query.Year)
		}
		return t.endpoint(constants.TMDBSearchPath, params)
	}

	params := listParams()
	params.Set("sort_by", constants.TMDBSortPopularity)
	if query.CategoryID != 0 {
		params.Set("with_genres", strconv.Itoa(query.CategoryID))
	}
	if query.Year != "" {
		params.Set("year", query.Year)
	}
	return t.endpoint(constants.TMDBDiscoverPath, params)
}

// GetMovie fetches a single movie record by id.
func (t *TMDB) GetMovie(ctx context.Context, id int) (*models.Movie, error) {
	var resp models.TMDBMovie
	if err := t.getJSON(ctx, t.endpoint(constants.TMDBMoviePath+strconv.Itoa(id), url.Values{}), &resp); err != nil {
		return nil, err
	}

	// The single-movie endpoint returns full genre objects instead of ids.
	categories := make([]models.Category, 0, len(resp.Genres))
	genreIDs := make([]int, 0, len(resp.Genres))
	for _, g := range resp.Genres {
		categories = append(categories, models.Category{ID: g.ID, Name: g.Name})
		genreIDs = append(genreIDs, g.ID)
	}

	movie := mapMovie(resp, categories)
	movie.GenreIDs = genreIDs

	characters, err := t.GetCredits(ctx, id)
	if err != nil {
		t.logger.Warnf("[TMDB] failed to fetch credits for movie %d: %v", id, err)
	} else {
		movie.Characters = characters
	}
	return &movie, nil
}

// GetCredits fetches the cast list for a movie, keeping the first
// five members by billing order.
func (t *TMDB) GetCredits(ctx context.Context, id int) ([]models.Cast, error) {
	var resp models.TMDBCredits
	path := constants.TMDBMoviePath + strconv.Itoa(id) + constants.TMDBCreditsPart
	if err := t.getJSON(ctx, t.endpoint(path, url.Values{}), &resp); err != nil {
		return nil, err
	}

	members := resp.Cast
	sort.Slice(members, func(i, j int) bool { return members[i].Order < members[j].Order })
	if len(members) > constants.MaxCastMembers {
		members = members[:constants.MaxCastMembers]
	}

	casts := make([]models.Cast, 0, len(members))
	for _, m := range members {
		casts = append(casts, models.Cast{
			ID:           m.CastID,
			Order:        m.Order,
			Character:    m.Character,
			Name:         m.Name,
			ProfileImage: m.ProfilePath,
		})
	}
	return casts, nil
}

// GetVideos fetches the video list for a movie.
func (t *TMDB) GetVideos(ctx context.Context, id int) ([]models.MovieVideo, error) {
	var resp models.TMDBVideoList
	path := constants.TMDBMoviePath + strconv.Itoa(id) + constants.TMDBVideosPart
	if err := t.getJSON(ctx, t.endpoint(path, url.Values{}), &resp); err != nil {
		return nil, err
	}

	videos := make([]models.MovieVideo, 0, len(resp.Results))
	for _, v := range resp.Results {
		videos = append(videos, models.MovieVideo{
			ID:   v.ID,
			Key:  v.Key,
			Name: v.Name,
			Site: v.Site,
			Type: v.Type,
		})
	}
	return videos, nil
}

// mapMovieList maps list results and attaches cast lists. A failed
// credits fetch leaves the cast list empty rather than dropping the
// movie.
func (t *TMDB) mapMovieList(ctx context.Context, results []models.TMDBMovie, categories []models.Category) []models.Movie {
	movies := make([]models.Movie, 0, len(results))
	for _, tm := range results {
		movie := mapMovie(tm, relatedCategories(tm.GenreIDs, categories))
		movie.GenreIDs = tm.GenreIDs

		characters, err := t.GetCredits(ctx, tm.ID)
		if err != nil {
			t.logger.Warnf("[TMDB] failed to fetch credits for movie %d: %v", tm.ID, err)
		} else {
			movie.Characters = characters
		}
		movies = append(movies, movie)
	}
	return movies
}

func mapMovie(tm models.TMDBMovie, categories []models.Category) models.Movie {
	return models.Movie{
		ID:          tm.ID,
		Title:       tm.Title,
		Image:       tm.PosterPath,
		BackImage:   tm.BackdropPath,
		Description: tm.Overview,
		Rating:      tm.VoteAverage,
		NumOfVotes:  tm.VoteCount,
		Release:     tm.ReleaseDate,
		Language:    tm.OriginalLanguage,
		Categories:  categories,
	}
}

// relatedCategories joins a movie's genre id list against the globally
// cached category set.
func relatedCategories(ids []int, categories []models.Category) []models.Category {
	var related []models.Category
	for _, cat := range categories {
		for _, id := range ids {
			if cat.ID == id {
				related = append(related, cat)
				break
			}
		}
	}
	return related
}
