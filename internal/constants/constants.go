// Package constants defines application-wide constants and default values.
package constants

const (
	AppName    = "reelcache"
	AppVersion = "1.0.0"

	// Default configuration values
	DefaultPort     = "5000"
	DefaultLogLevel = "info"

	// Cache settings
	DefaultCacheSize = 1000
	DefaultCacheTTL  = 24 // hours

	// Rate limiting
	TMDBRateLimit = 20 // requests per second
	TMDBRateBurst = 5  // burst capacity
)

// TMDB API endpoints and parameters.
const (
	TMDBAPIBaseURL = "https://api.themoviedb.org/3"

	TMDBTopRatedPath  = "/movie/top_rated"
	TMDBGenreListPath = "/genre/movie/list"
	TMDBSearchPath    = "/search/movie"
	TMDBDiscoverPath  = "/discover/movie"
	TMDBMoviePath     = "/movie/"
	TMDBCreditsPart   = "/credits"
	TMDBVideosPart    = "/videos"

	TMDBLanguageRegion = "en-US"
	TMDBRegion         = "hu"
	TMDBSortPopularity = "popularity.desc"
)

// TMDB image CDN base URL and size variants. A reference returned by the
// API is a path starting with '/'; the display URL is base + size + path.
const (
	TMDBImageBaseURL = "https://image.tmdb.org/t/p/"

	ProfileImageSize  = "w185"
	PosterImageSize   = "w500"
	BackdropImageSize = "w1280"
)

// Remote marker collection names, shared with every client of the
// marker store.
const (
	CollectionFavorites   = "Favorites"
	CollectionAlreadySeen = "AlreadySeen"
	CollectionWatchlist   = "Watchlist"
)
