// Package models defines the domain types shared across the application.
package models

// Movie is the catalog's central record. Image references start out as
// TMDB paths (leading '/') and are rewritten to self-contained data URIs
// when the record is cached for offline use. The three marker booleans
// are a per-user overlay joined in at read time; the markers collection
// is the ground truth, the copies here exist for fast display only.
type Movie struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Image       string       `json:"image"`
	BackImage   string       `json:"backImage,omitempty"`
	Videos      []MovieVideo `json:"videos,omitempty"`
	Description string       `json:"description"`
	Rating      float64      `json:"rating"`
	Release     string       `json:"release"`
	Categories  []Category   `json:"categories"`
	GenreIDs    []int        `json:"genreIds,omitempty"`
	Characters  []Cast       `json:"characters"`
	NumOfVotes  int          `json:"numOfVotes"`
	Language    string       `json:"language"`

	Favorite    bool `json:"favorite"`
	AlreadySeen bool `json:"alreadySeen"`
	Watchlist   bool `json:"watchlist"`
}

// Cast is one credited actor. Order is the billing order, ascending
// means more prominent.
type Cast struct {
	ID           int    `json:"id"`
	Order        int    `json:"order"`
	Character    string `json:"character"`
	Name         string `json:"name"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// Category is a globally shared genre, fetched once per session.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MovieVideo is a trailer or clip; Key builds the playback URL on Site.
type MovieVideo struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// MovieMarker is the per-movie favorite/seen/watchlist triple.
type MovieMarker struct {
	Favorite    bool `json:"favorite"`
	AlreadySeen bool `json:"alreadySeen"`
	OnWatchList bool `json:"onWatchList"`
}

// IsZero reports whether no flag is set.
func (m MovieMarker) IsZero() bool {
	return !m.Favorite && !m.AlreadySeen && !m.OnWatchList
}

// MarkerRecord pairs a marker with the movie it belongs to.
type MarkerRecord struct {
	MovieID int         `json:"movieId"`
	Marker  MovieMarker `json:"marker"`
}

// TopRatedEntry is one row of the persisted top-rated ordering.
// Rank is the 1-based position within the listing.
type TopRatedEntry struct {
	ID   int `json:"id"`
	Rank int `json:"rank"`
}

// SearchQuery holds up to three independent optional facets. The zero
// value means "no criteria" and degenerates to the top-rated listing.
type SearchQuery struct {
	Title      string
	Year       string
	CategoryID int
}

// IsEmpty reports whether no facet is set.
func (q SearchQuery) IsEmpty() bool {
	return q.Title == "" && q.Year == "" && q.CategoryID == 0
}

// Session identifies the acting user for marker writes. It is passed
// explicitly into every operation that needs the username instead of
// living in process-wide state.
type Session struct {
	Username string
}
