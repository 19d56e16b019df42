package models

// Wire structures for TMDB API responses. Unmapped remote fields are
// discarded at decode time.

type TMDBMovieList struct {
	Results []TMDBMovie `json:"results"`
}

type TMDBMovie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	Overview         string  `json:"overview"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	ReleaseDate      string  `json:"release_date"`
	OriginalLanguage string  `json:"original_language"`

	// List endpoints return genre ids, the single-movie endpoint returns
	// full genre objects. Only one of the two is populated.
	GenreIDs []int       `json:"genre_ids"`
	Genres   []TMDBGenre `json:"genres"`
}

type TMDBGenreList struct {
	Genres []TMDBGenre `json:"genres"`
}

type TMDBGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type TMDBCredits struct {
	Cast []TMDBCastMember `json:"cast"`
}

type TMDBCastMember struct {
	CastID      int    `json:"cast_id"`
	Order       int    `json:"order"`
	Character   string `json:"character"`
	Name        string `json:"name"`
	ProfilePath string `json:"profile_path"`
}

type TMDBVideoList struct {
	Results []TMDBVideo `json:"results"`
}

type TMDBVideo struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}
