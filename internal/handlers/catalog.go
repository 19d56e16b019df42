package handlers

import (
	"net/http"
	"strconv"

	"github.com/bgergo/reelcache/internal/markerstore"
	"github.com/bgergo/reelcache/internal/models"
	"github.com/gin-gonic/gin"
)

// handleTopRated serves the top-rated listing. An empty list is a valid
// response and signals the offline empty state to the UI.
func (h *Handler) handleTopRated(c *gin.Context) {
	movies, err := h.services.Catalog.TopRated(c.Request.Context())
	if err != nil {
		h.logger.Errorf("[Handlers] top-rated read failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"movies": movies})
}

// handleSearch runs a faceted search from query parameters: title, year
// (four digits) and category (numeric id), each optional.
func (h *Handler) handleSearch(c *gin.Context) {
	query := models.SearchQuery{
		Title: c.Query("title"),
		Year:  c.Query("year"),
	}
	if query.Year != "" && len(query.Year) != 4 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year must be four digits"})
		return
	}
	if raw := c.Query("category"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
			return
		}
		query.CategoryID = id
	}

	movies, err := h.services.Catalog.Search(c.Request.Context(), query)
	if err != nil {
		h.logger.Errorf("[Handlers] search failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"movies": movies})
}

// handleMovieDetail serves a single movie, enriched with videos and
// encoded images when that is still missing and the network allows it.
func (h *Handler) handleMovieDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid movie id"})
		return
	}
	ctx := c.Request.Context()

	movie, ok := h.resolveMovie(c, id)
	if !ok {
		return
	}

	marker, err := h.services.Markers.Marker(ctx, id)
	if err != nil {
		h.logger.Warnf("[Handlers] marker read failed for movie %d: %v", id, err)
	}

	extended, err := h.services.Catalog.ExtendMovie(ctx, movie, marker)
	if err != nil {
		h.logger.Errorf("[Handlers] movie extension failed for %d: %v", id, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}
	c.JSON(http.StatusOK, extended)
}

func (h *Handler) handleCategories(c *gin.Context) {
	categories, err := h.services.Catalog.Categories(c.Request.Context())
	if err != nil {
		h.logger.Errorf("[Handlers] category read failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// resolveMovie loads a movie from the local store, falling back to a
// remote fetch. Writes the error response itself when nothing is found.
func (h *Handler) resolveMovie(c *gin.Context, id int) (models.Movie, bool) {
	movies, err := h.services.Catalog.MoviesForMarked(c.Request.Context(), []markerstore.MovieRef{{ID: id}})
	if err != nil {
		h.logger.Errorf("[Handlers] movie lookup failed for %d: %v", id, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return models.Movie{}, false
	}
	if len(movies) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "movie not found"})
		return models.Movie{}, false
	}
	return movies[0], true
}
