package handlers

import (
	"net/http"
	"strconv"

	"github.com/bgergo/reelcache/internal/markerstore"
	"github.com/bgergo/reelcache/internal/models"
	"github.com/gin-gonic/gin"
)

// markerKinds maps the URL kind segment to the remote collection.
var markerKinds = map[string]markerstore.Collection{
	"favorites": markerstore.Favorites,
	"seen":      markerstore.AlreadySeen,
	"watchlist": markerstore.Watchlist,
}

// handleMarked lists the movies carrying one marker flag, resolved to
// full records through the cache.
func (h *Handler) handleMarked(c *gin.Context) {
	coll, ok := markerKinds[c.Param("kind")]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown marker kind"})
		return
	}
	ctx := c.Request.Context()

	refs, err := h.services.Markers.Marked(ctx, coll)
	if err != nil {
		h.logger.Errorf("[Handlers] marked list of %s failed: %v", coll, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "markers unavailable"})
		return
	}

	movies, err := h.services.Catalog.MoviesForMarked(ctx, refs)
	if err != nil {
		h.logger.Errorf("[Handlers] marked resolution failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}

	for i := range movies {
		marker, err := h.services.Markers.Marker(ctx, movies[i].ID)
		if err != nil {
			continue
		}
		movies[i].Favorite = marker.Favorite
		movies[i].AlreadySeen = marker.AlreadySeen
		movies[i].Watchlist = marker.OnWatchList
	}
	c.JSON(http.StatusOK, gin.H{"movies": movies})
}

// handleToggleMarker flips one flag on a movie for the acting user. The
// username comes from the X-Username header; the session is passed
// explicitly down to the synchronizer.
func (h *Handler) handleToggleMarker(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid movie id"})
		return
	}
	kind := c.Param("kind")
	coll, ok := markerKinds[kind]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown marker kind"})
		return
	}

	username := c.GetHeader("X-Username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-Username header"})
		return
	}
	sess := models.Session{Username: username}
	ctx := c.Request.Context()

	movie, ok := h.resolveMovie(c, id)
	if !ok {
		return
	}

	marker, err := h.services.Markers.Marker(ctx, id)
	if err != nil {
		h.logger.Warnf("[Handlers] marker read failed for movie %d: %v", id, err)
	}
	movie.Favorite = marker.Favorite
	movie.AlreadySeen = marker.AlreadySeen
	movie.Watchlist = marker.OnWatchList

	switch coll {
	case markerstore.Favorites:
		h.services.Markers.ToggleFavorite(ctx, sess, &movie)
	case markerstore.AlreadySeen:
		h.services.Markers.ToggleAlreadySeen(ctx, sess, &movie)
	case markerstore.Watchlist:
		h.services.Markers.ToggleWatchlist(ctx, sess, &movie)
	}

	c.JSON(http.StatusOK, movie)
}
