// Package handlers implements the HTTP API consumed by the browser UI.
package handlers

import (
	"net/http"

	"github.com/bgergo/reelcache/internal/config"
	"github.com/bgergo/reelcache/internal/constants"
	"github.com/bgergo/reelcache/internal/services"
	"github.com/bgergo/reelcache/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the catalog API.
type Handler struct {
	services *services.Container
	config   *config.Config
	logger   logger.Logger
}

// New creates a Handler with the provided services and configuration.
func New(services *services.Container, config *config.Config, log logger.Logger) *Handler {
	return &Handler{
		services: services,
		config:   config,
		logger:   log,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.handleHealth)

	api := r.Group("/api")
	{
		api.GET("/movies/top-rated", h.handleTopRated)
		api.GET("/movies/search", h.handleSearch)
		api.GET("/movies/:id", h.handleMovieDetail)
		api.POST("/movies/:id/markers/:kind/toggle", h.handleToggleMarker)
		api.GET("/categories", h.handleCategories)
		api.GET("/marked/:kind", h.handleMarked)
	}
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": constants.AppVersion})
}
