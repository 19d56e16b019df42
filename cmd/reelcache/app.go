package main

import (
	"context"
	"path/filepath"

	"github.com/bgergo/reelcache/internal/cache"
	"github.com/bgergo/reelcache/internal/config"
	"github.com/bgergo/reelcache/internal/constants"
	"github.com/bgergo/reelcache/internal/database"
	"github.com/bgergo/reelcache/internal/handlers"
	"github.com/bgergo/reelcache/internal/markerstore"
	"github.com/bgergo/reelcache/internal/services"
	"github.com/bgergo/reelcache/pkg/connectivity"
	"github.com/bgergo/reelcache/pkg/logger"
)

var (
	Logger           logger.Logger
	Config           *config.Config
	DB               database.Database
	tmdbMemoryCache  *cache.LRUCache
	handler          *handlers.Handler
	serviceContainer *services.Container
	remoteMarkers    markerstore.RemoteStore
)

func InitializeLogger() {
	Logger = logger.New()
}

func InitializeConfig() {
	var err error
	Config, err = config.Load()
	if err != nil {
		Logger.Fatalf("failed to load configuration: %v", err)
	}
	if err := Config.Validate(); err != nil {
		Logger.Fatalf("invalid configuration: %v", err)
	}
}

func InitializeDatabase() {
	var err error
	dbPath := filepath.Join(Config.DatabaseDir, "cache.db")
	DB, err = database.NewBolt(dbPath)
	if err != nil {
		// The local cache is an optimization; without it every read is
		// network-only.
		Logger.Errorf("[App] local cache unavailable, continuing without persistence: %v", err)
		DB = database.NewNull()
		return
	}
	Logger.Infof("[App] local cache database initialized at %s", dbPath)
}

func InitializeServices(ctx context.Context) {
	tmdbMemoryCache = cache.New(Config.CacheSize, Config.CacheTTL)
	tmdbMemoryCache.StartCleanup(ctx)

	var online connectivity.Checker
	if Config.ForceOffline {
		online = connectivity.Static(false)
		Logger.Infof("[App] forced offline mode enabled")
	} else {
		online = connectivity.NewProbe(Config.ProbeHost)
	}

	if Config.MongoURI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, constants.MarkerStoreTimeout)
		store, err := markerstore.NewMongo(connectCtx, Config.MongoURI)
		cancel()
		if err != nil {
			Logger.Errorf("[App] remote marker store unreachable, markers run local-only: %v", err)
		} else {
			remoteMarkers = store
			Logger.Infof("[App] remote marker store connected")
		}
	} else {
		Logger.Infof("[App] no MONGO_URI configured, markers run local-only")
	}

	tmdbService := services.NewTMDB(Config.TMDBAPIKey, tmdbMemoryCache, Logger)
	imageService := services.NewImageService(Logger)
	catalogService := services.NewCatalogService(DB, tmdbService, imageService, online, Logger)
	markerService := services.NewMarkerService(DB, remoteMarkers, online, Logger)

	serviceContainer = &services.Container{
		TMDB:    tmdbService,
		Images:  imageService,
		Catalog: catalogService,
		Markers: markerService,
		Cache:   tmdbMemoryCache,
		DB:      DB,
	}

	handler = handlers.New(serviceContainer, Config, Logger)

	Logger.Infof("[App] services initialized successfully")
}

func Shutdown(ctx context.Context) {
	if remoteMarkers != nil {
		if err := remoteMarkers.Close(ctx); err != nil {
			Logger.Errorf("[App] failed to close remote marker store: %v", err)
		}
	}
	if err := DB.Close(); err != nil {
		Logger.Errorf("[App] failed to close local cache: %v", err)
	}
}
