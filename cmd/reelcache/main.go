package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bgergo/reelcache/internal/middleware"
	"github.com/gin-gonic/gin"
)

func main() {
	InitializeLogger()
	InitializeConfig()
	InitializeDatabase()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	InitializeServices(ctx)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(Logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Gzip())

	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + Config.Port,
		Handler: r,
	}

	go func() {
		Logger.Infof("[App] starting HTTP server on port %s", Config.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	Logger.Infof("[App] shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		Logger.Errorf("[App] server shutdown failed: %v", err)
	}
	cancel()
	Shutdown(shutdownCtx)
}
