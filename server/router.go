// Package server exposes the playground over HTTP for the documentation
// site.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wippyai/svgtidy-playground"
	"github.com/wippyai/svgtidy-playground/cache"
)

type RouterDeps struct {
	ServiceName   string
	Version       string
	Optimizer     svgtidy.Optimizer
	Cache         *cache.Cache
	Logger        *zap.Logger
	MaxInputBytes int64
	AllowOrigins  []string
}

// BuildRouter wires health, the v1 API and middleware. With a cache the
// optimizer is wrapped so repeated documents are served from Redis.
func BuildRouter(dep RouterDeps) *gin.Engine {
	log := dep.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(dep.AllowOrigins))

	var pinger Pinger
	opt := dep.Optimizer
	if dep.Cache != nil {
		pinger = dep.Cache
		opt = cache.Wrap(opt, dep.Cache, log)
	}

	NewHealthHandler(dep.ServiceName, dep.Version, pinger).RegisterRoutes(r)

	api := r.Group("/api/v1")
	NewOptimizeHandler(opt, log, dep.MaxInputBytes).RegisterRoutes(api)

	return r
}

// Serve runs handler on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
