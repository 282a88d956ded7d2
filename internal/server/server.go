// Package server assembles the gin engine and runs it.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/cristianadrielbraun/avatarstudio/internal/compose"
	"github.com/cristianadrielbraun/avatarstudio/internal/config"
	"github.com/cristianadrielbraun/avatarstudio/internal/gemini"
	"github.com/cristianadrielbraun/avatarstudio/internal/handlers"
)

func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		return mode
	default:
		return gin.ReleaseMode
	}
}

// NewEngine wires the Gemini client, compositor and handlers into a gin
// engine.
func NewEngine(ctx context.Context, cfg *config.Config, log *slog.Logger) (*gin.Engine, error) {
	gin.SetMode(ginMode(cfg.GinMode))
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(handlers.RequestID())

	// Static assets
	r.Static("/web/static", cfg.StaticDir)

	client, err := gemini.New(ctx, cfg.Gemini, gemini.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if !client.Configured() {
		log.Warn("GEMINI_API_KEY is not set; /generate and /models will answer 500")
	}
	comp, err := compose.FromConfig(cfg.Compose)
	if err != nil {
		return nil, err
	}

	h := handlers.New(client, comp, handlers.WithLogger(log), handlers.WithMaxBody(cfg.MaxUploadBytes))
	h.Register(r)
	return r, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	r, err := NewEngine(ctx, cfg, log)
	if err != nil {
		return err
	}
	srv := &http.Server{Addr: cfg.Addr(), Handler: r}

	errc := make(chan error, 1)
	go func() {
		log.Info("avatar studio listening", "addr", cfg.Addr(), "model", cfg.Gemini.Model)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	log.Info("shutting down")
	return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
}
