// Package server exposes the order parsing engine over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/cognicore/orderline/pkg/orderline"
	"github.com/cognicore/orderline/pkg/orderline/internalerr"
	"github.com/cognicore/orderline/pkg/orderline/menu"
)

// RequestIDHeader carries the per-request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// Server routes HTTP requests to an Engine.
type Server struct {
	engine  *orderline.Engine
	logger  *slog.Logger
	router  *gin.Engine
	origins []string
}

// Option configures a Server.
type Option func(*Server)

// WithCORS allows browser requests from origins. "*" allows any origin.
func WithCORS(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// New creates a Server and registers its routes.
func New(engine *orderline.Engine, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{engine: engine, logger: logger}
	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())
	if len(s.origins) > 0 {
		cfg := corsConfig(s.origins)
		if err := cfg.Validate(); err != nil {
			logger.Warn("cors disabled", "origins", s.origins, "err", err)
		} else {
			r.Use(cors.New(cfg))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	v1.POST("/orders/parse", s.parseInline)
	v1.POST("/restaurants/:key/orders/parse", s.parseByKey)
	v1.PUT("/restaurants/:key/menu", s.putMenu)
	v1.GET("/restaurants/:key/menu", s.getMenu)
	v1.POST("/webhooks/menu-updated", s.menuUpdated)

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT"},
		AllowHeaders:  []string{"Origin", "Content-Type", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = ulid.Make().String()
		}
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

type parseRequest struct {
	Utterance string `json:"utterance"`
}

type inlineParseRequest struct {
	Menu      *menu.Menu `json:"menu"`
	Utterance string     `json:"utterance"`
}

type menuUpdatedRequest struct {
	RestaurantKey string `json:"restaurantKey"`
}

func (s *Server) parseInline(c *gin.Context) {
	var req inlineParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	c.JSON(http.StatusOK, s.engine.ParseOrder(req.Menu, req.Utterance))
}

func (s *Server) parseByKey(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	key := c.Param("key")

	res, err := s.engine.ParseOrderByKey(c.Request.Context(), key, req.Utterance)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !res.Success {
		s.logger.Debug("parse failed", "key", key, "kind", res.ErrorKind, "tokens", res.Tokens)
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) putMenu(c *gin.Context) {
	var m menu.Menu
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid menu payload"})
		return
	}
	key := c.Param("key")
	if m.Key != "" && m.Key != key {
		c.JSON(http.StatusBadRequest, gin.H{"error": "menu key does not match path"})
		return
	}
	m.Key = key

	if err := s.engine.UpdateMenu(c.Request.Context(), &m); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "version": m.Version, "items": len(m.Items())})
}

func (s *Server) getMenu(c *gin.Context) {
	m, err := s.engine.Menu(c.Request.Context(), c.Param("key"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// menuUpdated is the menu-change webhook. An empty key invalidates every
// cached index.
func (s *Server) menuUpdated(c *gin.Context) {
	var req menuUpdatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	s.engine.InvalidateIndex(req.RestaurantKey)

	scope := req.RestaurantKey
	if scope == "" {
		scope = "*"
	}
	c.JSON(http.StatusAccepted, gin.H{"invalidated": scope})
}

func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, internalerr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, internalerr.ErrInvalidInput), errors.Is(err, internalerr.ErrInvalidMenu):
		status = http.StatusBadRequest
	case errors.Is(err, internalerr.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
