// Package httpserver exposes the store over HTTP: a read-only view, organization selection,
// refresh, recorded history and Prometheus metrics.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"DAOScope/internal/config"
	"DAOScope/internal/recorder"
	"DAOScope/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const defaultHistoryLimit = 50

// Server serves the HTTP surface.
type Server struct {
	store    *store.Store
	recorder recorder.Recorder
	log      *zap.Logger
	engine   *gin.Engine
}

// New builds the router. rec may be nil.
func New(st *store.Store, rec recorder.Recorder, logger *zap.Logger) *Server {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{store: st, recorder: rec, log: logger.Named("http"), engine: gin.New()}
	s.engine.Use(gin.Recovery(), metrics(s.log))

	s.engine.GET("/healthz", s.health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	{
		api.GET("/state", s.state)
		api.GET("/organizations", s.organizations)
		api.POST("/organizations/:key/select", s.selectOrganization)
		api.GET("/organizations/:key/history", s.history)
		api.POST("/refresh", s.refresh)
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	status := "ok"
	if !s.store.Connected() {
		status = "disconnected"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "organization": s.store.Selected()})
}

func (s *Server) state(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.View())
}

func (s *Server) organizations(c *gin.Context) {
	v := s.store.View()
	c.JSON(http.StatusOK, gin.H{"selected": v.Selected.Key, "organizations": v.Organizations})
}

func (s *Server) selectOrganization(c *gin.Context) {
	key := c.Param("key")
	if err := s.store.Select(c.Request.Context(), key); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.store.View())
}

func (s *Server) refresh(c *gin.Context) {
	var err error
	switch c.Query("branch") {
	case "statistics":
		err = s.store.RefreshStatistics(c.Request.Context())
	case "position":
		err = s.store.RefreshPosition(c.Request.Context())
	case "":
		err = s.store.Refresh(c.Request.Context())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "branch must be statistics or position"})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.store.View())
}

func (s *Server) history(c *gin.Context) {
	key := c.Param("key")
	if !s.known(key) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown organization " + strconv.Quote(key)})
		return
	}
	limit := defaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	points, err := s.recorder.History(key, limit)
	if err != nil {
		s.log.Error("history", zap.String("org", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if points == nil {
		points = []recorder.HistoryPoint{}
	}
	c.JSON(http.StatusOK, gin.H{"organization": key, "points": points})
}

func (s *Server) known(key string) bool {
	for _, o := range s.store.View().Organizations {
		if o.Key == key {
			return true
		}
	}
	return false
}

// fail maps store errors to status codes. The body carries the view so clients still see
// whatever stale data remains.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, config.ErrUnknownOrganization):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, store.ErrNotConnected):
		status = http.StatusServiceUnavailable
	case errors.Is(err, store.ErrSuperseded):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error(), "state": s.store.View()})
}
