// Package server exposes the complaint console over HTTP for the admin
// frontend.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/complaint"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/console"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/feedback"
	"github.com/KIMKEONHO/Ingredients-Management-System-sub001/internal/health"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// BulkNotifier is told about bulk status changes that asked for it.
// *telegram.Client satisfies it.
type BulkNotifier interface {
	SendBulkReport(res complaint.BulkResult) error
}

// Config holds the HTTP layer settings.
type Config struct {
	PageSize        int
	GateSecret      string // gate disabled when empty
	GateRedirectURL string // 401 when empty
	AllowedOrigins  []string
}

// Server represents the HTTP server
type Server struct {
	router   *gin.Engine
	http     *http.Server
	cfg      Config
	store    *complaint.Store
	linker   *feedback.Linker
	monitor  *health.Monitor
	notifier BulkNotifier
}

// New creates a server over store. linker, monitor and notifier may be nil.
func New(cfg Config, store *complaint.Store, linker *feedback.Linker, monitor *health.Monitor, notifier BulkNotifier) *Server {
	if cfg.PageSize <= 0 {
		cfg.PageSize = console.DefaultPageSize
	}
	if monitor == nil {
		monitor = health.NewMonitor(nil)
	}

	s := &Server{
		router:   gin.New(),
		cfg:      cfg,
		store:    store,
		linker:   linker,
		monitor:  monitor,
		notifier: notifier,
	}
	s.router.Use(gin.Recovery(), gin.Logger())
	s.router.Use(corsMiddleware(cfg.AllowedOrigins))
	s.routes()
	return s
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cc := cors.DefaultConfig()
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
		cc.AllowCredentials = true
	}
	cc.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	cc.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Request-ID"}
	cc.MaxAge = 24 * time.Hour
	return cors.New(cc)
}

func (s *Server) routes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	api.Use(Gate(s.cfg.GateSecret, s.cfg.GateRedirectURL))

	api.GET("/complaints", s.handleList)
	api.GET("/complaints/export.csv", s.handleExport)
	api.POST("/complaints/reload", s.handleReload)
	api.POST("/complaints/bulk-status", s.handleBulkStatus)
	api.PATCH("/complaints/:id/status", s.handleSetStatus)
	api.GET("/complaints/:id/feedback", s.handleGetFeedback)
	api.PUT("/complaints/:id/feedback", s.handleSaveFeedback)
	api.DELETE("/complaints/:id/feedback", s.handleDeleteFeedback)
	api.GET("/stats", s.handleStats)
	api.GET("/stats/summary.png", s.handleSummaryImage)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port string) error {
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("✓ Console API listening on :%s", port)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Println("  → Shutting down console API...")
	return s.http.Shutdown(shutdownCtx)
}
