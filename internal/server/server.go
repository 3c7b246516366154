// Package server exposes the chat pipeline over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hippocampus-app/hippocampus/internal/chat"
	"github.com/hippocampus-app/hippocampus/internal/common"
	"github.com/hippocampus-app/hippocampus/internal/export"
	"github.com/hippocampus-app/hippocampus/internal/repository"
)

type Server struct {
	chat   *chat.Service
	export *export.Service
	store  repository.Store
	cfg    common.ServerConfig
	logger *slog.Logger

	httpSrv *http.Server
}

func NewServer(chatSvc *chat.Service, exportSvc *export.Service, store repository.Store,
	cfg common.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{chat: chatSvc, export: exportSvc, store: store, cfg: cfg, logger: logger}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.cors())

	router.GET("/health", s.handleHealth)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/message", s.handleMessage)
		v1.POST("/receipt", s.handleReceipt)
		v1.GET("/totals", s.handleTotals)
		v1.GET("/export.csv", s.handleExportCSV)
		v1.GET("/export.xlsx", s.handleExportXLSX)
		v1.POST("/seed", s.handleSeed)
	}

	s.httpSrv = &http.Server{
		Addr:           cfg.Addr,
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   2 * time.Minute,
		MaxHeaderBytes: 1 << 20,
	}
	return s
}

func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", s.cfg.AllowedOrigins)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http.listen", "addr", s.cfg.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http.shutdown")
	return s.httpSrv.Shutdown(ctx)
}
