package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/watit-thammarat/imagini/internal/models"
)

// ImageStore is the persistence surface the handlers need. Implemented by
// *storage.Storage; tests substitute an in-memory fake.
type ImageStore interface {
	Insert(ctx context.Context, name string, data []byte) (*models.Image, error)
	GetByName(ctx context.Context, name string) (*models.Image, error)
	TouchUsed(ctx context.Context, id uuid.UUID) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*models.Stats, error)
}

type Server struct {
	cfg     *models.Config
	router  *gin.Engine
	store   ImageStore
	httpSrv *http.Server
	started time.Time
}

func NewServer(cfg *models.Config, store ImageStore) *Server {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	s := &Server{
		cfg:     cfg,
		router:  r,
		store:   store,
		started: time.Now(),
	}
	s.httpSrv = &http.Server{Addr: cfg.ServerAddr, Handler: r}

	uploads := r.Group("/uploads")
	uploads.POST("/:name", s.handleUpload)
	uploads.GET("/:name", s.resolveImage, s.handleDownload)
	uploads.HEAD("/:name", s.resolveImage, s.handleHead)
	uploads.DELETE("/:name", s.resolveImage, s.handleDelete)

	r.GET("/stats", s.handleStats)
	r.GET("/thumbnail.png", s.handleThumbnail(imaging.PNG))
	r.GET("/thumbnail.jpg", s.handleThumbnail(imaging.JPEG))

	return s
}

func (s *Server) Start() error {
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
