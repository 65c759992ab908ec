package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/watit-thammarat/imagini/internal/models"
	"github.com/watit-thammarat/imagini/internal/storage"
)

const (
	maxUploadBytes = 10 << 20
	imageCtxKey    = "image"
)

var (
	imageNameRe  = regexp.MustCompile(`(?i)\.(png|jpg)$`)
	imageMediaRe = regexp.MustCompile(`^image/`)
)

// resolveImage guards every image-scoped route. An invalid name fails before
// any storage access: 404 on lookups, 403 when a write targets a bad name.
// The resolved record is attached to the request context.
func (s *Server) resolveImage(c *gin.Context) {
	name := c.Param("name")
	if !imageNameRe.MatchString(name) {
		status := http.StatusNotFound
		if c.Request.Method == http.MethodPost {
			status = http.StatusForbidden
		}
		c.AbortWithStatus(status)
		return
	}

	img, err := s.store.GetByName(c.Request.Context(), name)
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.Set(imageCtxKey, img)
}

func resolvedImage(c *gin.Context) *models.Image {
	return c.MustGet(imageCtxKey).(*models.Image)
}

// handleUpload accepts the raw body as the image payload. The name is taken
// as given; insert failures are reported in the body with the storage error
// code, not as a server error status.
func (s *Server) handleUpload(c *gin.Context) {
	if !imageMediaRe.MatchString(c.ContentType()) {
		c.AbortWithStatus(http.StatusUnsupportedMediaType)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes))
	if err != nil {
		c.AbortWithStatus(http.StatusRequestEntityTooLarge)
		return
	}

	img, err := s.store.Insert(c.Request.Context(), c.Param("name"), body)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "error", "code": storage.ErrorCode(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "size": img.Size})
}

// handleDownload decodes the stored payload, applies the requested transforms
// and streams the result. The date_used update is fire-and-forget: the
// response never waits on it or fails because of it.
func (s *Server) handleDownload(c *gin.Context) {
	img := resolvedImage(c)

	src, err := imaging.Decode(bytes.NewReader(img.Data))
	if err != nil {
		log.Warn().Err(err).Str("name", img.Name).Msg("stored payload does not decode")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	format, err := formatFromName(img.Name)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	out := applyTransforms(src, parseTransformParams(c.Request.URL.Query()))

	id := img.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.store.TouchUsed(ctx, id); err != nil {
			log.Warn().Err(err).Str("id", id.String()).Msg("date_used update failed")
		}
	}()

	// Extension verbatim from the stored name, case preserved.
	c.Header("Content-Type", "image/"+strings.TrimPrefix(filepath.Ext(img.Name), "."))
	c.Status(http.StatusOK)
	if err := imaging.Encode(c.Writer, out, format); err != nil {
		log.Warn().Err(err).Str("name", img.Name).Msg("streaming image failed")
	}
}

// handleHead is an existence probe; the guard already resolved the record.
func (s *Server) handleHead(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (s *Server) handleDelete(c *gin.Context) {
	img := resolvedImage(c)
	if err := s.store.DeleteByID(c.Request.Context(), img.ID); err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) handleStats(c *gin.Context) {
	st, err := s.store.Stats(c.Request.Context())
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	st.Uptime = time.Since(s.started).Seconds()
	c.JSON(http.StatusOK, st)
}
