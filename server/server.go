package server

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nfnt/resize"
	"github.com/segmentio/ksuid"

	"github.com/chaos-io/iconbg/icon"
	"github.com/chaos-io/iconbg/rembg"
	"github.com/chaos-io/iconbg/util"
)

const (
	RequestIDHeader   = "X-Request-Id"
	TransparentHeader = "X-Has-Transparency"
	maxThumbnailSize  = 1024
	pngContentType    = "image/png"
)

type Server struct {
	store          *icon.Store
	remover        rembg.Remover
	maxUploadBytes int64
	maxPixels      int64
}

func New(store *icon.Store, maxUploadBytes, maxPixels int64) *Server {
	return &Server{
		store:          store,
		remover:        rembg.NewWhiteRemover(),
		maxUploadBytes: maxUploadBytes,
		maxPixels:      maxPixels,
	}
}

// Handler 返回注册好路由的 gin.Engine
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/v1/remove", s.remove)
	r.GET("/icon.png", s.icon)
	return r
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = ksuid.New().String()
		}
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("request",
			"id", c.GetString(RequestIDHeader),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}

// remove 上传图片，返回去掉白色背景的 PNG
func (s *Server) remove(c *gin.Context) {
	if c.Request.ContentLength > s.maxUploadBytes {
		abort(c, http.StatusRequestEntityTooLarge, errors.New("upload too large"))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes)

	fh, err := c.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			abort(c, http.StatusRequestEntityTooLarge, err)
			return
		}
		abort(c, http.StatusBadRequest, err)
		return
	}

	f, err := fh.Open()
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	defer func() {
		_ = f.Close()
	}()

	// 先读头部尺寸，避免小文件声明超大画布
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > s.maxPixels {
		abort(c, http.StatusRequestEntityTooLarge,
			fmt.Errorf("image %dx%d exceeds %d pixels", cfg.Width, cfg.Height, s.maxPixels))
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}

	img, _, err := image.Decode(f)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	out, err := s.remover.Remove(c.Request.Context(), img)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}

	buf := &bytes.Buffer{}
	if err := util.EncodePNG(buf, out); err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}

	if nrgba, ok := out.(*image.NRGBA); ok {
		c.Header(TransparentHeader, strconv.FormatBool(rembg.HasTransparency(nrgba)))
	}
	c.Data(http.StatusOK, pngContentType, buf.Bytes())
}

// icon 返回当前图标，size 参数生成不超过 size×size 的缩略图
func (s *Server) icon(c *gin.Context) {
	sizeParam := c.Query("size")
	if sizeParam == "" {
		data, updatedAt, err := s.store.PNG()
		if err != nil {
			abort(c, http.StatusServiceUnavailable, err)
			return
		}
		c.Header("Last-Modified", updatedAt.UTC().Format(http.TimeFormat))
		c.Data(http.StatusOK, pngContentType, data)
		return
	}

	size, err := strconv.Atoi(sizeParam)
	if err != nil || size < 1 || size > maxThumbnailSize {
		abort(c, http.StatusBadRequest, errors.New("size must be an integer in [1, 1024]"))
		return
	}

	img, err := s.store.Image()
	if err != nil {
		abort(c, http.StatusServiceUnavailable, err)
		return
	}

	thumb := resize.Thumbnail(uint(size), uint(size), img, resize.Lanczos3)
	buf := &bytes.Buffer{}
	if err := util.EncodePNG(buf, thumb); err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, pngContentType, buf.Bytes())
}

func abort(c *gin.Context, code int, err error) {
	if code >= http.StatusInternalServerError {
		slog.Error("request failed", "id", c.GetString(RequestIDHeader), "err", err)
	}
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}
