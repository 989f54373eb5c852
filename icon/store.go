package icon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/chaos-io/iconbg/rembg"
	"github.com/chaos-io/iconbg/util"
)

var ErrNotReady = errors.New("icon not ready")

// Store 持有由 SourcePath 生成的透明图标，并缓存 PNG 字节
type Store struct {
	sourcePath string
	iconPath   string
	remover    rembg.Remover

	mu        sync.RWMutex
	data      []byte
	img       image.Image
	updatedAt time.Time
	sourceMod time.Time

	cron *cron.Cron
}

func NewStore(sourcePath, iconPath string) *Store {
	return &Store{
		sourcePath: sourcePath,
		iconPath:   iconPath,
		remover:    rembg.NewWhiteRemover(),
	}
}

// Refresh 源文件修改时间变化时重新生成图标，返回是否重新生成
func (s *Store) Refresh(ctx context.Context) (bool, error) {
	info, err := os.Stat(s.sourcePath)
	if err != nil {
		return false, fmt.Errorf("stat source: %w", err)
	}

	s.mu.RLock()
	unchanged := s.data != nil && info.ModTime().Equal(s.sourceMod)
	s.mu.RUnlock()
	if unchanged {
		return false, nil
	}
	defer util.Trace("refresh icon")()

	src, err := util.OpenImage(s.sourcePath)
	if err != nil {
		return false, fmt.Errorf("decode %s: %w", s.sourcePath, err)
	}

	out, err := s.remover.Remove(ctx, src)
	if err != nil {
		return false, fmt.Errorf("remove background: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := util.EncodePNG(buf, out); err != nil {
		return false, fmt.Errorf("encode icon: %w", err)
	}
	if err := os.WriteFile(s.iconPath, buf.Bytes(), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", s.iconPath, err)
	}

	s.mu.Lock()
	s.data = buf.Bytes()
	s.img = out
	s.updatedAt = time.Now()
	s.sourceMod = info.ModTime()
	s.mu.Unlock()

	slog.Info("icon refreshed", "source", s.sourcePath, "icon", s.iconPath, "bytes", buf.Len())
	return true, nil
}

// PNG 返回缓存的图标字节及生成时间
func (s *Store) PNG() ([]byte, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data == nil {
		return nil, time.Time{}, ErrNotReady
	}
	return s.data, s.updatedAt, nil
}

// Image 返回缓存的图标，用于生成缩略图
func (s *Store) Image() (image.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.img == nil {
		return nil, ErrNotReady
	}
	return s.img, nil
}

// Schedule 按 cron 表达式定时刷新
func (s *Store) Schedule(spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := s.Refresh(context.Background()); err != nil {
			slog.Error("refresh icon", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}

	s.cron = c
	c.Start()
	return nil
}

// Stop 停止定时任务，并等待正在运行的任务结束
func (s *Store) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
