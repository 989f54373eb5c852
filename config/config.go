package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr           = ":8080"
	DefaultSourcePath     = "assets/original_icon.jpg"
	DefaultIconPath       = "assets/icon.png"
	DefaultRefreshSpec    = "@every 1m"
	DefaultMaxUploadBytes = 10 << 20
	DefaultMaxPixels      = 25_000_000
)

type Config struct {
	Addr           string `yaml:"addr"`
	SourcePath     string `yaml:"source_path"`
	IconPath       string `yaml:"icon_path"`
	RefreshSpec    string `yaml:"refresh_spec"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	// MaxPixels 限制上传图片解码后的宽×高
	MaxPixels int64 `yaml:"max_pixels"`
}

func Default() *Config {
	return &Config{
		Addr:           DefaultAddr,
		SourcePath:     DefaultSourcePath,
		IconPath:       DefaultIconPath,
		RefreshSpec:    DefaultRefreshSpec,
		MaxUploadBytes: DefaultMaxUploadBytes,
		MaxPixels:      DefaultMaxPixels,
	}
}

// Load 读取 YAML 配置并覆盖默认值，文件不存在时直接使用默认值
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("addr is empty")
	case c.SourcePath == "":
		return errors.New("source_path is empty")
	case c.IconPath == "":
		return errors.New("icon_path is empty")
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	case c.MaxPixels <= 0:
		return fmt.Errorf("max_pixels must be positive, got %d", c.MaxPixels)
	}

	if _, err := cron.ParseStandard(c.RefreshSpec); err != nil {
		return fmt.Errorf("refresh_spec %q: %w", c.RefreshSpec, err)
	}
	return nil
}
