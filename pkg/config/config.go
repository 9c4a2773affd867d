package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	TOMLFile = "static.config.toml"
	YAMLFile = "static.config.yaml"
	EnvFile  = ".env"
)

const envPrefix = "STATIC_ADAPTER_"

// Load reads a config file on top of DefaultConfig. A missing file is not an
// error, but the resulting config must still pass Validate, so a fallback
// has to come from somewhere (file or environment).
func Load(p string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := decode(p, data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg, err = ApplyEnv(cfg, os.LookupEnv)
	if err != nil {
		return Config{}, fmt.Errorf("env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// LoadFromDir loads .env (without overriding variables already set) and
// then the first config file found in dir.
func LoadFromDir(dir string) (Config, error) {
	if err := godotenv.Load(filepath.Join(dir, EnvFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", EnvFile, err)
	}

	for _, name := range []string{TOMLFile, YAMLFile} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}

	return Load(filepath.Join(dir, TOMLFile))
}

func decode(p string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return toml.Unmarshal(data, cfg)
	}
}

// ApplyEnv overlays STATIC_ADAPTER_* variables on cfg.
func ApplyEnv(cfg Config, lookup func(string) (string, bool)) (Config, error) {
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(envPrefix + key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = b
		return nil
	}

	str("PAGES", &cfg.Adapter.Pages)
	str("ASSETS", &cfg.Adapter.Assets)
	str("FALLBACK", &cfg.Adapter.Fallback)
	if err := boolean("PRECOMPRESS", &cfg.Adapter.Precompress); err != nil {
		return cfg, err
	}
	if err := boolean("STRICT", &cfg.Adapter.Strict); err != nil {
		return cfg, err
	}

	if v, ok := lookup(envPrefix + "CONCURRENCY"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("%sCONCURRENCY: %w", envPrefix, err)
		}
		cfg.Prerender.Concurrency = n
	}

	str("S3_ENDPOINT", &cfg.Publish.S3.Endpoint)
	str("S3_BUCKET", &cfg.Publish.S3.Bucket)
	str("S3_ACCESS_KEY", &cfg.Publish.S3.AccessKey)
	str("S3_SECRET_KEY", &cfg.Publish.S3.SecretKey)

	cfg.Preprocess = append([]string(nil), cfg.Preprocess...)
	return cfg, nil
}

func (c *Config) Validate() error {
	fallback := strings.TrimSpace(c.Adapter.Fallback)
	if fallback == "" {
		return fmt.Errorf(`adapter.fallback is required

Set the name of the single-page fallback document, for example:

  [adapter]
  fallback = "200.html"`)
	}
	if path.IsAbs(fallback) || filepath.IsAbs(fallback) {
		return fmt.Errorf("adapter.fallback must be relative to the output directory: %s", fallback)
	}
	clean := path.Clean(filepath.ToSlash(fallback))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("adapter.fallback escapes the output directory: %s", fallback)
	}
	c.Adapter.Fallback = clean

	switch c.TrailingSlash {
	case TrailingSlashNever, TrailingSlashAlways:
	case "":
		c.TrailingSlash = TrailingSlashNever
	default:
		return fmt.Errorf("invalid trailingSlash: %s (must be never or always)", c.TrailingSlash)
	}

	switch c.Adapter.Platform {
	case PlatformNone, PlatformCloudflare, PlatformNetlify, PlatformVercel:
	default:
		return fmt.Errorf("invalid adapter.platform: %s", c.Adapter.Platform)
	}

	switch c.Publish.Target {
	case PublishFS, PublishS3:
	case "":
		c.Publish.Target = PublishFS
	default:
		return fmt.Errorf("invalid publish.target: %s (must be fs or s3)", c.Publish.Target)
	}

	if c.Publish.Target == PublishS3 && strings.TrimSpace(c.Publish.S3.Bucket) == "" {
		return fmt.Errorf("publish.s3.bucket is required when publish.target = \"s3\"")
	}

	if c.Prerender.Concurrency < 0 {
		return fmt.Errorf("prerender.concurrency must be positive, got %d", c.Prerender.Concurrency)
	}
	if c.Prerender.Concurrency == 0 {
		c.Prerender.Concurrency = 8
	}

	if c.Adapter.Pages == "" {
		c.Adapter.Pages = "build"
	}

	if c.Adapter.Assets != "" {
		pages, err := filepath.Abs(c.Adapter.Pages)
		if err != nil {
			return fmt.Errorf("adapter.pages: %w", err)
		}
		assets, err := filepath.Abs(c.Adapter.Assets)
		if err != nil {
			return fmt.Errorf("adapter.assets: %w", err)
		}
		switch {
		case pages == assets:
			c.Adapter.Assets = ""
		case within(pages, assets) || within(assets, pages):
			return fmt.Errorf(`adapter.assets and adapter.pages must not contain each other: %s, %s

Use the same directory for both, or two sibling directories, for example:

  [adapter]
  pages = "build/pages"
  assets = "build/assets"`, c.Adapter.Assets, c.Adapter.Pages)
		}
	}

	if c.SrcDir == "" {
		c.SrcDir = "./src"
	}

	if c.RoutesDir == "" {
		c.RoutesDir = "routes"
	}

	if c.AppDir == "" {
		c.AppDir = "_app"
	}

	c.Base = strings.TrimSuffix(c.Base, "/")
	if c.Base != "" && !strings.HasPrefix(c.Base, "/") {
		return fmt.Errorf("base must start with /: %s", c.Base)
	}

	return nil
}

// within reports whether child lies below parent. Both must be absolute.
func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Resolve returns a copy of c with directory settings made absolute against
// root.
func (c Config) Resolve(root string) Config {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}

	out := c
	out.Preprocess = append([]string(nil), c.Preprocess...)
	out.SrcDir = abs(c.SrcDir)
	out.StaticDir = abs(c.StaticDir)
	out.Adapter.Pages = abs(c.Adapter.Pages)
	if c.Adapter.Assets != "" {
		out.Adapter.Assets = abs(c.Adapter.Assets)
	}
	return out
}

func (c Config) RoutesPath() string {
	if filepath.IsAbs(c.RoutesDir) {
		return c.RoutesDir
	}
	return filepath.Join(c.SrcDir, c.RoutesDir)
}

func (c Config) AppTemplatePath() string {
	if c.AppTemplate == "" || filepath.IsAbs(c.AppTemplate) {
		return c.AppTemplate
	}
	return filepath.Join(c.SrcDir, c.AppTemplate)
}
