package config

type TrailingSlash string

const (
	TrailingSlashNever  TrailingSlash = "never"
	TrailingSlashAlways TrailingSlash = "always"
)

type PlatformName string

const (
	PlatformNone       PlatformName = ""
	PlatformCloudflare PlatformName = "cloudflare"
	PlatformNetlify    PlatformName = "netlify"
	PlatformVercel     PlatformName = "vercel"
)

type PublishTarget string

const (
	PublishFS PublishTarget = "fs"
	PublishS3 PublishTarget = "s3"
)

// Config is the full adapter configuration. It is treated as an immutable
// value once loaded: builds receive a copy and never write back to it.
type Config struct {
	SrcDir        string          `toml:"srcDir" yaml:"srcDir"`
	RoutesDir     string          `toml:"routesDir" yaml:"routesDir"`
	StaticDir     string          `toml:"staticDir" yaml:"staticDir"`
	AppTemplate   string          `toml:"appTemplate" yaml:"appTemplate"`
	AppDir        string          `toml:"appDir" yaml:"appDir"`
	Base          string          `toml:"base" yaml:"base"`
	TrailingSlash TrailingSlash   `toml:"trailingSlash" yaml:"trailingSlash"`
	Preprocess    []string        `toml:"preprocess" yaml:"preprocess"`
	Adapter       AdapterConfig   `toml:"adapter" yaml:"adapter"`
	Prerender     PrerenderConfig `toml:"prerender" yaml:"prerender"`
	Publish       PublishConfig   `toml:"publish" yaml:"publish"`
}

type AdapterConfig struct {
	Pages        string       `toml:"pages" yaml:"pages"`
	Assets       string       `toml:"assets" yaml:"assets"`
	Fallback     string       `toml:"fallback" yaml:"fallback"`
	Precompress  bool         `toml:"precompress" yaml:"precompress"`
	Strict       bool         `toml:"strict" yaml:"strict"`
	EmitFallback bool         `toml:"emitFallback" yaml:"emitFallback"`
	Platform     PlatformName `toml:"platform" yaml:"platform"`
}

type PrerenderConfig struct {
	Default      bool `toml:"default" yaml:"default"`
	Concurrency  int  `toml:"concurrency" yaml:"concurrency"`
	AllowPartial bool `toml:"allowPartial" yaml:"allowPartial"`
}

type PublishConfig struct {
	Target PublishTarget `toml:"target" yaml:"target"`
	S3     S3Config      `toml:"s3" yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `toml:"endpoint" yaml:"endpoint"`
	Region    string `toml:"region" yaml:"region"`
	Bucket    string `toml:"bucket" yaml:"bucket"`
	Prefix    string `toml:"prefix" yaml:"prefix"`
	AccessKey string `toml:"accessKey" yaml:"accessKey"`
	SecretKey string `toml:"secretKey" yaml:"secretKey"`
	UseSSL    bool   `toml:"useSSL" yaml:"useSSL"`
}

// DefaultConfig mirrors the adapter defaults. Fallback is deliberately left
// empty: it has no default and Validate rejects a config without one.
func DefaultConfig() Config {
	return Config{
		SrcDir:        "./src",
		RoutesDir:     "routes",
		StaticDir:     "./static",
		AppTemplate:   "app.html",
		AppDir:        "_app",
		Base:          "",
		TrailingSlash: TrailingSlashNever,
		Preprocess:    []string{"markdown", "html"},
		Adapter: AdapterConfig{
			Pages:        "build",
			Assets:       "",
			Fallback:     "",
			Precompress:  false,
			Strict:       true,
			EmitFallback: true,
			Platform:     PlatformNone,
		},
		Prerender: PrerenderConfig{
			Default:      true,
			Concurrency:  8,
			AllowPartial: false,
		},
		Publish: PublishConfig{
			Target: PublishFS,
			S3: S3Config{
				Region: "us-east-1",
				UseSSL: true,
			},
		},
	}
}

// AssetsDir returns the directory client assets are written to. It
// defaults to the pages directory.
func (c Config) AssetsDir() string {
	if c.Adapter.Assets == "" {
		return c.Adapter.Pages
	}
	return c.Adapter.Assets
}

func (c Config) SplitAssets() bool {
	return c.AssetsDir() != c.Adapter.Pages
}
