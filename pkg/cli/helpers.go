package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/withgalaxy/adapter-static/pkg/config"
)

func projectRoot() (string, error) {
	if rootDir != "" {
		return filepath.Abs(rootDir)
	}
	return os.Getwd()
}

// loadConfig reads the project config and resolves its paths against the
// project root.
func loadConfig() (config.Config, string, error) {
	cwd, err := projectRoot()
	if err != nil {
		return config.Config{}, "", err
	}

	var cfg config.Config
	if cfgFile != "" {
		p := cfgFile
		if !filepath.IsAbs(p) {
			p = filepath.Join(cwd, p)
		}
		cfg, err = config.Load(p)
	} else {
		cfg, err = config.LoadFromDir(cwd)
	}
	if err != nil {
		return config.Config{}, "", fmt.Errorf("load config: %w", err)
	}

	return cfg.Resolve(cwd), cwd, nil
}

func newLogger() (*zap.Logger, error) {
	switch {
	case silent:
		return zap.NewNop(), nil
	case verbose:
		return zap.NewDevelopment()
	default:
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg.Build()
	}
}

func relTo(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return p
	}
	return rel
}
