package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/withgalaxy/adapter-static/pkg/output"
)

// FSPublisher replaces each destination directory with its staged tree
// using renames, so readers see either the old tree or the new one.
type FSPublisher struct {
	Logger *zap.Logger
}

func NewFSPublisher(logger *zap.Logger) *FSPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FSPublisher{Logger: logger}
}

func (p *FSPublisher) Publish(ctx context.Context, stages []output.Stage) error {
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := swap(s.Dir, s.Dest); err != nil {
			return fmt.Errorf("publish %s: %w", s.Dest, err)
		}
		p.Logger.Debug("published", zap.String("dest", s.Dest), zap.Int("files", len(s.Files)))
	}
	return nil
}

func swap(staging, dest string) error {
	old := ""
	if _, err := os.Lstat(dest); err == nil {
		old = filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+".old-"+uuid.NewString())
		if err := os.Rename(dest, old); err != nil {
			return fmt.Errorf("move previous output aside: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.Rename(staging, dest); err != nil {
		if old != "" {
			if rerr := os.Rename(old, dest); rerr != nil {
				return fmt.Errorf("%w (restoring previous output failed: %v)", err, rerr)
			}
		}
		return err
	}

	if old != "" {
		return os.RemoveAll(old)
	}
	return nil
}
