package publish

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/withgalaxy/adapter-static/pkg/config"
	"github.com/withgalaxy/adapter-static/pkg/output"
)

// New returns the publisher selected by publish.target.
func New(cfg config.PublishConfig, logger *zap.Logger) (output.Publisher, error) {
	switch cfg.Target {
	case config.PublishFS, "":
		return NewFSPublisher(logger), nil
	case config.PublishS3:
		return NewS3Publisher(cfg.S3, logger)
	default:
		return nil, fmt.Errorf("unknown publish target: %s", cfg.Target)
	}
}
