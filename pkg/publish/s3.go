package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/withgalaxy/adapter-static/pkg/config"
	"github.com/withgalaxy/adapter-static/pkg/output"
)

// ObjectPutter is the part of *minio.Client the publisher needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type S3Publisher struct {
	Client      ObjectPutter
	Bucket      string
	Prefix      string
	Concurrency int
	Logger      *zap.Logger
}

func NewS3Publisher(cfg config.S3Config, logger *zap.Logger) (*S3Publisher, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "s3.amazonaws.com"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3Publisher{
		Client:      client,
		Bucket:      cfg.Bucket,
		Prefix:      cfg.Prefix,
		Concurrency: 8,
		Logger:      logger,
	}, nil
}

// ObjectKey maps a path relative to the output root to a bucket key.
func ObjectKey(prefix, rel string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return rel
	}
	return path.Join(prefix, rel)
}

// ObjectOptions derives the content headers for a staged entry. Variants
// keep the original's content type and add Content-Encoding.
func ObjectOptions(e output.Entry) minio.PutObjectOptions {
	name := e.Path
	if e.Encoding != "" {
		name = strings.TrimSuffix(name, path.Ext(name))
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	opts := minio.PutObjectOptions{ContentType: contentType}
	if e.Encoding != "" {
		opts.ContentEncoding = e.Encoding
	}
	if strings.Contains(name, "/assets/") {
		opts.CacheControl = "public, max-age=31536000, immutable"
	}
	return opts
}

// Publish uploads every staged file. The manifest of each stage goes last so
// a reader that sees it can rely on the rest of the tree being present.
func (p *S3Publisher) Publish(ctx context.Context, stages []output.Stage) error {
	limit := p.Concurrency
	if limit <= 0 {
		limit = 8
	}

	for _, s := range stages {
		var manifest *output.Entry

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)

		for _, e := range s.Files {
			if e.Path == output.ManifestFile {
				m := e
				manifest = &m
				continue
			}
			e := e
			g.Go(func() error {
				return p.put(gctx, s.Dir, e)
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}
		if manifest != nil {
			if err := p.put(ctx, s.Dir, *manifest); err != nil {
				return err
			}
		}

		p.Logger.Info("uploaded output",
			zap.String("bucket", p.Bucket),
			zap.String("prefix", p.Prefix),
			zap.Int("files", len(s.Files)))
	}
	return nil
}

func (p *S3Publisher) put(ctx context.Context, dir string, e output.Entry) error {
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(e.Path)))
	if err != nil {
		return err
	}

	key := ObjectKey(p.Prefix, e.Path)
	if _, err := p.Client.PutObject(ctx, p.Bucket, key, bytes.NewReader(data), int64(len(data)), ObjectOptions(e)); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}
