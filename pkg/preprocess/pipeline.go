package preprocess

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultCacheSize = 1024

// Unit is one compiled page source.
type Unit struct {
	RelPath  string
	FilePath string
	Source   []byte
}

// Pipeline compiles every page under a routes directory. Compiled output is
// cached by content hash, so repeated builds in one process only recompile
// changed files.
type Pipeline struct {
	Manager *Manager
	cache   *lru.Cache[string, []byte]
}

func NewPipeline(m *Manager, cacheSize int) (*Pipeline, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Pipeline{Manager: m, cache: cache}, nil
}

// Run walks dir in lexical order. Any failure aborts the walk and is
// returned as a *PreprocessError naming the originating file.
func (p *Pipeline) Run(ctx context.Context, dir string) ([]Unit, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("routes directory: %w", err)
	}

	var units []Unit
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &PreprocessError{File: path, Err: err}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !p.Manager.Handles(path) {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		src, err := os.ReadFile(path)
		if err != nil {
			return &PreprocessError{File: rel, Err: err}
		}

		compiled, err := p.Compile(rel, src)
		if err != nil {
			return err
		}

		units = append(units, Unit{
			RelPath:  filepath.ToSlash(rel),
			FilePath: path,
			Source:   compiled,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return units, nil
}

func (p *Pipeline) Compile(filename string, src []byte) ([]byte, error) {
	key := p.cacheKey(filename, src)
	if out, ok := p.cache.Get(key); ok {
		return out, nil
	}

	out, err := p.Manager.Apply(filename, src)
	if err != nil {
		return nil, err
	}

	p.cache.Add(key, out)
	return out, nil
}

func (p *Pipeline) CacheLen() int {
	return p.cache.Len()
}

func (p *Pipeline) cacheKey(filename string, src []byte) string {
	h := sha256.New()
	h.Write([]byte(p.Manager.key()))
	h.Write([]byte{0})
	h.Write([]byte(filepath.Ext(filename)))
	h.Write([]byte{0})
	h.Write(src)
	return hex.EncodeToString(h.Sum(nil))
}
