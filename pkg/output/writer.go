package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/withgalaxy/adapter-static/pkg/report"
)

// Stage is one staged output root waiting to be published to Dest.
type Stage struct {
	Root  Root
	Dir   string
	Dest  string
	Files []Entry
}

// Entry is a file written into a stage. Encoding is empty for originals.
type Entry struct {
	Path     string
	Size     int64
	Encoding string
}

type Publisher interface {
	Publish(ctx context.Context, stages []Stage) error
}

type Options struct {
	Pages       string
	Assets      string
	Precompress bool
	Codecs      []Codec
	Concurrency int
	Publisher   Publisher
	Logger      *zap.Logger
}

type Result struct {
	Files    int
	Bytes    int64
	Warnings []error
	Stages   []Stage
}

// Writer owns every output file of one build until it is published or
// discarded.
type Writer struct {
	opts Options

	files map[string]*File
	order []string

	stages  []Stage
	flushed bool
}

func NewWriter(opts Options) *Writer {
	if opts.Assets == "" {
		opts.Assets = opts.Pages
	}
	if opts.Codecs == nil {
		opts.Codecs = DefaultCodecs()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Writer{
		opts:  opts,
		files: make(map[string]*File),
	}
}

func (w *Writer) dest(r Root) string {
	if r == RootAssets {
		return w.opts.Assets
	}
	return w.opts.Pages
}

func (w *Writer) key(r Root, rel string) string {
	return w.dest(r) + "\x00" + rel
}

// Add registers f. A second file at the same path is a collision. The one
// exception is a byte-identical asset shared by several pages, which is
// ignored.
func (w *Writer) Add(f File) error {
	if w.flushed {
		return errors.New("output writer already flushed")
	}

	rel, err := cleanRel(f.RelativePath)
	if err != nil {
		return err
	}
	f.RelativePath = rel

	k := w.key(f.Root, rel)
	if prev, ok := w.files[k]; ok {
		if prev.Root == RootAssets && f.Root == RootAssets && bytes.Equal(prev.Bytes, f.Bytes) {
			return nil
		}
		return &PathCollisionError{Path: rel, Existing: prev.Source, Incoming: f.Source}
	}

	w.files[k] = &f
	w.order = append(w.order, k)
	return nil
}

func (w *Writer) Files() []File {
	out := make([]File, 0, len(w.order))
	for _, k := range w.order {
		out = append(out, *w.files[k])
	}
	return out
}

// checkTree rejects paths that would be both a file and a directory, and
// variants that would overwrite another file.
func (w *Writer) checkTree() error {
	owner := make(map[string]string, len(w.files))
	for _, k := range w.order {
		f := w.files[k]
		owner[w.key(f.Root, f.RelativePath)] = f.Source
	}

	for _, k := range w.order {
		f := w.files[k]
		for dir := path.Dir(f.RelativePath); dir != "."; dir = path.Dir(dir) {
			if src, ok := owner[w.key(f.Root, dir)]; ok {
				return &PathCollisionError{Path: dir, Existing: src, Incoming: f.Source}
			}
		}
		if !w.opts.Precompress || !Compressible(f.RelativePath) {
			continue
		}
		for _, c := range w.opts.Codecs {
			if src, ok := owner[w.key(f.Root, f.RelativePath+c.Ext())]; ok {
				return &PathCollisionError{Path: f.RelativePath + c.Ext(), Existing: src, Incoming: f.Source + " (" + c.Name() + ")"}
			}
		}
	}
	return nil
}

// Flush writes every file into staging directories next to their
// destinations. Nothing outside the staging directories is touched.
func (w *Writer) Flush(ctx context.Context) (Result, error) {
	if w.flushed {
		return Result{}, errors.New("output writer already flushed")
	}
	w.flushed = true

	if err := w.checkTree(); err != nil {
		return Result{}, err
	}

	stageOf := make(map[Root]int)
	for _, r := range []Root{RootPages, RootAssets} {
		dest := w.dest(r)
		if r == RootAssets && dest == w.opts.Pages {
			stageOf[r] = stageOf[RootPages]
			continue
		}
		dir, err := newStageDir(dest)
		if err != nil {
			w.Discard()
			return Result{}, err
		}
		stageOf[r] = len(w.stages)
		w.stages = append(w.stages, Stage{Root: r, Dir: dir, Dest: dest})
	}

	var (
		mu       sync.Mutex
		warnings []error
		entries  = make([][]Entry, len(w.stages))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.Concurrency)

	for _, k := range w.order {
		f := w.files[k]
		si := stageOf[f.Root]
		dir := w.stages[si].Dir

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			written := []Entry{{Path: f.RelativePath, Size: int64(len(f.Bytes))}}
			if err := writeFile(dir, f.RelativePath, f.Bytes); err != nil {
				return fmt.Errorf("write %s: %w", f.RelativePath, err)
			}

			if w.opts.Precompress && Compressible(f.RelativePath) {
				for _, c := range w.opts.Codecs {
					data, err := c.Encode(f.Bytes)
					if err == nil {
						err = writeFile(dir, f.RelativePath+c.Ext(), data)
					}
					if err != nil {
						cerr := &CompressionError{Path: f.RelativePath, Codec: c.Name(), Err: err}
						w.opts.Logger.Warn("precompression failed", zap.Error(cerr))
						mu.Lock()
						warnings = append(warnings, cerr)
						mu.Unlock()
						continue
					}
					if f.Variants == nil {
						f.Variants = make(map[string][]byte)
					}
					f.Variants[c.Name()] = data
					written = append(written, Entry{Path: f.RelativePath + c.Ext(), Size: int64(len(data)), Encoding: c.Name()})
				}
			}

			mu.Lock()
			entries[si] = append(entries[si], written...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		w.Discard()
		return Result{}, err
	}

	var res Result
	for i := range w.stages {
		sort.Slice(entries[i], func(a, b int) bool { return entries[i][a].Path < entries[i][b].Path })
		for _, e := range entries[i] {
			res.Files++
			res.Bytes += e.Size
		}

		m, err := writeManifest(w.stages[i].Dir, entries[i])
		if err != nil {
			w.Discard()
			return Result{}, err
		}
		w.stages[i].Files = append(entries[i], m)
	}

	// Warnings are reported in path order so repeated builds agree.
	sort.SliceStable(warnings, func(a, b int) bool {
		return compressionPath(warnings[a]) < compressionPath(warnings[b])
	})

	res.Warnings = warnings
	res.Stages = append([]Stage(nil), w.stages...)

	w.opts.Logger.Debug("output staged",
		zap.Int("files", res.Files),
		zap.Int64("bytes", res.Bytes),
		zap.Int("stages", len(w.stages)))

	return res, nil
}

func compressionPath(err error) string {
	var cerr *CompressionError
	if errors.As(err, &cerr) {
		return cerr.Path + "\x00" + cerr.Codec
	}
	return err.Error()
}

// Publish hands the staged tree to the configured publisher. Staging
// directories are always cleaned up afterwards.
func (w *Writer) Publish(ctx context.Context) error {
	defer w.Discard()

	if !w.flushed || len(w.stages) == 0 {
		return errors.New("nothing staged to publish")
	}
	if w.opts.Publisher == nil {
		return errors.New("no publisher configured")
	}
	return w.opts.Publisher.Publish(ctx, w.stages)
}

// Discard removes any staging directories. It is safe to call repeatedly.
func (w *Writer) Discard() {
	for _, s := range w.stages {
		if err := os.RemoveAll(s.Dir); err != nil {
			w.opts.Logger.Warn("failed to remove staging directory", zap.String("dir", s.Dir), zap.Error(err))
		}
	}
	w.stages = nil
}

// Accumulate records the outcome of a flush into acc.
func (r Result) Accumulate(acc *report.Accumulator) {
	for _, w := range r.Warnings {
		acc.Warn(w)
	}
}

func newStageDir(dest string) (string, error) {
	if dest == "" {
		return "", errors.New("output directory not set")
	}
	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", parent, err)
	}
	dir := filepath.Join(parent, "."+filepath.Base(dest)+".staging-"+uuid.NewString())
	if err := os.Mkdir(dir, 0755); err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}
	return dir, nil
}

func writeFile(root, rel string, data []byte) error {
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0644)
}
