package build

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/withgalaxy/adapter-static/pkg/adapters"
	"github.com/withgalaxy/adapter-static/pkg/fallback"
	"github.com/withgalaxy/adapter-static/pkg/output"
	"github.com/withgalaxy/adapter-static/pkg/render"
	"github.com/withgalaxy/adapter-static/pkg/report"
)

// collect registers every output file with w. Collisions are recorded in
// acc rather than returned so that all of them are reported together.
func (b *Builder) collect(w *output.Writer, r *report.BuildReport, shell *render.Shell, acc *report.Accumulator) {
	prefix := b.adapter.Prefix()
	add := func(f output.File) {
		if err := w.Add(withPrefix(f, prefix)); err != nil {
			acc.Fatal(err)
		}
	}

	for _, cr := range r.StaticRoutes() {
		for _, doc := range cr.Documents {
			add(output.File{
				RelativePath: output.PagePath(doc.Path, b.Config.TrailingSlash),
				Bytes:        doc.HTML,
				Root:         output.RootPages,
				Source:       "route " + doc.Path,
			})
			for _, asset := range doc.Assets {
				add(output.File{
					RelativePath: asset.Path,
					Bytes:        asset.Data,
					Root:         output.RootAssets,
					Source:       "asset of " + doc.Path,
				})
			}
		}
	}

	fb, err := fallback.New(b.Config, shell).Synthesize(r)
	if err != nil {
		acc.Fatal(err)
		return
	}
	emitted := ""
	if fb != nil {
		emitted = fb.RelativePath
		if err := w.Add(withPrefix(*fb, prefix)); err != nil {
			var pc *output.PathCollisionError
			if errors.As(err, &pc) {
				err = fmt.Errorf("%w\n\nThe fallback page %q would overwrite a prerendered page. Choose a different adapter.fallback, for example \"200.html\".", err, b.Config.Adapter.Fallback)
			}
			acc.Fatal(err)
		}
	}

	if err := b.collectStatic(add); err != nil {
		acc.Fatal(err)
	}

	files, err := b.adapter.Files(&adapters.BuildContext{Config: b.Config, Report: r, Fallback: emitted})
	if err != nil {
		acc.Fatal(fmt.Errorf("%s adapter: %w", b.adapter.Name(), err))
		return
	}
	for _, f := range files {
		// Platform files sit at their own paths, outside the prefix.
		if err := w.Add(f); err != nil {
			acc.Fatal(err)
		}
	}
}

func withPrefix(f output.File, prefix string) output.File {
	if prefix != "" {
		f.RelativePath = path.Join(prefix, f.RelativePath)
	}
	return f
}

// collectStatic copies the static directory verbatim into the assets root.
func (b *Builder) collectStatic(add func(output.File)) error {
	dir := b.Config.StaticDir
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	count := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)
		add(output.File{
			RelativePath: rel,
			Bytes:        data,
			Root:         output.RootAssets,
			Source:       "static/" + rel,
		})
		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("copy static files: %w", err)
	}

	b.logger.Debug("static files collected", zap.String("dir", dir), zap.Int("files", count))
	return nil
}
