package build

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/withgalaxy/adapter-static/pkg/adapters"
	"github.com/withgalaxy/adapter-static/pkg/classify"
	"github.com/withgalaxy/adapter-static/pkg/config"
	"github.com/withgalaxy/adapter-static/pkg/output"
	"github.com/withgalaxy/adapter-static/pkg/preprocess"
	"github.com/withgalaxy/adapter-static/pkg/publish"
	"github.com/withgalaxy/adapter-static/pkg/render"
	"github.com/withgalaxy/adapter-static/pkg/report"
	"github.com/withgalaxy/adapter-static/pkg/router"
	"github.com/withgalaxy/adapter-static/pkg/strict"
)

type Options struct {
	Logger *zap.Logger
	// Renderer replaces the template renderer.
	Renderer render.Renderer
	// Preprocessors replaces the built-in transform registry.
	Preprocessors *preprocess.Manager
	Publisher     output.Publisher
	Codecs        []output.Codec
	// Adapter replaces the adapter selected by adapter.platform.
	Adapter adapters.Adapter
}

// Builder runs one static export. Each Builder owns a copy of its Config;
// builds never share mutable state.
type Builder struct {
	Config config.Config

	logger        *zap.Logger
	renderer      render.Renderer
	preprocessors *preprocess.Manager
	publisher     output.Publisher
	codecs        []output.Codec
	adapter       adapters.Adapter
	pipeline      *preprocess.Pipeline
}

type Result struct {
	Report   *report.BuildReport
	Decision strict.Decision
	Duration time.Duration
	// Published is false for checks and failed builds.
	Published bool
}

func New(cfg config.Config, opts Options) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &Builder{
		Config:        cfg,
		logger:        opts.Logger,
		renderer:      opts.Renderer,
		preprocessors: opts.Preprocessors,
		publisher:     opts.Publisher,
		codecs:        opts.Codecs,
		adapter:       opts.Adapter,
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	if b.preprocessors == nil {
		b.preprocessors = preprocess.NewDefaultManager()
	}
	if err := b.preprocessors.Load(cfg.Preprocess); err != nil {
		return nil, err
	}

	pipeline, err := preprocess.NewPipeline(b.preprocessors, preprocess.DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	b.pipeline = pipeline

	if b.adapter == nil {
		a, err := Platform(cfg.Adapter.Platform)
		if err != nil {
			return nil, err
		}
		b.adapter = a
	}

	if b.publisher == nil {
		p, err := publish.New(cfg.Publish, b.logger.Named("publish"))
		if err != nil {
			return nil, err
		}
		b.publisher = p
	}

	return b, nil
}

// Discover preprocesses the routes directory and returns the discovered
// routes in declaration order.
func (b *Builder) Discover(ctx context.Context) (*router.Router, error) {
	routesDir := b.Config.RoutesPath()

	units, err := b.pipeline.Run(ctx, routesDir)
	if err != nil {
		return nil, err
	}

	r := router.NewRouter(routesDir)
	if err := r.Discover(units); err != nil {
		return nil, err
	}

	b.logger.Debug("routes discovered", zap.String("dir", routesDir), zap.Int("routes", len(r.Routes)))
	return r, nil
}

func (b *Builder) shell() (*render.Shell, error) {
	return render.LoadShell(b.Config.AppTemplatePath())
}

func (b *Builder) classifier(shell *render.Shell) *classify.Classifier {
	renderer := b.renderer
	if renderer == nil {
		renderer = render.NewTemplateRenderer(shell, b.Config.AppDir, b.Config.Base)
	}
	return classify.New(renderer, classify.Options{
		PrerenderDefault: b.Config.Prerender.Default,
		Concurrency:      b.Config.Prerender.Concurrency,
		Logger:           b.logger.Named("classify"),
	})
}

func (b *Builder) strictOptions() strict.Options {
	return strict.Options{
		Strict:       b.Config.Adapter.Strict,
		AllowPartial: b.Config.Prerender.AllowPartial,
	}
}

// Plan classifies routes without rendering anything. Routes that need a
// render are reported as pending.
func (b *Builder) Plan(ctx context.Context) (*report.BuildReport, error) {
	r, err := b.Discover(ctx)
	if err != nil {
		return nil, err
	}
	shell, err := b.shell()
	if err != nil {
		return nil, err
	}
	return report.New(b.classifier(shell).Plan(r.Routes)), nil
}

// Check runs every stage up to and including the strict gate. Nothing is
// written.
func (b *Builder) Check(ctx context.Context) (*Result, error) {
	start := time.Now()
	res, _, err := b.classify(ctx)
	if res != nil {
		res.Duration = time.Since(start)
	}
	return res, err
}

func (b *Builder) classify(ctx context.Context) (*Result, *render.Shell, error) {
	r, err := b.Discover(ctx)
	if err != nil {
		return nil, nil, err
	}

	shell, err := b.shell()
	if err != nil {
		return nil, nil, err
	}

	c := b.classifier(shell)
	plan := c.Plan(r.Routes)

	// Dispositions known without rendering are gated first, so a strict
	// failure never starts a render.
	planned := report.New(plan)
	if d := strict.Validate(planned, b.strictOptions()); !d.Passed() {
		b.logger.Info("strict gate failed before rendering", zap.Strings("routes", d.Reasons))
		return &Result{Report: planned, Decision: d}, shell, d.Err()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	classified, err := c.Render(ctx, plan)
	if err != nil {
		return nil, nil, err
	}

	final := report.New(classified)
	d := strict.Validate(final, b.strictOptions())
	final = final.WithOutput(0, 0, d.Warnings...)

	res := &Result{Report: final, Decision: d}
	if !d.Passed() {
		return res, shell, d.Err()
	}
	return res, shell, nil
}

// Build runs the full export and publishes the output tree. On any fatal
// error the previous output is left untouched.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()

	res, shell, err := b.classify(ctx)
	if err != nil {
		if res != nil {
			res.Duration = time.Since(start)
		}
		return res, err
	}

	w := output.NewWriter(output.Options{
		Pages:       b.Config.Adapter.Pages,
		Assets:      b.Config.AssetsDir(),
		Precompress: b.Config.Adapter.Precompress,
		Codecs:      b.codecs,
		Concurrency: b.Config.Prerender.Concurrency,
		Publisher:   b.publisher,
		Logger:      b.logger.Named("output"),
	})

	var acc report.Accumulator
	b.collect(w, res.Report, shell, &acc)
	if err := acc.Err(); err != nil {
		res.Duration = time.Since(start)
		return res, err
	}

	flushed, err := w.Flush(ctx)
	if err != nil {
		res.Duration = time.Since(start)
		return res, fmt.Errorf("write output: %w", err)
	}
	flushed.Accumulate(&acc)

	if err := w.Publish(ctx); err != nil {
		res.Duration = time.Since(start)
		return res, fmt.Errorf("publish output: %w", err)
	}

	res.Report = res.Report.WithOutput(flushed.Files, flushed.Bytes, acc.Warnings()...)
	res.Published = true
	res.Duration = time.Since(start)

	b.logger.Info("build complete",
		zap.Int("static", res.Report.StaticCount),
		zap.Int("fallback", res.Report.FallbackCount),
		zap.Int("files", flushed.Files),
		zap.Duration("duration", res.Duration))

	return res, nil
}

func (b *Builder) Adapter() adapters.Adapter {
	return b.adapter
}
