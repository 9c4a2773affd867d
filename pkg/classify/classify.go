package classify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/withgalaxy/adapter-static/pkg/render"
	"github.com/withgalaxy/adapter-static/pkg/router"
)

type Disposition int

const (
	// Pending marks a planned route whose outcome depends on rendering.
	Pending Disposition = iota
	Static
	FallbackOnly
	Invalid
)

func (d Disposition) String() string {
	switch d {
	case Static:
		return "static"
	case FallbackOnly:
		return "fallback"
	case Invalid:
		return "invalid"
	default:
		return "pending"
	}
}

type ClassifiedRoute struct {
	Route       *router.Route
	Disposition Disposition
	Reason      string
	Documents   []*render.Document
	Errors      []error
}

func (c ClassifiedRoute) ID() string {
	return c.Route.Pattern
}

type RenderError struct {
	Route string
	Path  string
	Err   error
}

func (e *RenderError) Error() string {
	if e.Path == "" || e.Path == e.Route {
		return fmt.Sprintf("render %s: %v", e.Route, e.Err)
	}
	return fmt.Sprintf("render %s (%s): %v", e.Route, e.Path, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

const (
	ReasonOptOut    = "prerender disabled by the page"
	ReasonDefault   = "prerender disabled by default"
	ReasonNoEntries = "dynamic route without entries"
)

type Options struct {
	PrerenderDefault bool
	Concurrency      int
	Logger           *zap.Logger
}

type Classifier struct {
	Renderer         render.Renderer
	PrerenderDefault bool
	Concurrency      int
	Logger           *zap.Logger
}

func New(r render.Renderer, opts Options) *Classifier {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Classifier{
		Renderer:         r,
		PrerenderDefault: opts.PrerenderDefault,
		Concurrency:      opts.Concurrency,
		Logger:           opts.Logger,
	}
}

// Plan decides every disposition that does not need a render. The result
// has one entry per route in declaration order; routes that must be
// rendered are left Pending.
func (c *Classifier) Plan(routes []*router.Route) []ClassifiedRoute {
	plan := make([]ClassifiedRoute, len(routes))
	for i, route := range routes {
		plan[i] = ClassifiedRoute{Route: route, Disposition: Pending}

		switch {
		case route.Prerender != nil && !*route.Prerender:
			plan[i].Disposition = FallbackOnly
			plan[i].Reason = ReasonOptOut
		case route.Prerender == nil && !c.PrerenderDefault:
			plan[i].Disposition = FallbackOnly
			plan[i].Reason = ReasonDefault
		case route.Dynamic() && len(route.Entries) == 0:
			plan[i].Disposition = FallbackOnly
			plan[i].Reason = ReasonNoEntries
		}
	}
	return plan
}

type job struct {
	route    int
	instance int
	inst     router.Instance
}

type outcome struct {
	path string
	doc  *render.Document
	err  error
}

// Render renders every Pending route of plan on a bounded pool and joins
// the results per route. A failing instance never cancels other renders;
// only ctx does.
func (c *Classifier) Render(ctx context.Context, plan []ClassifiedRoute) ([]ClassifiedRoute, error) {
	result := make([]ClassifiedRoute, len(plan))
	copy(result, plan)

	outcomes := make([][]outcome, len(result))
	var jobs []job

	for i := range result {
		if result[i].Disposition != Pending {
			continue
		}
		instances, err := result[i].Route.Instances()
		if err != nil {
			result[i].Disposition = Invalid
			result[i].Errors = []error{&RenderError{Route: result[i].ID(), Err: err}}
			continue
		}
		outcomes[i] = make([]outcome, len(instances))
		for j, inst := range instances {
			jobs = append(jobs, job{route: i, instance: j, inst: inst})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Concurrency)

	for _, jb := range jobs {
		if gctx.Err() != nil {
			break
		}
		jb := jb
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := c.Renderer.Render(gctx, jb.inst)
			if err != nil && errors.Is(err, context.Canceled) && gctx.Err() != nil {
				return gctx.Err()
			}
			if err == nil && doc == nil {
				err = errors.New("renderer returned no document")
			}
			if doc != nil && doc.Path == "" {
				doc.Path = jb.inst.Path
			}
			outcomes[jb.route][jb.instance] = outcome{path: jb.inst.Path, doc: doc, err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		if result[i].Disposition != Pending {
			continue
		}
		c.join(&result[i], outcomes[i])
	}

	return result, nil
}

func (c *Classifier) join(cr *ClassifiedRoute, outcomes []outcome) {
	for _, o := range outcomes {
		if o.err != nil {
			cr.Errors = append(cr.Errors, &RenderError{Route: cr.ID(), Path: o.path, Err: o.err})
			continue
		}
		cr.Documents = append(cr.Documents, o.doc)
	}

	if len(cr.Errors) > 0 {
		cr.Disposition = Invalid
		cr.Documents = nil
		c.Logger.Warn("route failed to prerender",
			zap.String("route", cr.ID()),
			zap.Int("failed", len(cr.Errors)),
			zap.Int("instances", len(outcomes)))
		return
	}

	cr.Disposition = Static
	c.Logger.Debug("route prerendered",
		zap.String("route", cr.ID()),
		zap.Int("instances", len(outcomes)))
}

// Classify plans and renders in one step.
func (c *Classifier) Classify(ctx context.Context, routes []*router.Route) ([]ClassifiedRoute, error) {
	return c.Render(ctx, c.Plan(routes))
}
