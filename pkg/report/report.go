package report

import (
	"go.uber.org/multierr"

	"github.com/withgalaxy/adapter-static/pkg/classify"
)

// BuildReport is the aggregate outcome of a build stage. A report is never
// modified after construction; later stages derive a new one.
type BuildReport struct {
	Routes        []classify.ClassifiedRoute
	StaticCount   int
	FallbackCount int
	PendingCount  int
	InvalidRoutes []classify.ClassifiedRoute
	Warnings      []error

	Files int
	Bytes int64
}

func New(routes []classify.ClassifiedRoute) *BuildReport {
	r := &BuildReport{
		Routes: append([]classify.ClassifiedRoute(nil), routes...),
	}
	for _, cr := range r.Routes {
		switch cr.Disposition {
		case classify.Static:
			r.StaticCount++
		case classify.FallbackOnly:
			r.FallbackCount++
		case classify.Invalid:
			r.InvalidRoutes = append(r.InvalidRoutes, cr)
		default:
			r.PendingCount++
		}
	}
	return r
}

// FallbackRoutes returns the FallbackOnly routes in declaration order.
func (r *BuildReport) FallbackRoutes() []classify.ClassifiedRoute {
	var out []classify.ClassifiedRoute
	for _, cr := range r.Routes {
		if cr.Disposition == classify.FallbackOnly {
			out = append(out, cr)
		}
	}
	return out
}

func (r *BuildReport) StaticRoutes() []classify.ClassifiedRoute {
	var out []classify.ClassifiedRoute
	for _, cr := range r.Routes {
		if cr.Disposition == classify.Static {
			out = append(out, cr)
		}
	}
	return out
}

// WithOutput derives the final report once files have been written.
func (r *BuildReport) WithOutput(files int, bytes int64, warnings ...error) *BuildReport {
	out := *r
	out.Files = files
	out.Bytes = bytes
	out.Warnings = append(append([]error(nil), r.Warnings...), warnings...)
	return &out
}

// Accumulator collects the errors of one stage, keeping fatal errors apart
// from warnings so a stage never has to abort midway to report a problem.
type Accumulator struct {
	fatal error
	warn  error
}

func (a *Accumulator) Fatal(err error) {
	a.fatal = multierr.Append(a.fatal, err)
}

func (a *Accumulator) Warn(err error) {
	a.warn = multierr.Append(a.warn, err)
}

func (a *Accumulator) Err() error {
	return a.fatal
}

func (a *Accumulator) Fatals() []error {
	return multierr.Errors(a.fatal)
}

func (a *Accumulator) Warnings() []error {
	return multierr.Errors(a.warn)
}
