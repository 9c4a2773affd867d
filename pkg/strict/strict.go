package strict

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/withgalaxy/adapter-static/pkg/classify"
	"github.com/withgalaxy/adapter-static/pkg/report"
)

type Options struct {
	Strict       bool
	AllowPartial bool
}

type Outcome int

const (
	Passed Outcome = iota
	Failed
)

func (o Outcome) String() string {
	if o == Failed {
		return "failed"
	}
	return "passed"
}

// StrictViolation lists the routes that would only be reachable through the
// client-side fallback.
type StrictViolation struct {
	Routes []string
}

func (e *StrictViolation) Error() string {
	var sb strings.Builder
	sb.WriteString("strict mode: the following routes cannot be prerendered and would rely on the fallback page:\n")
	for _, r := range e.Routes {
		sb.WriteString("  - " + r + "\n")
	}
	sb.WriteString("\nAdd prerender entries for these routes, or set strict = false to serve them from the fallback.")
	return sb.String()
}

type Decision struct {
	Outcome Outcome
	// Reasons holds the ids of the failing routes in declaration order.
	Reasons  []string
	Warnings []error

	err error
}

func (d Decision) Passed() bool {
	return d.Outcome == Passed
}

// Err returns nil for a passing decision. A failure carries a
// *StrictViolation and/or the render errors of invalid routes.
func (d Decision) Err() error {
	return d.err
}

// Validate gates a report. It may be called on a planning report, in which
// case Pending routes are ignored.
func Validate(r *report.BuildReport, opts Options) Decision {
	var (
		violation []string
		invalid   []string
		errs      error
		warnings  []error
	)

	for _, cr := range r.Routes {
		switch cr.Disposition {
		case classify.FallbackOnly:
			if opts.Strict {
				violation = append(violation, cr.ID())
			}
		case classify.Invalid:
			if !opts.AllowPartial {
				invalid = append(invalid, cr.ID())
				errs = multierr.Append(errs, multierr.Combine(cr.Errors...))
				continue
			}
			if opts.Strict {
				violation = append(violation, cr.ID())
				continue
			}
			for _, err := range cr.Errors {
				warnings = append(warnings, fmt.Errorf("served by fallback: %w", err))
			}
		}
	}

	d := Decision{Outcome: Passed, Warnings: warnings}
	if len(violation) == 0 && len(invalid) == 0 {
		return d
	}

	d.Outcome = Failed
	d.Reasons = failingInOrder(r, violation, invalid)
	if len(violation) > 0 {
		d.err = multierr.Append(&StrictViolation{Routes: violation}, errs)
	} else {
		d.err = errs
	}
	return d
}

func failingInOrder(r *report.BuildReport, groups ...[]string) []string {
	failing := make(map[string]bool)
	for _, g := range groups {
		for _, id := range g {
			failing[id] = true
		}
	}
	var out []string
	for _, cr := range r.Routes {
		if failing[cr.ID()] {
			out = append(out, cr.ID())
		}
	}
	return out
}
