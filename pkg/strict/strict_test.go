package strict

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/withgalaxy/adapter-static/pkg/classify"
	"github.com/withgalaxy/adapter-static/pkg/render"
	"github.com/withgalaxy/adapter-static/pkg/report"
	"github.com/withgalaxy/adapter-static/pkg/router"
)

func cr(pattern string, d classify.Disposition, errs ...error) classify.ClassifiedRoute {
	return classify.ClassifiedRoute{Route: &router.Route{Pattern: pattern}, Disposition: d, Errors: errs}
}

func TestValidate(t *testing.T) {
	renderErr := &classify.RenderError{Route: "/broken", Path: "/broken", Err: render.ErrServerRequired}

	tests := []struct {
		name        string
		routes      []classify.ClassifiedRoute
		opts        Options
		wantOutcome Outcome
		wantReasons []string
		wantWarn    int
	}{
		{
			name:        "all static",
			routes:      []classify.ClassifiedRoute{cr("/", classify.Static), cr("/about", classify.Static)},
			opts:        Options{Strict: true},
			wantOutcome: Passed,
		},
		{
			name:        "strict with fallback routes",
			routes:      []classify.ClassifiedRoute{cr("/", classify.Static), cr("/b/[x]", classify.FallbackOnly), cr("/app", classify.FallbackOnly)},
			opts:        Options{Strict: true},
			wantOutcome: Failed,
			wantReasons: []string{"/b/[x]", "/app"},
		},
		{
			name:        "non-strict with fallback routes",
			routes:      []classify.ClassifiedRoute{cr("/", classify.Static), cr("/app", classify.FallbackOnly)},
			opts:        Options{Strict: false},
			wantOutcome: Passed,
		},
		{
			name:        "invalid is fatal by default",
			routes:      []classify.ClassifiedRoute{cr("/broken", classify.Invalid, renderErr)},
			opts:        Options{Strict: false},
			wantOutcome: Failed,
			wantReasons: []string{"/broken"},
		},
		{
			name:        "invalid with allowPartial warns",
			routes:      []classify.ClassifiedRoute{cr("/broken", classify.Invalid, renderErr)},
			opts:        Options{Strict: false, AllowPartial: true},
			wantOutcome: Passed,
			wantWarn:    1,
		},
		{
			name:        "strict rejects partial builds",
			routes:      []classify.ClassifiedRoute{cr("/broken", classify.Invalid, renderErr)},
			opts:        Options{Strict: true, AllowPartial: true},
			wantOutcome: Failed,
			wantReasons: []string{"/broken"},
		},
		{
			name:        "pending ignored",
			routes:      []classify.ClassifiedRoute{cr("/", classify.Pending)},
			opts:        Options{Strict: true},
			wantOutcome: Passed,
		},
		{
			name:        "mixed keeps declaration order",
			routes:      []classify.ClassifiedRoute{cr("/z", classify.Invalid, renderErr), cr("/a", classify.FallbackOnly)},
			opts:        Options{Strict: true},
			wantOutcome: Failed,
			wantReasons: []string{"/z", "/a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Validate(report.New(tt.routes), tt.opts)
			assert.Equal(t, tt.wantOutcome, d.Outcome)
			assert.Equal(t, tt.wantReasons, d.Reasons)
			assert.Len(t, d.Warnings, tt.wantWarn)
			if tt.wantOutcome == Passed {
				assert.True(t, d.Passed())
				assert.NoError(t, d.Err())
			} else {
				assert.Error(t, d.Err())
			}
		})
	}
}

func TestValidate_ErrorTypes(t *testing.T) {
	renderErr := &classify.RenderError{Route: "/broken", Err: errors.New("boom")}
	r := report.New([]classify.ClassifiedRoute{
		cr("/app", classify.FallbackOnly),
		cr("/broken", classify.Invalid, renderErr),
	})

	err := Validate(r, Options{Strict: true}).Err()
	require.Error(t, err)

	var sv *StrictViolation
	require.ErrorAs(t, err, &sv)
	assert.Equal(t, []string{"/app"}, sv.Routes)
	assert.Contains(t, sv.Error(), "  - /app")

	var re *classify.RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "/broken", re.Route)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "passed", Passed.String())
	assert.Equal(t, "failed", Failed.String())
}
