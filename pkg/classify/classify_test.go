package classify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/withgalaxy/adapter-static/pkg/render"
	"github.com/withgalaxy/adapter-static/pkg/router"
)

func boolPtr(b bool) *bool { return &b }

type fakeRenderer struct {
	mu    sync.Mutex
	fail  map[string]error
	calls []string

	delay    time.Duration
	inflight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeRenderer) Render(ctx context.Context, inst router.Instance) (*render.Document, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, inst.Path)
	err := f.fail[inst.Path]
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}
	return &render.Document{Path: inst.Path, HTML: []byte("<p>" + inst.Path + "</p>")}, nil
}

func staticRoute(pattern string) *router.Route {
	return &router.Route{Pattern: pattern, Type: router.RouteStatic}
}

func dynamicRoute(pattern string, entries ...string) *router.Route {
	r := &router.Route{Pattern: pattern, Type: router.RouteDynamic, ParamNames: []string{"slug"}}
	for _, e := range entries {
		r.Entries = append(r.Entries, router.Entry{"slug": e})
	}
	return r
}

func newClassifier(t *testing.T, r render.Renderer) *Classifier {
	return New(r, Options{PrerenderDefault: true, Concurrency: 4, Logger: zaptest.NewLogger(t)})
}

func TestClassify_StaticAndDynamic(t *testing.T) {
	fr := &fakeRenderer{}
	c := newClassifier(t, fr)

	routes := []*router.Route{
		staticRoute("/"),
		dynamicRoute("/blog/[slug]", "a", "b"),
	}

	result, err := c.Classify(context.Background(), routes)
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, Static, result[0].Disposition)
	require.Len(t, result[0].Documents, 1)
	assert.Equal(t, "/", result[0].Documents[0].Path)

	assert.Equal(t, Static, result[1].Disposition)
	require.Len(t, result[1].Documents, 2)
	assert.Equal(t, "/blog/a", result[1].Documents[0].Path)
	assert.Equal(t, "/blog/b", result[1].Documents[1].Path)
}

func TestClassify_DynamicWithoutEntriesIsFallback(t *testing.T) {
	fr := &fakeRenderer{}
	c := newClassifier(t, fr)

	declared := dynamicRoute("/u/[slug]")
	declared.Prerender = boolPtr(true)

	result, err := c.Classify(context.Background(), []*router.Route{dynamicRoute("/p/[slug]"), declared})
	require.NoError(t, err)

	for _, cr := range result {
		assert.Equal(t, FallbackOnly, cr.Disposition, cr.ID())
		assert.Equal(t, ReasonNoEntries, cr.Reason)
	}
	assert.Empty(t, fr.calls, "fallback routes must not be rendered")
}

func TestClassify_OptOutIsFallbackEvenIfRenderable(t *testing.T) {
	fr := &fakeRenderer{}
	c := newClassifier(t, fr)

	r := staticRoute("/dashboard")
	r.Prerender = boolPtr(false)

	result, err := c.Classify(context.Background(), []*router.Route{r})
	require.NoError(t, err)
	assert.Equal(t, FallbackOnly, result[0].Disposition)
	assert.Equal(t, ReasonOptOut, result[0].Reason)
	assert.Empty(t, fr.calls)
}

func TestClassify_DefaultOff(t *testing.T) {
	c := New(&fakeRenderer{}, Options{PrerenderDefault: false})

	declared := staticRoute("/on")
	declared.Prerender = boolPtr(true)

	result, err := c.Classify(context.Background(), []*router.Route{staticRoute("/off"), declared})
	require.NoError(t, err)
	assert.Equal(t, FallbackOnly, result[0].Disposition)
	assert.Equal(t, ReasonDefault, result[0].Reason)
	assert.Equal(t, Static, result[1].Disposition)
}

func TestClassify_RenderFailureIsInvalid(t *testing.T) {
	fr := &fakeRenderer{fail: map[string]error{
		"/broken": render.ErrServerRequired,
		"/blog/b": errors.New("boom"),
	}}
	c := newClassifier(t, fr)

	routes := []*router.Route{
		staticRoute("/broken"),
		dynamicRoute("/blog/[slug]", "a", "b", "c"),
		staticRoute("/ok"),
	}

	result, err := c.Classify(context.Background(), routes)
	require.NoError(t, err)

	assert.Equal(t, Invalid, result[0].Disposition)
	require.Len(t, result[0].Errors, 1)
	assert.ErrorIs(t, result[0].Errors[0], render.ErrServerRequired)

	assert.Equal(t, Invalid, result[1].Disposition, "partial failure marks the whole route invalid")
	assert.Nil(t, result[1].Documents)
	require.Len(t, result[1].Errors, 1)
	var rerr *RenderError
	require.ErrorAs(t, result[1].Errors[0], &rerr)
	assert.Equal(t, "/blog/[slug]", rerr.Route)
	assert.Equal(t, "/blog/b", rerr.Path)

	assert.Equal(t, Static, result[2].Disposition, "failures must not affect other routes")
	assert.Len(t, fr.calls, 5, "every instance is rendered")
}

func TestClassify_BadEntryIsInvalid(t *testing.T) {
	r := dynamicRoute("/blog/[slug]", "a/b")
	result, err := newClassifier(t, &fakeRenderer{}).Classify(context.Background(), []*router.Route{r})
	require.NoError(t, err)
	assert.Equal(t, Invalid, result[0].Disposition)
}

func TestClassify_PreservesDeclarationOrder(t *testing.T) {
	fr := &fakeRenderer{delay: time.Millisecond}
	c := newClassifier(t, fr)

	var routes []*router.Route
	patterns := []string{"/z", "/a", "/m", "/b", "/y", "/c"}
	for _, p := range patterns {
		routes = append(routes, staticRoute(p))
	}

	result, err := c.Classify(context.Background(), routes)
	require.NoError(t, err)
	for i, p := range patterns {
		assert.Equal(t, p, result[i].ID())
	}
}

func TestClassify_BoundedConcurrency(t *testing.T) {
	fr := &fakeRenderer{delay: 5 * time.Millisecond}
	c := New(fr, Options{PrerenderDefault: true, Concurrency: 2})

	entries := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		entries = append(entries, string(rune('a'+i)))
	}

	result, err := c.Classify(context.Background(), []*router.Route{dynamicRoute("/p/[slug]", entries...)})
	require.NoError(t, err)
	assert.Equal(t, Static, result[0].Disposition)
	assert.LessOrEqual(t, fr.peak.Load(), int32(2))
}

func TestClassify_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newClassifier(t, &fakeRenderer{}).Classify(ctx, []*router.Route{staticRoute("/")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlan_DoesNotRender(t *testing.T) {
	fr := &fakeRenderer{}
	c := newClassifier(t, fr)

	plan := c.Plan([]*router.Route{staticRoute("/"), dynamicRoute("/p/[slug]")})
	assert.Equal(t, Pending, plan[0].Disposition)
	assert.Equal(t, FallbackOnly, plan[1].Disposition)
	assert.Empty(t, fr.calls)
}

func TestDisposition_String(t *testing.T) {
	assert.Equal(t, "static", Static.String())
	assert.Equal(t, "fallback", FallbackOnly.String())
	assert.Equal(t, "invalid", Invalid.String())
	assert.Equal(t, "pending", Pending.String())
}
