package fallback

import (
	"regexp"
	"strings"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/withgalaxy/adapter-static/pkg/classify"
	"github.com/withgalaxy/adapter-static/pkg/config"
	"github.com/withgalaxy/adapter-static/pkg/output"
	"github.com/withgalaxy/adapter-static/pkg/render"
	"github.com/withgalaxy/adapter-static/pkg/report"
	"github.com/withgalaxy/adapter-static/pkg/router"
)

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Adapter.Fallback = "200.html"
	return cfg
}

func fallbackReport() *report.BuildReport {
	return report.New([]classify.ClassifiedRoute{
		{Route: &router.Route{Pattern: "/"}, Disposition: classify.Static},
		{
			Route: &router.Route{
				Pattern:    "/blog/[slug]",
				Type:       router.RouteDynamic,
				ParamNames: []string{"slug"},
				Regex:      regexp.MustCompile(`^/blog/([^/]+)$`),
			},
			Disposition: classify.FallbackOnly,
		},
		{Route: &router.Route{Pattern: "/app"}, Disposition: classify.FallbackOnly},
	})
}

var routesJSON = regexp.MustCompile(`(?s)<script type="application/json" id="__routes">(.*?)</script>`)

func TestSynthesize(t *testing.T) {
	s := New(testConfig(), nil)

	f, err := s.Synthesize(fallbackReport())
	require.NoError(t, err)
	require.NotNil(t, f)

	assert.Equal(t, "200.html", f.RelativePath)
	assert.Equal(t, output.RootPages, f.Root)
	assert.Equal(t, Source, f.Source)

	html := string(f.Bytes)
	assert.Contains(t, html, `<div id="app"></div>`)
	assert.Contains(t, html, `import { start } from "/_app/start.js"`)
	assert.NotContains(t, html, render.HeadPlaceholder)
	assert.NotContains(t, html, render.BodyPlaceholder)

	m := routesJSON.FindStringSubmatch(html)
	require.Len(t, m, 2)

	var table []ClientRoute
	require.NoError(t, json.Unmarshal([]byte(m[1]), &table))
	assert.Equal(t, []ClientRoute{
		{Pattern: "/blog/[slug]", Regex: `^/blog/([^/]+)$`, Params: []string{"slug"}},
		{Pattern: "/app"},
	}, table)
}

func TestSynthesize_NoFallbackRoutes(t *testing.T) {
	r := report.New([]classify.ClassifiedRoute{
		{Route: &router.Route{Pattern: "/"}, Disposition: classify.Static},
	})

	f, err := New(testConfig(), nil).Synthesize(r)
	require.NoError(t, err)
	require.NotNil(t, f, "the fallback is emitted even when no route needs it")
	assert.Contains(t, string(f.Bytes), `id="__routes">[]</script>`)
}

func TestSynthesize_EmitDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Adapter.EmitFallback = false
	s := New(cfg, nil)

	empty := report.New([]classify.ClassifiedRoute{
		{Route: &router.Route{Pattern: "/"}, Disposition: classify.Static},
	})
	f, err := s.Synthesize(empty)
	require.NoError(t, err)
	assert.Nil(t, f)

	f, err = s.Synthesize(fallbackReport())
	require.NoError(t, err)
	assert.NotNil(t, f, "routes that need the fallback still get it")
}

func TestSynthesize_RequiresPath(t *testing.T) {
	s := New(config.DefaultConfig(), nil)
	_, err := s.Synthesize(fallbackReport())
	assert.Error(t, err)
}

func TestSynthesize_CustomShellAndBase(t *testing.T) {
	shell, err := render.ParseShell("<html><head>%app.head%</head><body><main>%app.body%</main></body></html>")
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Base = "/docs"
	cfg.AppDir = "app"

	f, err := New(cfg, shell).Synthesize(fallbackReport())
	require.NoError(t, err)

	html := string(f.Bytes)
	assert.True(t, strings.HasPrefix(html, "<html><head>"))
	assert.Contains(t, html, "<main></main>")
	assert.Contains(t, html, `"/docs/app/start.js"`)
	assert.Contains(t, html, `base: "/docs"`)
}

func TestSynthesize_Deterministic(t *testing.T) {
	s := New(testConfig(), nil)
	a, err := s.Synthesize(fallbackReport())
	require.NoError(t, err)
	b, err := s.Synthesize(fallbackReport())
	require.NoError(t, err)
	assert.Equal(t, a.Bytes, b.Bytes)
}

func TestEscapeScript(t *testing.T) {
	assert.Equal(t, `["<\/script>"]`, string(escapeScript([]byte(`["</script>"]`))))
}
