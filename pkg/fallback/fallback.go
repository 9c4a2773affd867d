package fallback

import (
	"errors"
	"fmt"
	"strings"

	"github.com/segmentio/encoding/json"

	"github.com/withgalaxy/adapter-static/pkg/config"
	"github.com/withgalaxy/adapter-static/pkg/output"
	"github.com/withgalaxy/adapter-static/pkg/render"
	"github.com/withgalaxy/adapter-static/pkg/report"
)

// Source labels the fallback in collision errors.
const Source = "fallback page"

type Synthesizer struct {
	Shell  *render.Shell
	Path   string
	Base   string
	AppDir string
	Emit   bool
}

func New(cfg config.Config, shell *render.Shell) *Synthesizer {
	if shell == nil {
		shell = render.DefaultShell()
	}
	return &Synthesizer{
		Shell:  shell,
		Path:   cfg.Adapter.Fallback,
		Base:   cfg.Base,
		AppDir: cfg.AppDir,
		Emit:   cfg.Adapter.EmitFallback,
	}
}

// ClientRoute is one entry of the table the client router matches unknown
// paths against.
type ClientRoute struct {
	Pattern string   `json:"pattern"`
	Regex   string   `json:"regex,omitempty"`
	Params  []string `json:"params,omitempty"`
}

// Table lists the FallbackOnly routes of r in declaration order.
func Table(r *report.BuildReport) []ClientRoute {
	table := make([]ClientRoute, 0, r.FallbackCount)
	for _, cr := range r.FallbackRoutes() {
		entry := ClientRoute{Pattern: cr.Route.Pattern, Params: cr.Route.ParamNames}
		if cr.Route.Regex != nil {
			entry.Regex = cr.Route.Regex.String()
		}
		table = append(table, entry)
	}
	return table
}

// Synthesize builds the single bootstrap document. It returns nil when
// emission is disabled and no route needs the fallback.
func (s *Synthesizer) Synthesize(r *report.BuildReport) (*output.File, error) {
	if strings.TrimSpace(s.Path) == "" {
		return nil, errors.New("fallback path is required")
	}
	if !s.Emit && r.FallbackCount == 0 {
		return nil, nil
	}

	table, err := json.Marshal(Table(r))
	if err != nil {
		return nil, fmt.Errorf("encode fallback routes: %w", err)
	}

	appDir := strings.Trim(s.AppDir, "/")
	if appDir == "" {
		appDir = "_app"
	}
	start := s.Base + "/" + appDir + "/start.js"

	var head strings.Builder
	head.WriteString(`<meta name="robots" content="noindex" />`)
	head.WriteString("\n\t\t")
	head.WriteString(`<script type="application/json" id="__routes">`)
	head.Write(escapeScript(table))
	head.WriteString(`</script>`)
	head.WriteString("\n\t\t")
	fmt.Fprintf(&head, `<script type="module">
			import { start } from %q;
			start({
				target: document.getElementById('app'),
				base: %q,
				routes: JSON.parse(document.getElementById('__routes').textContent)
			});
		</script>`, start, s.Base)

	return &output.File{
		RelativePath: s.Path,
		Bytes:        s.Shell.Wrap(head.String(), ""),
		Root:         output.RootPages,
		Source:       Source,
	}, nil
}

// escapeScript keeps the JSON from closing the surrounding script element.
func escapeScript(b []byte) []byte {
	return []byte(strings.ReplaceAll(string(b), "</", `<\/`))
}
