package vercel

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/segmentio/encoding/json"

	"github.com/withgalaxy/adapter-static/pkg/adapters"
	"github.com/withgalaxy/adapter-static/pkg/output"
)

const (
	Source    = "vercel adapter"
	OutputDir = ".vercel/output"
)

type VercelAdapter struct{}

func New() *VercelAdapter {
	return &VercelAdapter{}
}

func (a *VercelAdapter) Name() string {
	return "vercel"
}

// Prefix places the site under the static directory of the build output.
func (a *VercelAdapter) Prefix() string {
	return OutputDir + "/static"
}

func (a *VercelAdapter) Files(ctx *adapters.BuildContext) ([]output.File, error) {
	data, err := json.MarshalIndent(generateConfig(ctx), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s/config.json: %w", OutputDir, err)
	}

	return []output.File{{
		RelativePath: OutputDir + "/config.json",
		Bytes:        append(data, '\n'),
		Source:       Source,
	}}, nil
}

func (a *VercelAdapter) Instructions() []string {
	return []string{
		"📄 Generated: " + OutputDir + "/config.json",
		"🚀 Deploy: vercel deploy --prebuilt",
	}
}

func generateConfig(ctx *adapters.BuildContext) *VercelConfig {
	cfg := NewVercelConfig()

	assets := strings.TrimSuffix(ctx.AssetsPattern(), "/*")
	cfg.AddRoute(Route{
		Src:      "^" + regexp.QuoteMeta(assets) + "/(.*)$",
		Headers:  map[string]string{"cache-control": adapters.ImmutableCache},
		Continue: true,
	})
	cfg.AddRoute(Route{Handle: "filesystem"})

	if ctx.Fallback != "" {
		cfg.AddRoute(Route{
			Src:  "^" + regexp.QuoteMeta(ctx.Config.Base) + "/.*$",
			Dest: ctx.FallbackURL(),
		})
	}

	return cfg
}
