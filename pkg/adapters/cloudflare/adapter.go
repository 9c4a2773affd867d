package cloudflare

import (
	"github.com/withgalaxy/adapter-static/pkg/adapters"
	"github.com/withgalaxy/adapter-static/pkg/output"
)

const Source = "cloudflare adapter"

type CloudflareAdapter struct{}

func New() *CloudflareAdapter {
	return &CloudflareAdapter{}
}

func (a *CloudflareAdapter) Name() string {
	return "cloudflare"
}

func (a *CloudflareAdapter) Prefix() string {
	return ""
}

func (a *CloudflareAdapter) Files(ctx *adapters.BuildContext) ([]output.File, error) {
	files := []output.File{{
		RelativePath: "_headers",
		Bytes:        generateHeaders(ctx),
		Source:       Source,
	}}

	if ctx.Fallback != "" {
		files = append(files, output.File{
			RelativePath: "_redirects",
			Bytes:        generateRedirects(ctx),
			Source:       Source,
		})
	}

	return files, nil
}

func (a *CloudflareAdapter) Instructions() []string {
	return []string{
		"📄 Generated: _redirects, _headers",
		"🚀 Deploy: wrangler pages deploy <output>",
	}
}
