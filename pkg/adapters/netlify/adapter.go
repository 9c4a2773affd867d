package netlify

import (
	"github.com/withgalaxy/adapter-static/pkg/adapters"
	"github.com/withgalaxy/adapter-static/pkg/output"
)

const Source = "netlify adapter"

type NetlifyAdapter struct{}

func New() *NetlifyAdapter {
	return &NetlifyAdapter{}
}

func (a *NetlifyAdapter) Name() string {
	return "netlify"
}

func (a *NetlifyAdapter) Prefix() string {
	return ""
}

func (a *NetlifyAdapter) Files(ctx *adapters.BuildContext) ([]output.File, error) {
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

func (a *NetlifyAdapter) Instructions() []string {
	return []string{
		"📄 Generated: _redirects, _headers",
		"🚀 Deploy: netlify deploy --prod",
	}
}
