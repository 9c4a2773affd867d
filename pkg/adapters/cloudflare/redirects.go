package cloudflare

import (
	"fmt"

	"github.com/withgalaxy/adapter-static/pkg/adapters"
)

// Cloudflare Pages treats a 200 redirect as a rewrite.
func generateRedirects(ctx *adapters.BuildContext) []byte {
	return []byte(fmt.Sprintf("%s/* %s 200\n", ctx.Config.Base, ctx.FallbackURL()))
}
