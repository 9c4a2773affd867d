package netlify

import (
	"fmt"

	"github.com/withgalaxy/adapter-static/pkg/adapters"
)

// generateRedirects rewrites every unmatched path to the fallback page.
// Netlify serves existing files before applying the rule.
func generateRedirects(ctx *adapters.BuildContext) []byte {
	return []byte(fmt.Sprintf(`# SPA fallback for client-side routing
%s/*    %s   200
`, ctx.Config.Base, ctx.FallbackURL()))
}
