package netlify

import (
	"fmt"

	"github.com/withgalaxy/adapter-static/pkg/adapters"
)

func generateHeaders(ctx *adapters.BuildContext) []byte {
	return []byte(fmt.Sprintf(`# Cache-control for hashed assets
%s
  Cache-Control: %s
`, ctx.AssetsPattern(), adapters.ImmutableCache))
}
