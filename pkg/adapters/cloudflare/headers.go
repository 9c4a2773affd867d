package cloudflare

import (
	"fmt"

	"github.com/withgalaxy/adapter-static/pkg/adapters"
)

func generateHeaders(ctx *adapters.BuildContext) []byte {
	return []byte(fmt.Sprintf(`%s
  Cache-Control: %s

/*
  X-Content-Type-Options: nosniff
`, ctx.AssetsPattern(), adapters.ImmutableCache))
}
