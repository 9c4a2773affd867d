package build

import (
	"fmt"

	"github.com/withgalaxy/adapter-static/pkg/adapters"
	"github.com/withgalaxy/adapter-static/pkg/adapters/cloudflare"
	"github.com/withgalaxy/adapter-static/pkg/adapters/netlify"
	"github.com/withgalaxy/adapter-static/pkg/adapters/vercel"
	"github.com/withgalaxy/adapter-static/pkg/config"
	"github.com/withgalaxy/adapter-static/pkg/output"
)

// plainAdapter writes the tree as-is, for hosts that need no extra files.
type plainAdapter struct{}

func (plainAdapter) Name() string   { return "static" }
func (plainAdapter) Prefix() string { return "" }

func (plainAdapter) Files(*adapters.BuildContext) ([]output.File, error) {
	return nil, nil
}

func (plainAdapter) Instructions() []string {
	return nil
}

func Platform(name config.PlatformName) (adapters.Adapter, error) {
	switch name {
	case config.PlatformNone:
		return plainAdapter{}, nil
	case config.PlatformCloudflare:
		return cloudflare.New(), nil
	case config.PlatformNetlify:
		return netlify.New(), nil
	case config.PlatformVercel:
		return vercel.New(), nil
	default:
		return nil, fmt.Errorf("unknown platform: %s", name)
	}
}
