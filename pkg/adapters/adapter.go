package adapters

import (
	"path"

	"github.com/withgalaxy/adapter-static/pkg/config"
	"github.com/withgalaxy/adapter-static/pkg/output"
	"github.com/withgalaxy/adapter-static/pkg/report"
)

// Adapter adds the files a hosting platform needs to serve the static tree
// and the fallback page.
type Adapter interface {
	Name() string
	// Prefix is prepended to every output path, for platforms that expect
	// the site in a subdirectory of their output layout.
	Prefix() string
	Files(ctx *BuildContext) ([]output.File, error)
	Instructions() []string
}

type BuildContext struct {
	Config config.Config
	Report *report.BuildReport
	// Fallback is the emitted fallback path, empty when none was written.
	Fallback string
}

// FallbackURL is the site-absolute URL of the fallback page.
func (c *BuildContext) FallbackURL() string {
	return c.Config.Base + "/" + c.Fallback
}

// AssetsPattern matches the hashed client assets, which never change once
// written.
func (c *BuildContext) AssetsPattern() string {
	appDir := c.Config.AppDir
	if appDir == "" {
		appDir = "_app"
	}
	return c.Config.Base + "/" + path.Join(appDir, "assets") + "/*"
}

const ImmutableCache = "public, max-age=31536000, immutable"
