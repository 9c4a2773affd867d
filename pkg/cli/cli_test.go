package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/withgalaxy/adapter-static/pkg/config"
)

func TestRenderConfig(t *testing.T) {
	data, err := renderConfig(initAnswers{Fallback: "index.html", Precompress: true, Strict: true, Platform: "netlify"})
	require.NoError(t, err)

	dir := t.TempDir()
	p := filepath.Join(dir, config.TOMLFile)
	require.NoError(t, os.WriteFile(p, data, 0644))

	cfg, err := config.Load(p)
	require.NoError(t, err)
	assert.Equal(t, "index.html", cfg.Adapter.Fallback)
	assert.True(t, cfg.Adapter.Precompress)
	assert.True(t, cfg.Adapter.Strict)
	assert.Equal(t, config.PlatformNetlify, cfg.Adapter.Platform)
}

func TestRenderConfig_RejectsInvalid(t *testing.T) {
	_, err := renderConfig(initAnswers{Fallback: "../escape.html", Platform: "none"})
	assert.Error(t, err)
}

func TestDefaultAnswers_FallbackAvoidsHomePage(t *testing.T) {
	assert.Equal(t, "200.html", defaultAnswers().Fallback)
	assert.Contains(t, fallbackHelp, "index.html")
	assert.Contains(t, fallbackHelp, "200.html")
}

func TestNewLogger(t *testing.T) {
	defer func() { silent, verbose = false, false }()

	silent = true
	l, err := newLogger()
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1), "silent logger must drop everything")

	silent, verbose = false, true
	l, err = newLogger()
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(-1))

	verbose = false
	l, err = newLogger()
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(0), "info is hidden by default")
	assert.True(t, l.Core().Enabled(1))
}

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "routes"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "routes", "index.html"), []byte("<h1>Home</h1>\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.TOMLFile), []byte("[adapter]\nfallback = \"200.html\"\n"), 0644))

	defer func() { rootDir, silent = "", false }()
	rootCmd.SetArgs([]string{"build", "--root", dir, "--silent", "--outDir", "public"})
	require.NoError(t, rootCmd.Execute())

	for _, name := range []string{"index.html", "200.html"} {
		_, err := os.Stat(filepath.Join(dir, "public", name))
		assert.NoError(t, err, name)
	}
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.yaml"), []byte("adapter:\n  fallback: spa.html\n"), 0644))

	defer func() { rootDir, cfgFile = "", "" }()
	rootDir, cfgFile = dir, "site.yaml"

	cfg, cwd, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, dir, cwd)
	assert.Equal(t, "spa.html", cfg.Adapter.Fallback)
	assert.Equal(t, filepath.Join(dir, "build"), cfg.Adapter.Pages)
}
