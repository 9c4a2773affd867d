package preprocess

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingTransform struct{}

func (failingTransform) Name() string               { return "broken" }
func (failingTransform) Match(filename string) bool { return strings.HasSuffix(filename, ".html") }
func (failingTransform) Transform(filename string, src []byte) ([]byte, error) {
	if strings.Contains(string(src), "boom") {
		return nil, errors.New("unexpected token")
	}
	return src, nil
}

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantFront string
		wantBody  string
		wantOK    bool
	}{
		{
			name:      "with frontmatter",
			src:       "---\ntitle: Hi\n---\n<h1>Hi</h1>\n",
			wantFront: "title: Hi\n",
			wantBody:  "<h1>Hi</h1>\n",
			wantOK:    true,
		},
		{
			name:     "without frontmatter",
			src:      "<h1>Hi</h1>",
			wantBody: "<h1>Hi</h1>",
		},
		{
			name:      "empty frontmatter",
			src:       "---\n---\nbody",
			wantFront: "",
			wantBody:  "body",
			wantOK:    true,
		},
		{
			name:     "unterminated",
			src:      "---\ntitle: Hi\n",
			wantBody: "---\ntitle: Hi\n",
		},
		{
			name:      "crlf",
			src:       "---\r\nprerender: false\r\n---\r\nbody",
			wantFront: "prerender: false\n",
			wantBody:  "body",
			wantOK:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			front, body, ok := SplitFrontmatter([]byte(tt.src))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantFront, string(front))
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestMarkdownTransform(t *testing.T) {
	src := "---\ntitle: Post\nprerender: true\n---\n\n# Hello\n\nThis is **bold**.\n"

	out, err := NewMarkdown("").Transform("post.md", []byte(src))
	require.NoError(t, err)

	front, body, ok := SplitFrontmatter(out)
	require.True(t, ok, "frontmatter should be preserved")
	assert.Contains(t, string(front), "title: Post")
	assert.Contains(t, string(body), "<h1")
	assert.Contains(t, string(body), "<strong>bold</strong>")
	assert.NotContains(t, string(body), "title: Post")
}

func TestMarkdownTransform_KeepsRawHTML(t *testing.T) {
	out, err := NewMarkdown("").Transform("a.md", []byte("<style>h1{color:red}</style>\n\n# A\n"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "<style>h1{color:red}</style>")
}

func TestMarkdownTransform_InvalidFrontmatter(t *testing.T) {
	_, err := NewMarkdown("").Transform("bad.md", []byte("---\ntitle: [unclosed\n---\n# x\n"))
	assert.Error(t, err)
}

func TestHTMLTransform(t *testing.T) {
	out, err := NewHTML().Transform("a.html", []byte("---\ntitle: A\n---\n<p>a</p>   \r\n\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: A\n---\n<p>a</p>\n", string(out))
}

func TestManager_LoadUnknown(t *testing.T) {
	m := NewDefaultManager()
	err := m.Load([]string{"markdown", "svelte"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown preprocessor: svelte")
}

func TestManager_ApplyAttributesErrors(t *testing.T) {
	m := NewDefaultManager()
	m.Register(failingTransform{})
	require.NoError(t, m.Load([]string{"html", "broken"}))

	_, err := m.Apply("pages/bad.html", []byte("boom"))
	require.Error(t, err)

	var perr *PreprocessError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "pages/bad.html", perr.File)
	assert.Equal(t, "broken", perr.Transform)
}

func TestPipeline_Run(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "blog"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Home</h1>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blog", "[slug].md"), []byte("# Post\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	m := NewDefaultManager()
	require.NoError(t, m.Load([]string{"markdown", "html"}))
	p, err := NewPipeline(m, 0)
	require.NoError(t, err)

	units, err := p.Run(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, "blog/[slug].md", units[0].RelPath)
	assert.Contains(t, string(units[0].Source), "<h1")
	assert.Equal(t, "index.html", units[1].RelPath)
	assert.Equal(t, 2, p.CacheLen())

	_, err = p.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, p.CacheLen(), "unchanged sources should hit the cache")
}

func TestPipeline_RunFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.md"), []byte("---\nentries: [\n---\n"), 0644))

	m := NewDefaultManager()
	require.NoError(t, m.Load([]string{"markdown"}))
	p, err := NewPipeline(m, 8)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), dir)
	var perr *PreprocessError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "bad.md", perr.File)
}

func TestPipeline_MissingDir(t *testing.T) {
	p, err := NewPipeline(NewDefaultManager(), 0)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
