package render

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strings"

	"github.com/withgalaxy/adapter-static/pkg/router"
)

// ErrServerRequired is returned when a page can only be produced by a live
// server at request time.
var ErrServerRequired = errors.New("route requires a server at request time")

type Renderer interface {
	Render(ctx context.Context, inst router.Instance) (*Document, error)
}

// Document is the output of rendering one route instance.
type Document struct {
	Path   string
	HTML   []byte
	Assets []Asset
}

// Asset is a file a document depends on, relative to the assets root.
type Asset struct {
	Path string
	Data []byte
}

type RenderFunc func(ctx context.Context, inst router.Instance) (*Document, error)

func (f RenderFunc) Render(ctx context.Context, inst router.Instance) (*Document, error) {
	return f(ctx, inst)
}

type TemplateRenderer struct {
	Shell  *Shell
	AppDir string
	Base   string
}

func NewTemplateRenderer(shell *Shell, appDir, base string) *TemplateRenderer {
	if shell == nil {
		shell = DefaultShell()
	}
	if appDir == "" {
		appDir = "_app"
	}
	return &TemplateRenderer{Shell: shell, AppDir: appDir, Base: base}
}

type pageData struct {
	Path   string
	Params map[string]string
	Meta   map[string]interface{}
	Title  string
}

var styleRegex = regexp.MustCompile(`(?s)<style(?:\s+[^>]*)?>(.*?)</style>\s*`)

func (r *TemplateRenderer) Render(ctx context.Context, inst router.Instance) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	route := inst.Route
	if route.Server {
		return nil, ErrServerRequired
	}

	tmpl, err := template.New(route.Pattern).Option("missingkey=error").Parse(route.Body)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, pageData{
		Path:   inst.Path,
		Params: inst.Params,
		Meta:   route.Meta,
		Title:  route.Title,
	}); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	content, styles := extractStyles(body.String())

	doc := &Document{Path: inst.Path}

	var head strings.Builder
	if route.Title != "" {
		head.WriteString("<title>" + html.EscapeString(route.Title) + "</title>")
	}

	if styles != "" {
		asset := r.styleAsset(styles)
		doc.Assets = append(doc.Assets, asset)
		if head.Len() > 0 {
			head.WriteString("\n\t\t")
		}
		head.WriteString(fmt.Sprintf(`<link rel="stylesheet" href="%s/%s">`, r.Base, asset.Path))
	}

	doc.HTML = r.Shell.Wrap(head.String(), content)
	return doc, nil
}

func extractStyles(content string) (string, string) {
	var combined strings.Builder
	for _, m := range styleRegex.FindAllStringSubmatch(content, -1) {
		combined.WriteString(strings.TrimSpace(m[1]))
		combined.WriteString("\n")
	}
	return styleRegex.ReplaceAllString(content, ""), combined.String()
}

// styleAsset names the stylesheet by content hash so identical styles from
// different pages share one file.
func (r *TemplateRenderer) styleAsset(css string) Asset {
	hash := fmt.Sprintf("%x", sha256.Sum256([]byte(css)))[:8]
	return Asset{
		Path: fmt.Sprintf("%s/assets/styles-%s.css", r.AppDir, hash),
		Data: []byte(css),
	}
}
