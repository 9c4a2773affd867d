package output

import (
	"fmt"
	"path"
	"strings"

	"github.com/withgalaxy/adapter-static/pkg/config"
)

type Root int

const (
	RootPages Root = iota
	RootAssets
)

func (r Root) String() string {
	if r == RootAssets {
		return "assets"
	}
	return "pages"
}

// File is one entry of the output tree. Variants is keyed by codec name and
// only filled in during Flush.
type File struct {
	RelativePath string
	Bytes        []byte
	Variants     map[string][]byte
	Root         Root
	// Source names what produced the file, for collision messages.
	Source string
}

type PathCollisionError struct {
	Path     string
	Existing string
	Incoming string
}

func (e *PathCollisionError) Error() string {
	return fmt.Sprintf("path collision at %s: %s and %s both write to it", e.Path, e.Existing, e.Incoming)
}

type CompressionError struct {
	Path  string
	Codec string
	Err   error
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("compress %s (%s): %v; original kept", e.Path, e.Codec, e.Err)
}

func (e *CompressionError) Unwrap() error {
	return e.Err
}

// PagePath maps a concrete route path to the document it is written to.
func PagePath(routePath string, slash config.TrailingSlash) string {
	p := strings.Trim(path.Clean("/"+routePath), "/")
	if p == "" {
		return "index.html"
	}
	if slash == config.TrailingSlashAlways {
		return p + "/index.html"
	}
	return p + ".html"
}

// cleanRel normalises a relative output path and rejects anything that
// would leave the output root.
func cleanRel(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("empty output path")
	}
	if path.IsAbs(p) {
		return "", fmt.Errorf("output path must be relative: %s", p)
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("output path escapes the output directory: %s", p)
	}
	return clean, nil
}
