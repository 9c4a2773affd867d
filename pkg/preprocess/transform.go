package preprocess

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Transform turns raw page source into compiled source. Implementations must
// be pure: the same input always yields the same output.
type Transform interface {
	Name() string
	Match(filename string) bool
	Transform(filename string, src []byte) ([]byte, error)
}

type PreprocessError struct {
	File      string
	Transform string
	Err       error
}

func (e *PreprocessError) Error() string {
	if e.Transform == "" {
		return fmt.Sprintf("preprocess %s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("preprocess %s (%s): %v", e.File, e.Transform, e.Err)
}

func (e *PreprocessError) Unwrap() error {
	return e.Err
}

var frontmatterDelim = []byte("---\n")

// SplitFrontmatter separates a leading "---" YAML block from the body. The
// returned front excludes the delimiters.
func SplitFrontmatter(src []byte) (front, body []byte, ok bool) {
	src = normalizeNewlines(src)
	if !bytes.HasPrefix(src, frontmatterDelim) {
		return nil, src, false
	}

	rest := src[len(frontmatterDelim):]
	if bytes.HasPrefix(rest, frontmatterDelim) {
		return []byte{}, rest[len(frontmatterDelim):], true
	}

	end := bytes.Index(rest, []byte("\n---"))
	if end == -1 {
		return nil, src, false
	}

	front = rest[:end+1]
	body = rest[end+len("\n---"):]
	if i := bytes.IndexByte(body, '\n'); i != -1 && strings.TrimSpace(string(body[:i])) == "" {
		body = body[i+1:]
	} else if strings.TrimSpace(string(body)) == "" {
		body = nil
	}
	return front, body, true
}

// JoinFrontmatter is the inverse of SplitFrontmatter.
func JoinFrontmatter(front, body []byte, ok bool) []byte {
	if !ok {
		return body
	}
	var buf bytes.Buffer
	buf.Write(frontmatterDelim)
	buf.Write(front)
	if len(front) > 0 && front[len(front)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.Write(frontmatterDelim)
	buf.Write(body)
	return buf.Bytes()
}

func normalizeNewlines(src []byte) []byte {
	if !bytes.Contains(src, []byte("\r\n")) {
		return src
	}
	return bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
}

func hasExt(filename string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
