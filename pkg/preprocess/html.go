package preprocess

import (
	"bytes"
)

// HTMLTransform passes .html pages through, normalising line endings and
// trailing whitespace so equivalent sources compile identically.
type HTMLTransform struct{}

func NewHTML() *HTMLTransform {
	return &HTMLTransform{}
}

func (t *HTMLTransform) Name() string {
	return "html"
}

func (t *HTMLTransform) Match(filename string) bool {
	return hasExt(filename, ".html", ".htm")
}

func (t *HTMLTransform) Transform(filename string, src []byte) ([]byte, error) {
	front, body, ok := SplitFrontmatter(src)

	lines := bytes.Split(body, []byte("\n"))
	for i, line := range lines {
		lines[i] = bytes.TrimRight(line, " \t")
	}
	body = bytes.TrimRight(bytes.Join(lines, []byte("\n")), "\n")
	if len(body) > 0 {
		body = append(body, '\n')
	}

	return JoinFrontmatter(front, body, ok), nil
}
