package render

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	HeadPlaceholder = "%app.head%"
	BodyPlaceholder = "%app.body%"
)

const defaultShell = `<!doctype html>
<html lang="en">
	<head>
		<meta charset="utf-8" />
		<meta name="viewport" content="width=device-width, initial-scale=1" />
		%app.head%
	</head>
	<body>
		<div id="app">%app.body%</div>
	</body>
</html>
`

// Shell is the application document every page and the fallback are
// wrapped in.
type Shell struct {
	Source string
}

func DefaultShell() *Shell {
	return &Shell{Source: defaultShell}
}

// LoadShell reads the application template, falling back to the built-in
// shell when the file does not exist.
func LoadShell(path string) (*Shell, error) {
	if path == "" {
		return DefaultShell(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultShell(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read app template: %w", err)
	}

	return ParseShell(string(data))
}

func ParseShell(src string) (*Shell, error) {
	for _, p := range []string{HeadPlaceholder, BodyPlaceholder} {
		if strings.Count(src, p) != 1 {
			return nil, fmt.Errorf("app template must contain %s exactly once", p)
		}
	}
	return &Shell{Source: src}, nil
}

func (s *Shell) Wrap(head, body string) []byte {
	out := strings.Replace(s.Source, HeadPlaceholder, head, 1)
	out = strings.Replace(out, BodyPlaceholder, body, 1)
	return []byte(out)
}
