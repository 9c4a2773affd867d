package preprocess

import (
	"fmt"
)

// Manager holds the registered transforms and the ordered subset enabled by
// configuration.
type Manager struct {
	registry   map[string]Transform
	transforms []Transform
}

func NewManager() *Manager {
	return &Manager{
		registry:   make(map[string]Transform),
		transforms: []Transform{},
	}
}

// NewDefaultManager registers the built-in transforms.
func NewDefaultManager() *Manager {
	m := NewManager()
	m.Register(NewMarkdown(""))
	m.Register(NewHTML())
	return m
}

func (m *Manager) Register(t Transform) {
	m.registry[t.Name()] = t
}

// Load enables the named transforms in order. Unknown names are an error.
func (m *Manager) Load(names []string) error {
	m.transforms = m.transforms[:0]
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		t, exists := m.registry[name]
		if !exists {
			return fmt.Errorf("unknown preprocessor: %s", name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		m.transforms = append(m.transforms, t)
	}
	return nil
}

// Handles reports whether any enabled transform accepts the file.
func (m *Manager) Handles(filename string) bool {
	for _, t := range m.transforms {
		if t.Match(filename) {
			return true
		}
	}
	return false
}

// Apply runs every matching transform in order, feeding each the previous
// output.
func (m *Manager) Apply(filename string, src []byte) ([]byte, error) {
	out := src
	for _, t := range m.transforms {
		if !t.Match(filename) {
			continue
		}
		transformed, err := t.Transform(filename, out)
		if err != nil {
			return nil, &PreprocessError{File: filename, Transform: t.Name(), Err: err}
		}
		out = transformed
	}
	return out, nil
}

func (m *Manager) Transforms() []Transform {
	return m.transforms
}

func (m *Manager) key() string {
	k := ""
	for _, t := range m.transforms {
		k += t.Name() + ","
	}
	return k
}
