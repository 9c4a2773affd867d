package router

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one concrete parameter binding for a dynamic route.
type Entry map[string]string

// Instance is a concrete, renderable path produced by a route.
type Instance struct {
	Route  *Route
	Path   string
	Params map[string]string
}

type pageMeta struct {
	Title     string        `yaml:"title"`
	Prerender *bool         `yaml:"prerender"`
	Server    bool          `yaml:"server"`
	Entries   []interface{} `yaml:"entries"`

	raw map[string]interface{}
}

func parseMeta(front []byte) (pageMeta, error) {
	var pm pageMeta
	if len(strings.TrimSpace(string(front))) == 0 {
		pm.raw = map[string]interface{}{}
		return pm, nil
	}

	if err := yaml.Unmarshal(front, &pm); err != nil {
		return pm, fmt.Errorf("parse frontmatter: %w", err)
	}
	if err := yaml.Unmarshal(front, &pm.raw); err != nil {
		return pm, fmt.Errorf("parse frontmatter: %w", err)
	}
	if pm.raw == nil {
		pm.raw = map[string]interface{}{}
	}
	return pm, nil
}

// normalizeEntries accepts either a list of mappings or, for routes with a
// single parameter, a list of scalar values.
func normalizeEntries(route *Route, raw []interface{}) ([]Entry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if !route.Dynamic() {
		return nil, fmt.Errorf("entries declared on non-dynamic route %s", route.Pattern)
	}

	entries := make([]Entry, 0, len(raw))
	for i, item := range raw {
		entry := Entry{}
		switch v := item.(type) {
		case map[string]interface{}:
			for k, val := range v {
				entry[k] = fmt.Sprint(val)
			}
		case string, int, float64, bool:
			if len(route.ParamNames) != 1 {
				return nil, fmt.Errorf("entry %d: scalar entries need exactly one parameter, %s has %d", i, route.Pattern, len(route.ParamNames))
			}
			entry[route.ParamNames[0]] = fmt.Sprint(v)
		default:
			return nil, fmt.Errorf("entry %d: unsupported entry type %T", i, item)
		}

		for _, name := range route.ParamNames {
			if _, ok := entry[name]; !ok {
				return nil, fmt.Errorf("entry %d: missing parameter %q for %s", i, name, route.Pattern)
			}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Instances expands the route into concrete paths: the pattern itself for a
// static route, one per entry for a dynamic route.
func (r *Route) Instances() ([]Instance, error) {
	if !r.Dynamic() {
		return []Instance{{Route: r, Path: r.Pattern, Params: map[string]string{}}}, nil
	}

	instances := make([]Instance, 0, len(r.Entries))
	for _, entry := range r.Entries {
		p, err := r.Resolve(entry)
		if err != nil {
			return nil, err
		}
		params := make(map[string]string, len(entry))
		for k, v := range entry {
			params[k] = v
		}
		instances = append(instances, Instance{Route: r, Path: p, Params: params})
	}
	return instances, nil
}

// Resolve substitutes params into the pattern.
func (r *Route) Resolve(params map[string]string) (string, error) {
	var resolveErr error

	p := catchAllRegex.ReplaceAllStringFunc(r.Pattern, func(seg string) string {
		name := catchAllRegex.FindStringSubmatch(seg)[1]
		val, ok := params[name]
		if !ok {
			resolveErr = fmt.Errorf("missing parameter %q for %s", name, r.Pattern)
			return ""
		}
		val = strings.Trim(val, "/")
		for _, part := range strings.Split(val, "/") {
			if part == "." || part == ".." {
				resolveErr = fmt.Errorf("invalid value %q for parameter %q of %s", val, name, r.Pattern)
			}
		}
		return val
	})

	p = dynamicRegex.ReplaceAllStringFunc(p, func(seg string) string {
		name := dynamicRegex.FindStringSubmatch(seg)[1]
		val, ok := params[name]
		switch {
		case !ok:
			resolveErr = fmt.Errorf("missing parameter %q for %s", name, r.Pattern)
		case val == "" || val == "." || val == ".." || strings.Contains(val, "/"):
			resolveErr = fmt.Errorf("invalid value %q for parameter %q of %s", val, name, r.Pattern)
		}
		return val
	})

	if resolveErr != nil {
		return "", resolveErr
	}

	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p, nil
}

// String renders an entry deterministically, for logs and reports.
func (e Entry) String() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+e[k])
	}
	return strings.Join(parts, ",")
}
