package router

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/withgalaxy/adapter-static/pkg/preprocess"
)

type RouteType int

const (
	RouteStatic RouteType = iota
	RouteDynamic
	RouteCatchAll
)

func (t RouteType) String() string {
	switch t {
	case RouteDynamic:
		return "dynamic"
	case RouteCatchAll:
		return "catch-all"
	default:
		return "static"
	}
}

// Route describes one addressable page. Routes are built once by Discover
// and must not be modified afterwards.
type Route struct {
	Pattern    string
	FilePath   string
	Type       RouteType
	ParamNames []string
	Priority   int
	Regex      *regexp.Regexp

	// Prerender is the value declared by the page; nil means the page
	// did not declare one and the configured default applies.
	Prerender *bool
	Entries   []Entry
	Server    bool
	Title     string
	Meta      map[string]interface{}
	Body      string
}

// Dynamic reports whether the pattern contains parameter segments.
func (r *Route) Dynamic() bool {
	return r.Type != RouteStatic
}

func (r *Route) String() string {
	return r.Pattern
}

type Router struct {
	Routes    []*Route
	RoutesDir string

	mu     sync.RWMutex
	sorted []*Route
}

func NewRouter(routesDir string) *Router {
	return &Router{
		Routes:    make([]*Route, 0),
		RoutesDir: routesDir,
	}
}

var (
	catchAllRegex = regexp.MustCompile(`\[\.\.\.(\w+)\]`)
	dynamicRegex  = regexp.MustCompile(`\[(\w+)\]`)
	paramRegex    = regexp.MustCompile(`\[(?:\.\.\.)?(\w+)\]`)

	quotedCatchAll = regexp.MustCompile(`\\\[\\\.\\\.\\\.\w+\\\]`)
	quotedDynamic  = regexp.MustCompile(`\\\[\w+\\\]`)
)

// Discover builds routes from compiled units. Routes keep the order of the
// units, which is the declaration order used for reports and output.
func (r *Router) Discover(units []preprocess.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	routes := make([]*Route, 0, len(units))
	for _, unit := range units {
		route, err := createRoute(unit)
		if err != nil {
			return fmt.Errorf("route %s: %w", unit.RelPath, err)
		}
		routes = append(routes, route)
	}

	r.Routes = routes
	r.sort()
	return nil
}

func createRoute(unit preprocess.Unit) (*Route, error) {
	route := &Route{
		FilePath: unit.FilePath,
	}

	pattern := patternFromPath(unit.RelPath)

	route.Pattern = pattern
	route.Type = RouteStatic
	route.Priority = 100

	switch {
	case catchAllRegex.MatchString(pattern):
		route.Type = RouteCatchAll
		route.Priority = 10
	case dynamicRegex.MatchString(pattern):
		route.Type = RouteDynamic
		route.Priority = 50
	}

	if route.Type != RouteStatic {
		for _, match := range paramRegex.FindAllStringSubmatch(pattern, -1) {
			route.ParamNames = append(route.ParamNames, match[1])
		}
		regexPattern := regexp.QuoteMeta(pattern)
		regexPattern = quotedCatchAll.ReplaceAllString(regexPattern, `(.*)`)
		regexPattern = quotedDynamic.ReplaceAllString(regexPattern, `([^/]+)`)
		route.Regex = regexp.MustCompile("^" + regexPattern + "$")
	}

	front, body, _ := preprocess.SplitFrontmatter(unit.Source)
	route.Body = string(body)

	pm, err := parseMeta(front)
	if err != nil {
		return nil, err
	}
	route.Meta = pm.raw
	route.Prerender = pm.Prerender
	route.Server = pm.Server
	route.Title = pm.Title

	entries, err := normalizeEntries(route, pm.Entries)
	if err != nil {
		return nil, err
	}
	route.Entries = entries

	return route, nil
}

func patternFromPath(relPath string) string {
	pattern := strings.TrimSuffix(relPath, path.Ext(relPath))

	if strings.HasSuffix(pattern, "/index") {
		pattern = strings.TrimSuffix(pattern, "/index")
	}

	if pattern == "index" {
		pattern = ""
	}

	if pattern == "" {
		return "/"
	}
	return "/" + pattern
}

// Sorted returns the routes ordered by match priority.
func (r *Router) Sorted() []*Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Route(nil), r.sorted...)
}

func (r *Router) Match(p string) (*Route, map[string]string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, route := range r.sorted {
		if params := matchRoute(route, p); params != nil {
			return route, params
		}
	}
	return nil, nil
}

func matchRoute(route *Route, p string) map[string]string {
	if route.Type == RouteStatic {
		if route.Pattern == p {
			return make(map[string]string)
		}
		return nil
	}

	if route.Regex == nil {
		return nil
	}

	matches := route.Regex.FindStringSubmatch(p)
	if matches == nil {
		return nil
	}

	params := make(map[string]string)
	for i, name := range route.ParamNames {
		if i+1 < len(matches) {
			params[name] = matches[i+1]
		}
	}

	return params
}

func (r *Router) sort() {
	r.sorted = append([]*Route(nil), r.Routes...)
	sort.SliceStable(r.sorted, func(i, j int) bool {
		if r.sorted[i].Priority != r.sorted[j].Priority {
			return r.sorted[i].Priority > r.sorted[j].Priority
		}
		return r.sorted[i].Pattern < r.sorted[j].Pattern
	})
}

func (r *Router) String() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString("=== Router ===\n")
	sb.WriteString(fmt.Sprintf("Routes Dir: %s\n", r.RoutesDir))
	sb.WriteString(fmt.Sprintf("Routes: %d\n\n", len(r.Routes)))

	for _, route := range r.Routes {
		sb.WriteString(fmt.Sprintf("  %s [%s] (priority: %d)\n", route.Pattern, route.Type, route.Priority))
		if len(route.ParamNames) > 0 {
			sb.WriteString(fmt.Sprintf("    params: %v\n", route.ParamNames))
		}
		if len(route.Entries) > 0 {
			sb.WriteString(fmt.Sprintf("    entries: %d\n", len(route.Entries)))
		}
	}

	return sb.String()
}
