package router

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
)

// Route maps a path template to a view template.
//
// Pattern uses gorilla/mux syntax; named variables become the route's
// params, e.g. "/graphs/{id:[0-9a-fA-F-]+}/edit" yields params["id"].
type Route struct {
	Name     string
	Pattern  string
	Template string

	matcher *mux.Route
}

// Match is the result of resolving a path.
type Match struct {
	Route  Route
	Params map[string]string
	// Found is false when the not-found route was returned.
	Found bool
}

func compile(pattern string) (*mux.Route, error) {
	r := mux.NewRouter().Path(pattern)
	if err := r.GetError(); err != nil {
		return nil, fmt.Errorf("invalid route pattern %q: %w", pattern, err)
	}
	return r, nil
}

func matchPath(r *mux.Route, path string) (map[string]string, bool) {
	if r == nil {
		return nil, false
	}
	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: path}}
	var m mux.RouteMatch
	if !r.Match(req, &m) {
		return nil, false
	}
	if m.Vars == nil {
		m.Vars = map[string]string{}
	}
	return m.Vars, true
}

// RouteTable is an ordered, immutable list of routes plus the not-found route.
type RouteTable struct {
	routes   []Route
	notFound Route
}

// NewRouteTable compiles the routes. Order matters: the first match wins.
func NewRouteTable(notFound Route, routes ...Route) (*RouteTable, error) {
	compiled := make([]Route, 0, len(routes))
	seen := make(map[string]struct{}, len(routes))
	for _, rt := range routes {
		if rt.Name == "" || rt.Template == "" {
			return nil, fmt.Errorf("route %q needs a name and a template", rt.Pattern)
		}
		if _, dup := seen[rt.Name]; dup {
			return nil, fmt.Errorf("duplicate route name %q", rt.Name)
		}
		seen[rt.Name] = struct{}{}

		m, err := compile(rt.Pattern)
		if err != nil {
			return nil, err
		}
		rt.matcher = m
		compiled = append(compiled, rt)
	}
	if notFound.Template == "" {
		return nil, fmt.Errorf("not-found route needs a template")
	}
	notFound.matcher = nil
	return &RouteTable{routes: compiled, notFound: notFound}, nil
}

// Resolve returns the first route matching path, or the not-found route.
func (t *RouteTable) Resolve(path string) Match {
	for _, rt := range t.routes {
		if params, ok := matchPath(rt.matcher, path); ok {
			return Match{Route: rt, Params: params, Found: true}
		}
	}
	return Match{Route: t.notFound, Params: map[string]string{}}
}

// Routes returns the routes in resolution order.
func (t *RouteTable) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// NotFound returns the reserved not-found route.
func (t *RouteTable) NotFound() Route {
	return t.notFound
}

// PrivateRule marks paths that require a session.
type PrivateRule struct {
	exact   string
	pattern string
	matcher *mux.Route
}

// Exact matches one path literally.
func Exact(path string) PrivateRule {
	return PrivateRule{exact: path}
}

// Pattern matches a gorilla/mux path template.
func Pattern(pattern string) (PrivateRule, error) {
	m, err := compile(pattern)
	if err != nil {
		return PrivateRule{}, err
	}
	return PrivateRule{pattern: pattern, matcher: m}, nil
}

// MustPattern is Pattern for static rule tables.
func MustPattern(pattern string) PrivateRule {
	rule, err := Pattern(pattern)
	if err != nil {
		panic(err)
	}
	return rule
}

// Matches reports whether the rule covers path.
func (r PrivateRule) Matches(path string) bool {
	if r.matcher == nil {
		return r.exact != "" && r.exact == path
	}
	_, ok := matchPath(r.matcher, path)
	return ok
}

func (r PrivateRule) String() string {
	if r.matcher != nil {
		return r.pattern
	}
	return r.exact
}
