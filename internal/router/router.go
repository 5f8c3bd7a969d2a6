// ABOUTME: Route table for the exam client's screens
// ABOUTME: Resolves paths with :param segments and runs the guard on navigation

package router

import (
	"strings"
)

// Route names
const (
	RouteHome     = "home"
	RouteLogin    = "login"
	RouteRegister = "register"
	RouteExams    = "exams"
	RouteExam     = "exam"
	RouteNotFound = "not-found"
)

// Route is one entry of the route table
type Route struct {
	Name    string
	Pattern string
	Policy  Policy
}

// DefaultRoutes is the client's route table
var DefaultRoutes = []Route{
	{Name: RouteHome, Pattern: "/", Policy: RequiresAuth},
	{Name: RouteLogin, Pattern: "/login", Policy: GuestOnly},
	{Name: RouteRegister, Pattern: "/register", Policy: GuestOnly},
	{Name: RouteExams, Pattern: "/exams", Policy: RequiresAuth},
	{Name: RouteExam, Pattern: "/exam/:id", Policy: RequiresAuth},
}

// Match is a resolved path: the route it matched and its parameters
type Match struct {
	Route  Route
	Path   string
	Params map[string]string
}

// Param returns the named path parameter
func (m Match) Param(name string) string {
	return m.Params[name]
}

// Intent is a requested path with its resolved policy
type Intent struct {
	Path   string
	Policy Policy
}

// Router matches paths against a route table.
// It holds no session state; callers supply the authenticated flag.
type Router struct {
	routes []Route
}

// New creates a router over routes, or DefaultRoutes when none are given
func New(routes ...Route) *Router {
	if len(routes) == 0 {
		routes = DefaultRoutes
	}
	return &Router{routes: routes}
}

// Routes returns the route table
func (r *Router) Routes() []Route {
	return r.routes
}

// Resolve finds the route for path. Unknown paths resolve to a public
// not-found route.
func (r *Router) Resolve(path string) Match {
	path = normalize(path)
	for _, route := range r.routes {
		if params, ok := matchPattern(route.Pattern, path); ok {
			return Match{Route: route, Path: path, Params: params}
		}
	}
	return Match{
		Route: Route{Name: RouteNotFound, Pattern: path, Policy: Public},
		Path:  path,
	}
}

// Intent resolves path into a navigation intent
func (r *Router) Intent(path string) Intent {
	m := r.Resolve(path)
	return Intent{Path: m.Path, Policy: m.Route.Policy}
}

// Navigate resolves path and evaluates the guard for it
func (r *Router) Navigate(authenticated bool, path string) (Decision, Match) {
	m := r.Resolve(path)
	return Guard(authenticated, m.Route.Policy), m
}

// Destination follows a redirect one hop and returns the match that will
// actually be shown. Redirect targets are never themselves redirected for the
// same session, so one hop is enough.
func (r *Router) Destination(authenticated bool, path string) (Decision, Match) {
	decision, m := r.Navigate(authenticated, path)
	if decision.Proceed {
		return decision, m
	}
	return decision, r.Resolve(decision.Target)
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

func matchPattern(pattern, path string) (map[string]string, bool) {
	if pattern == path {
		return nil, true
	}

	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return nil, false
	}

	var params map[string]string
	for i, seg := range want {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			if got[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[name] = got[i]
			continue
		}
		if seg != got[i] {
			return nil, false
		}
	}
	return params, true
}
