package router

import (
	"net/http"
	"strings"
)

// RouterGroup registers routes under a shared prefix and middleware chain.
// Middleware added with Use applies to routes registered before and after the call.
type RouterGroup struct {
	router     *Router
	parent     *RouterGroup
	prefix     string
	middleware []MiddlewareFunc
}

// Group creates a child group
func (g *RouterGroup) Group(prefix string, middleware ...MiddlewareFunc) *RouterGroup {
	return &RouterGroup{
		router:     g.router,
		parent:     g,
		prefix:     joinPath(g.prefix, prefix),
		middleware: middleware,
	}
}

// Use appends middleware to the group
func (g *RouterGroup) Use(middleware ...MiddlewareFunc) {
	g.middleware = append(g.middleware, middleware...)
}

// Prefix returns the full path prefix of the group
func (g *RouterGroup) Prefix() string {
	return g.prefix
}

func (g *RouterGroup) GET(path string, h HandlerFunc) {
	g.router.addRoute(http.MethodGet, joinPath(g.prefix, path), h, g)
}

func (g *RouterGroup) POST(path string, h HandlerFunc) {
	g.router.addRoute(http.MethodPost, joinPath(g.prefix, path), h, g)
}

func (g *RouterGroup) PUT(path string, h HandlerFunc) {
	g.router.addRoute(http.MethodPut, joinPath(g.prefix, path), h, g)
}

func (g *RouterGroup) PATCH(path string, h HandlerFunc) {
	g.router.addRoute(http.MethodPatch, joinPath(g.prefix, path), h, g)
}

func (g *RouterGroup) DELETE(path string, h HandlerFunc) {
	g.router.addRoute(http.MethodDelete, joinPath(g.prefix, path), h, g)
}

// wrap applies the middleware of this group and its ancestors, outermost first
func (g *RouterGroup) wrap(h HandlerFunc) HandlerFunc {
	for group := g; group != nil; group = group.parent {
		for i := len(group.middleware) - 1; i >= 0; i-- {
			h = group.middleware[i](h)
		}
	}
	return h
}

func joinPath(prefix, path string) string {
	joined := strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(path, "/")
	if joined != "/" {
		joined = strings.TrimRight(joined, "/")
	}
	return joined
}
