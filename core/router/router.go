package router

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// Default request body ceilings
const (
	DefaultMaxBodyBytes      int64 = 1 << 20
	DefaultMaxMultipartBytes int64 = 32 << 20
)

// HandlerFunc handles a request. A returned error is answered with a 500
// unless the handler already wrote a response.
type HandlerFunc func(*Context) error

// MiddlewareFunc wraps a handler
type MiddlewareFunc func(next HandlerFunc) HandlerFunc

type route struct {
	method   string
	segments []string
	handler  HandlerFunc
	group    *RouterGroup
}

// Router is a small net/http based router with ":param" and "*catchall" segments.
type Router struct {
	routes     []*route
	middleware []MiddlewareFunc
	notFound   HandlerFunc
	root       *RouterGroup

	trustedProxies    []*net.IPNet
	maxBodyBytes      int64
	maxMultipartBytes int64
}

func New() *Router {
	r := &Router{
		maxBodyBytes:      DefaultMaxBodyBytes,
		maxMultipartBytes: DefaultMaxMultipartBytes,
	}
	r.root = &RouterGroup{router: r}
	r.notFound = func(c *Context) error {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	return r
}

// Use adds global middleware applied to every request, including not-found ones
func (r *Router) Use(middleware ...MiddlewareFunc) {
	r.middleware = append(r.middleware, middleware...)
}

// Group creates a route group sharing prefix and middleware
func (r *Router) Group(prefix string, middleware ...MiddlewareFunc) *RouterGroup {
	return r.root.Group(prefix, middleware...)
}

func (r *Router) GET(path string, h HandlerFunc) { r.root.GET(path, h) }
func (r *Router) POST(path string, h HandlerFunc) { r.root.POST(path, h) }
func (r *Router) PUT(path string, h HandlerFunc) { r.root.PUT(path, h) }
func (r *Router) PATCH(path string, h HandlerFunc) { r.root.PATCH(path, h) }
func (r *Router) DELETE(path string, h HandlerFunc) { r.root.DELETE(path, h) }

// SetTrustedProxies lists the IPs or CIDRs whose forwarding headers
// ClientIP honours. With none, ClientIP is always the connection address.
func (r *Router) SetTrustedProxies(proxies []string) error {
	nets := make([]*net.IPNet, 0, len(proxies))
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.Contains(p, "/") {
			ip := net.ParseIP(p)
			if ip == nil {
				return fmt.Errorf("invalid trusted proxy %q", p)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(p)
		if err != nil {
			return fmt.Errorf("invalid trusted proxy %q: %w", p, err)
		}
		nets = append(nets, n)
	}
	r.trustedProxies = nets
	return nil
}

// SetBodyLimits caps JSON and multipart request bodies. Zero keeps the
// current value.
func (r *Router) SetBodyLimits(jsonBytes, multipartBytes int64) {
	if jsonBytes > 0 {
		r.maxBodyBytes = jsonBytes
	}
	if multipartBytes > 0 {
		r.maxMultipartBytes = multipartBytes
	}
}

func (r *Router) isTrustedProxy(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, n := range r.trustedProxies {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// NotFound sets the handler used when no route matches
func (r *Router) NotFound(h HandlerFunc) {
	r.notFound = h
}

// Static serves files from dir under prefix
func (r *Router) Static(prefix, dir string) {
	prefix = "/" + strings.Trim(prefix, "/")
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	r.GET(prefix+"/*filepath", func(c *Context) error {
		fs.ServeHTTP(c.Writer, c.Request)
		return nil
	})
}

func (r *Router) addRoute(method, path string, h HandlerFunc, g *RouterGroup) {
	r.routes = append(r.routes, &route{
		method:   method,
		segments: splitPath(path),
		handler:  h,
		group:    g,
	})
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	c := newContext(w, req)
	c.router = r

	handler := r.notFound
	path := splitPath(req.URL.Path)

	// Static segments win over parameters regardless of registration order
	var best *route
	bestScore := -1
	methodMismatch := false
	for _, rt := range r.routes {
		params, ok := match(rt.segments, path)
		if !ok {
			continue
		}
		if rt.method != req.Method && !(req.Method == http.MethodHead && rt.method == http.MethodGet) {
			methodMismatch = true
			continue
		}
		if score := staticScore(rt.segments); score > bestScore {
			best, bestScore = rt, score
			c.params = params
		}
	}

	if best != nil {
		handler = best.group.wrap(best.handler)
	} else if methodMismatch {
		handler = func(c *Context) error {
			return c.JSON(http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		}
	}

	for i := len(r.middleware) - 1; i >= 0; i-- {
		handler = r.middleware[i](handler)
	}

	if err := handler(c); err != nil && !c.Writer.Written() {
		_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}

// Server returns an http.Server for the router, for callers that need
// graceful shutdown
func (r *Router) Server(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
}

// Run starts an HTTP server on addr
func (r *Router) Run(addr string) error {
	return r.Server(addr).ListenAndServe()
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func staticScore(segments []string) int {
	score := 0
	for _, seg := range segments {
		if !strings.HasPrefix(seg, ":") && !strings.HasPrefix(seg, "*") {
			score += 2
		} else if strings.HasPrefix(seg, ":") {
			score++
		}
	}
	return score
}

func match(pattern, path []string) (map[string]string, bool) {
	var params map[string]string
	for i, seg := range pattern {
		if strings.HasPrefix(seg, "*") {
			if params == nil {
				params = make(map[string]string)
			}
			params[seg[1:]] = strings.Join(path[i:], "/")
			return params, true
		}
		if i >= len(path) {
			return nil, false
		}
		if strings.HasPrefix(seg, ":") {
			if params == nil {
				params = make(map[string]string)
			}
			params[seg[1:]] = path[i]
			continue
		}
		if seg != path[i] {
			return nil, false
		}
	}
	if len(pattern) != len(path) {
		return nil, false
	}
	return params, true
}
