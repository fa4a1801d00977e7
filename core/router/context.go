package router

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// maxMultipartMemory bounds the in-memory part of multipart parsing
const maxMultipartMemory = 32 << 20

// ErrBodyTooLarge is returned by ShouldBindJSON and FormFile when the body
// exceeds the router's limit
var ErrBodyTooLarge = errors.New("request body too large")

// ResponseWriter records the status code written by a handler
type ResponseWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *ResponseWriter) WriteHeader(code int) {
	if w.written {
		return
	}
	w.status = code
	w.written = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Status returns the written status, 200 when nothing was written yet
func (w *ResponseWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// Written reports whether headers were sent
func (w *ResponseWriter) Written() bool {
	return w.written
}

// Hijack lets websocket upgrades take over the connection
func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.written = true
	return h.Hijack()
}

// Unwrap exposes the underlying writer to http.ResponseController
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Flush forwards to the underlying writer when supported
func (w *ResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Context carries a single request through middleware and handlers
type Context struct {
	Request *http.Request
	Writer  *ResponseWriter
	params  map[string]string
	values  map[string]any
	router  *Router
}

func newContext(w http.ResponseWriter, req *http.Request) *Context {
	return &Context{
		Request: req,
		Writer:  &ResponseWriter{ResponseWriter: w},
	}
}

// Param returns a path parameter
func (c *Context) Param(name string) string {
	return c.params[name]
}

// Query returns a query string value
func (c *Context) Query(name string) string {
	return c.Request.URL.Query().Get(name)
}

// DefaultQuery returns a query value or fallback when missing
func (c *Context) DefaultQuery(name, fallback string) string {
	if v := c.Query(name); v != "" {
		return v
	}
	return fallback
}

// QueryInt parses an integer query value. ok is false when absent.
func (c *Context) QueryInt(name string) (value int, ok bool, err error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false, nil
	}
	value, err = strconv.Atoi(raw)
	if err != nil {
		return 0, true, fmt.Errorf("invalid %s", name)
	}
	return value, true, nil
}

// GetHeader returns a request header
func (c *Context) GetHeader(name string) string {
	return c.Request.Header.Get(name)
}

// Header sets a response header
func (c *Context) Header(name, value string) {
	c.Writer.Header().Set(name, value)
}

// Set stores a value for the lifetime of the request
func (c *Context) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	c.values[key] = value
}

// Get retrieves a value stored with Set
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// GetString retrieves a string stored with Set
func (c *Context) GetString(key string) string {
	if v, ok := c.values[key].(string); ok {
		return v
	}
	return ""
}

// ClientIP returns the caller address. Forwarding headers are honoured only
// when the connection comes from a trusted proxy; X-Forwarded-For is walked
// right to left, skipping trusted hops.
func (c *Context) ClientIP() string {
	remote := c.Request.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}
	if c.router == nil || !c.router.isTrustedProxy(net.ParseIP(remote)) {
		return remote
	}

	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		hops := strings.Split(fwd, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			ip := net.ParseIP(hop)
			if ip == nil {
				break
			}
			if i == 0 || !c.router.isTrustedProxy(ip) {
				return hop
			}
		}
	}
	if ip := strings.TrimSpace(c.GetHeader("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}
	return remote
}

func (c *Context) limitBody(limit int64) {
	if c.Request.Body != nil && limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
}

func bodyLimitError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return ErrBodyTooLarge
	}
	return nil
}

// Cookie returns the named cookie value
func (c *Context) Cookie(name string) (string, error) {
	cookie, err := c.Request.Cookie(name)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// SetCookie adds a Set-Cookie header
func (c *Context) SetCookie(cookie *http.Cookie) {
	http.SetCookie(c.Writer, cookie)
}

// JSON writes v as JSON with the given status
func (c *Context) JSON(code int, v any) error {
	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Writer.WriteHeader(code)
	return json.NewEncoder(c.Writer).Encode(v)
}

// Data writes raw bytes with a content type
func (c *Context) Data(code int, contentType string, data []byte) error {
	c.Header("Content-Type", contentType)
	c.Writer.WriteHeader(code)
	_, err := c.Writer.Write(data)
	return err
}

// Status writes only a status code
func (c *Context) Status(code int) error {
	c.Writer.WriteHeader(code)
	return nil
}

// Redirect answers with a Location header
func (c *Context) Redirect(code int, location string) error {
	http.Redirect(c.Writer, c.Request, location, code)
	return nil
}

// ShouldBindJSON decodes the body into obj and validates its binding tags
func (c *Context) ShouldBindJSON(obj any) error {
	if c.Request.Body == nil {
		return errors.New("request body is empty")
	}
	if c.router != nil {
		c.limitBody(c.router.maxBodyBytes)
	}
	dec := json.NewDecoder(c.Request.Body)
	if err := dec.Decode(obj); err != nil {
		if tooLarge := bodyLimitError(err); tooLarge != nil {
			return tooLarge
		}
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return Validate(obj)
}

// FormFile returns the uploaded file under name
func (c *Context) FormFile(name string) (*multipart.FileHeader, error) {
	if c.Request.MultipartForm == nil {
		if c.router != nil {
			c.limitBody(c.router.maxMultipartBytes)
		}
		if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
			if tooLarge := bodyLimitError(err); tooLarge != nil {
				return nil, tooLarge
			}
			return nil, err
		}
	}
	files := c.Request.MultipartForm.File[name]
	if len(files) == 0 {
		return nil, http.ErrMissingFile
	}
	return files[0], nil
}
