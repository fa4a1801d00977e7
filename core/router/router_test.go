package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(r *Router, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestStaticSegmentsBeatParams(t *testing.T) {
	r := New()
	api := r.Group("/api")
	api.GET("/clients/:id", func(c *Context) error {
		return c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
	})
	api.GET("/clients/export", func(c *Context) error {
		return c.Data(http.StatusOK, "text/csv", []byte("export"))
	})

	rec := serve(r, http.MethodGet, "/api/clients/export", "")
	assert.Equal(t, "export", rec.Body.String())

	rec = serve(r, http.MethodGet, "/api/clients/42", "")
	assert.JSONEq(t, `{"id":"42"}`, rec.Body.String())
}

func TestGroupMiddlewareOrder(t *testing.T) {
	r := New()
	var trace []string
	mark := func(name string) MiddlewareFunc {
		return func(next HandlerFunc) HandlerFunc {
			return func(c *Context) error {
				trace = append(trace, name)
				return next(c)
			}
		}
	}

	r.Use(mark("global"))
	api := r.Group("/api", mark("api"))
	admin := api.Group("/admin")
	admin.GET("/ping", func(c *Context) error {
		trace = append(trace, "handler")
		return c.Status(http.StatusNoContent)
	})
	admin.Use(mark("admin"))

	rec := serve(r, http.MethodGet, "/api/admin/ping", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"global", "api", "admin", "handler"}, trace)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	r := New()
	r.POST("/login", func(c *Context) error { return c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/missing", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(r, http.MethodGet, "/login", "").Code)
}

func TestHandlerErrorBecomes500(t *testing.T) {
	r := New()
	r.GET("/boom", func(c *Context) error { return errors.New("db down") })

	rec := serve(r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestShouldBindJSONValidates(t *testing.T) {
	type payload struct {
		FirstName string `json:"first_name" binding:"required"`
		ForType   string `json:"for_type" binding:"omitempty,oneof=SALE RENT"`
	}

	r := New()
	r.POST("/bind", func(c *Context) error {
		var p payload
		if err := c.ShouldBindJSON(&p); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, p)
	})

	rec := serve(r, http.MethodPost, "/bind", `{"for_type":"LEASE"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "first_name is required")
	assert.Contains(t, rec.Body.String(), "for_type must be one of")

	rec = serve(r, http.MethodPost, "/bind", `{"first_name":"Ana","for_type":"RENT"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(r, http.MethodPost, "/bind", ``)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatchAllParam(t *testing.T) {
	r := New()
	r.GET("/files/*filepath", func(c *Context) error {
		return c.Data(http.StatusOK, "text/plain", []byte(c.Param("filepath")))
	})

	rec := serve(r, http.MethodGet, "/files/listings/a/b.jpg", "")
	assert.Equal(t, "listings/a/b.jpg", rec.Body.String())
}

func clientIPOf(t *testing.T, proxies []string, remote string, headers map[string]string) string {
	t.Helper()
	r := New()
	require.NoError(t, r.SetTrustedProxies(proxies))

	var ip string
	r.GET("/ip", func(c *Context) error {
		ip = c.ClientIP()
		return nil
	})
	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = remote
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(httptest.NewRecorder(), req)
	return ip
}

func TestClientIPIgnoresForwardingFromUntrustedPeers(t *testing.T) {
	assert.Equal(t, "198.51.100.7", clientIPOf(t, nil, "198.51.100.7:1234", map[string]string{
		"X-Forwarded-For": "203.0.113.9",
		"X-Real-IP":       "203.0.113.10",
	}))
}

func TestClientIPBehindTrustedProxy(t *testing.T) {
	proxies := []string{"10.0.0.0/8", "127.0.0.1"}

	assert.Equal(t, "203.0.113.9", clientIPOf(t, proxies, "10.0.0.5:1234", map[string]string{
		"X-Forwarded-For": "198.51.100.1, 203.0.113.9, 10.0.0.2",
	}))
	assert.Equal(t, "203.0.113.10", clientIPOf(t, proxies, "127.0.0.1:80", map[string]string{
		"X-Real-IP": "203.0.113.10",
	}))
	assert.Equal(t, "127.0.0.1", clientIPOf(t, proxies, "127.0.0.1:80", map[string]string{
		"X-Forwarded-For": "not-an-ip",
	}))

	assert.Error(t, New().SetTrustedProxies([]string{"proxy.local"}))
}

func TestBodyLimits(t *testing.T) {
	r := New()
	r.SetBodyLimits(64, 0)
	r.POST("/echo", func(c *Context) error {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			if errors.Is(err, ErrBodyTooLarge) {
				return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
			}
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, body)
	})

	rec := serve(r, http.MethodPost, "/echo", `{"a":"b"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(r, http.MethodPost, "/echo", `{"a":"`+strings.Repeat("x", 200)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"error":"request body too large"}`, rec.Body.String())
}
