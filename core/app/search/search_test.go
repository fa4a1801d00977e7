package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"realtor/core/logger"
	"realtor/core/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(results ...SearchResult) SearchFunc {
	return func(_ context.Context, _ string, _ int) ([]SearchResult, error) {
		return results, nil
	}
}

func newTestRegistry() *SearchRegistry {
	registry := NewSearchRegistry()
	registry.Register("clients", fixed(
		SearchResult{Id: 1, Type: "client", Title: "Ana Ruiz"},
		SearchResult{Id: 2, Type: "client", Title: "Al Ruiz"},
	))
	registry.Register("properties", fixed(SearchResult{Id: 7, Type: "property", Title: "12 Oak St"}))
	registry.Register("broken", func(context.Context, string, int) ([]SearchResult, error) {
		return nil, errors.New("boom")
	})
	return registry
}

func TestGlobalSearch(t *testing.T) {
	s := NewSearchService(logger.NewNop(), newTestRegistry())
	ctx := context.Background()

	res, err := s.GlobalSearch(ctx, "ruiz", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, []string{"clients", "properties"}, res.Modules)

	res, err = s.GlobalSearch(ctx, "ruiz", " clients , unknown", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, []string{"clients"}, res.Modules)
	assert.Len(t, res.Results["clients"], 1)
}

func TestSearchEndpoint(t *testing.T) {
	r := router.New()
	mod := &Module{}
	service := NewSearchService(logger.NewNop(), newTestRegistry())
	mod.Controller = NewSearchController(service)
	mod.Routes(r.Group("/api"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=r", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Search query (q) is required")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=ruiz&modules=properties", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"12 Oak St"`)
	assert.Contains(t, rec.Body.String(), `"total":1`)
}
