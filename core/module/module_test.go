package module

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"realtor/core/logger"
	"realtor/core/router"

	"github.com/stretchr/testify/assert"
)

type fakeModule struct {
	DefaultModule
	calls      []string
	migrateErr error
}

func (m *fakeModule) Migrate() error {
	m.calls = append(m.calls, "migrate")
	return m.migrateErr
}

func (m *fakeModule) Init() error {
	m.calls = append(m.calls, "init")
	return nil
}

func (m *fakeModule) Routes(g *router.RouterGroup) {
	m.calls = append(m.calls, "routes")
	g.GET("/fake", func(c *router.Context) error { return c.Status(http.StatusTeapot) })
}

type staticProvider map[string]Module

func (p staticProvider) Modules(Dependencies) map[string]Module { return p }

func TestOrchestratorRunsLifecycle(t *testing.T) {
	r := router.New()
	good := &fakeModule{}
	broken := &fakeModule{migrateErr: errors.New("no table")}

	o := NewOrchestrator(NewInitializer(logger.NewNop()), staticProvider{
		"test-good":   good,
		"test-broken": broken,
	})
	initialized := o.Run(Dependencies{Router: r.Group("/api")})

	assert.Len(t, initialized, 1)
	assert.Equal(t, []string{"migrate", "init", "routes"}, good.calls)
	assert.Equal(t, []string{"migrate"}, broken.calls)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fake", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	_, ok := GetModule("test-good")
	assert.True(t, ok)
}

func TestRegisterModuleRejectsDuplicates(t *testing.T) {
	assert.NoError(t, RegisterModule("test-dup", &fakeModule{}))
	assert.Error(t, RegisterModule("test-dup", &fakeModule{}))
}
