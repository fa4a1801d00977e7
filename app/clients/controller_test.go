package clients

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"realtor/app/models"
	"realtor/core/logger"
	"realtor/core/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *router.Router {
	t.Helper()
	s, _ := newTestService(t)
	r := router.New()
	NewClientController(s, logger.NewNop()).Routes(r.Group("/api"))
	return r
}

func do(r *router.Router, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestClientCRUDOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	rec := do(r, http.MethodPost, "/api/clients", `{"first_name":"Ana","last_name":"Ruiz","email":"ana@example.com","budget_max":"2,500","rental_status":"moved_in","tags":["vip"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.ClientResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "moved in", created.RentalLabel)
	require.NotNil(t, created.BudgetMax)
	assert.Equal(t, 2500.0, *created.BudgetMax)

	rec = do(r, http.MethodGet, "/api/clients?q=ruiz+vip", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list models.ClientListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, created.Id, list.Items[0].Id)

	rec = do(r, http.MethodPut, "/api/clients/1", `{"first_name":"Ana","last_name":"Ruiz-Lopez"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"last_name":"Ruiz-Lopez"`)
	assert.Contains(t, rec.Body.String(), `"email":null`)

	rec = do(r, http.MethodDelete, "/api/clients/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = do(r, http.MethodGet, "/api/clients/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())

	rec = do(r, http.MethodGet, "/api/clients", "")
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestClientErrorsOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	rec := do(r, http.MethodPost, "/api/clients", `{"last_name":"Ruiz"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid input")

	rec = do(r, http.MethodPost, "/api/clients", `{"first_name":"Ana","last_name":"Ruiz","email":"bad"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodPost, "/api/clients", `{"first_name":"Ana","last_name":"Ruiz","email":"ana@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(r, http.MethodPost, "/api/clients", `{"first_name":"Ann","last_name":"Other","email":"Ana@Example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"Email already in use"}`, rec.Body.String())

	rec = do(r, http.MethodGet, "/api/clients/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	do(r, http.MethodPost, "/api/clients", `{"first_name":"Ana","last_name":"Ruiz","email":"ana@example.com"}`)

	rec := do(r, http.MethodGet, "/api/clients/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="contacts_emails.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "\"First Name\",\"Last Name\",\"Email\"\n\"Ana\",\"Ruiz\",\"ana@example.com\"", rec.Body.String())
}

func TestIntakeTokenAndEmailsOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	do(r, http.MethodPost, "/api/clients", `{"first_name":"Ana","last_name":"Ruiz","email":"ana@example.com"}`)
	do(r, http.MethodPost, "/api/clients", `{"first_name":"Bo","last_name":"Chen"}`)

	rec := do(r, http.MethodPost, "/api/clients/1/intake-token?send=1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var token models.IntakeTokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &token))
	assert.True(t, token.Ok)
	assert.True(t, token.Sent)
	assert.True(t, strings.HasSuffix(token.URL, "/intake/"+token.Token))

	rec = do(r, http.MethodPost, "/api/clients/2/intake-token?send=1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodPost, "/api/clients/emails", `{"q":"","ids":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"emails":["ana@example.com"],"bcc":"ana@example.com","mailto":"mailto:?bcc=ana%40example.com"}`, rec.Body.String())

	rec = do(r, http.MethodGet, "/api/clients/options", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Bo Chen"`)
}
