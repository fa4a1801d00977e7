package intake

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"realtor/app/models"
	"realtor/core/database"
	"realtor/core/emitter"
	"realtor/core/logger"
	"realtor/core/ratelimit"
	"realtor/core/router"
	"realtor/core/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T, ttl time.Duration) (*IntakeService, *gorm.DB) {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:", gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Client{}))
	return NewIntakeService(db, emitter.New(), logger.NewNop(), ttl), db
}

func decode(t *testing.T, body string) *models.IntakeRequest {
	t.Helper()
	var req models.IntakeRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func issue(t *testing.T, db *gorm.DB, id uint, token string, at time.Time) {
	t.Helper()
	require.NoError(t, db.Model(&models.Client{}).Where("id = ?", id).Updates(map[string]any{
		"intake_token":           token,
		"intake_token_issued_at": at.UTC(),
	}).Error)
}

func TestSubmitDedupesByEmail(t *testing.T) {
	s, db := newTestService(t, 0)
	ctx := context.Background()

	first, err := s.Submit(ctx, decode(t, `{"first_name":"Ana","last_name":"Ruiz","email":"ana@example.com","phone":"555"}`), "")
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := s.Submit(ctx, decode(t, `{"first_name":"Anna","last_name":"Ruiz-Lopez","email":"ANA@example.com"}`), "")
	require.NoError(t, err)
	assert.True(t, second.Updated)
	assert.Equal(t, first.Id, second.Id)

	var all []models.Client
	require.NoError(t, db.Find(&all).Error)
	require.Len(t, all, 1)
	assert.Equal(t, "Anna", all[0].FirstName)
	assert.Equal(t, "Ruiz-Lopez", all[0].LastName)
	assert.Nil(t, all[0].Phone, "open intake replaces optional fields")
}

func TestSubmitRestoresArchivedClient(t *testing.T) {
	s, db := newTestService(t, 0)
	ctx := context.Background()

	res, err := s.Submit(ctx, decode(t, `{"first_name":"Ana","last_name":"Ruiz","email":"ana@example.com"}`), "")
	require.NoError(t, err)
	require.NoError(t, db.Delete(&models.Client{}, res.Id).Error)

	again, err := s.Submit(ctx, decode(t, `{"first_name":"Ana","last_name":"Ruiz","email":"ana@example.com","rental_status":"applied"}`), "")
	require.NoError(t, err)
	assert.True(t, again.Updated)

	var got models.Client
	require.NoError(t, db.First(&got, res.Id).Error)
	assert.False(t, got.Archived())
	assert.Equal(t, models.RentalApplied, got.RentalStatus)
}

func TestSubmitWithoutEmailAlwaysCreates(t *testing.T) {
	s, db := newTestService(t, 0)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := s.Submit(ctx, decode(t, `{"first_name":"Bo","last_name":"Chen"}`), "Maria")
		require.NoError(t, err)
		assert.True(t, res.Created)
	}

	var all []models.Client
	require.NoError(t, db.Find(&all).Error)
	require.Len(t, all, 2)
	require.NotNil(t, all[0].Agent)
	assert.Equal(t, "Maria", *all[0].Agent)
}

func TestSubmitValidation(t *testing.T) {
	s, _ := newTestService(t, 0)
	ctx := context.Background()

	_, err := s.Submit(ctx, decode(t, `{"first_name":"Ana"}`), "")
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, "First and last name are required.", err.Error())

	_, err = s.Submit(ctx, decode(t, `{"first_name":"Ana","last_name":"Ruiz","email":"nope"}`), "")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestTokenFlow(t *testing.T) {
	s, db := newTestService(t, 0)
	ctx := context.Background()

	ana := models.Client{FirstName: "Ana", LastName: "Ruiz", Email: types.Some("ana@example.com").Value,
		Phone: types.Some("555").Value, RentalStatus: models.RentalNone}
	require.NoError(t, db.Create(&ana).Error)
	bo := models.Client{FirstName: "Bo", LastName: "Chen", Email: types.Some("bo@example.com").Value, RentalStatus: models.RentalNone}
	require.NoError(t, db.Create(&bo).Error)
	issue(t, db, ana.Id, "tok-ana", time.Now())

	prefill, err := s.Prefill(ctx, "tok-ana")
	require.NoError(t, err)
	assert.Equal(t, "Ana", prefill.FirstName)

	_, err = s.SubmitWithToken(ctx, "tok-ana", decode(t, `{"email":"bo@example.com"}`))
	assert.ErrorIs(t, err, models.ErrEmailConflict)

	res, err := s.SubmitWithToken(ctx, "tok-ana", decode(t, `{"last_name":"Ruiz-Lopez","looking_for":"condo"}`))
	require.NoError(t, err)
	assert.Equal(t, ana.Id, res.Id)

	var got models.Client
	require.NoError(t, db.First(&got, ana.Id).Error)
	assert.Equal(t, "Ruiz-Lopez", got.LastName)
	assert.Equal(t, "555", *got.Phone, "absent fields are kept")
	assert.Equal(t, "ana@example.com", *got.Email)
	assert.Equal(t, "condo", *got.LookingFor)
	assert.Nil(t, got.IntakeToken)

	_, err = s.Prefill(ctx, "tok-ana")
	assert.ErrorIs(t, err, models.ErrNotFound, "token is single use")
	_, err = s.Prefill(ctx, "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestArchivedTokenHolderIsNotFound(t *testing.T) {
	s, db := newTestService(t, 0)

	c := models.Client{FirstName: "Ana", LastName: "Ruiz", RentalStatus: models.RentalNone}
	require.NoError(t, db.Create(&c).Error)
	issue(t, db, c.Id, "tok", time.Now())
	require.NoError(t, db.Delete(&c).Error)

	_, err := s.Prefill(context.Background(), "tok")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTokensExpire(t *testing.T) {
	s, db := newTestService(t, time.Hour)
	ctx := context.Background()

	fresh := models.Client{FirstName: "Ana", LastName: "Ruiz", RentalStatus: models.RentalNone}
	stale := models.Client{FirstName: "Bo", LastName: "Chen", RentalStatus: models.RentalNone}
	require.NoError(t, db.Create(&fresh).Error)
	require.NoError(t, db.Create(&stale).Error)
	issue(t, db, fresh.Id, "fresh", time.Now())
	issue(t, db, stale.Id, "stale", time.Now().Add(-2*time.Hour))

	_, err := s.Prefill(ctx, "stale")
	assert.ErrorIs(t, err, models.ErrNotFound)

	n, err := s.ExpireTokens(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.Prefill(ctx, "fresh")
	assert.NoError(t, err)
}

func TestPublicRoutes(t *testing.T) {
	s, db := newTestService(t, 0)
	r := router.New()
	NewIntakeController(s, logger.NewNop()).Routes(r.Group("/api/public"), ratelimit.Middleware(ratelimit.NewMemoryLimiter(3), logger.NewNop()))

	post := func(target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := post("/api/public/intake?agent=Maria", `{"first_name":"Ana","last_name":"Ruiz","email":"ana@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"ok":true,"id":1,"created":true}`, rec.Body.String())

	rec = post("/api/public/intake", `{"first_name":"Ana"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"First and last name are required."}`, rec.Body.String())

	issue(t, db, 1, "tok", time.Now())
	req := httptest.NewRequest(http.MethodGet, "/api/public/intake/tok", nil)
	get := httptest.NewRecorder()
	r.ServeHTTP(get, req)
	require.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, "no-store", get.Header().Get("Cache-Control"))
	assert.Contains(t, get.Body.String(), `"agent":"Maria"`)

	req = httptest.NewRequest(http.MethodGet, "/api/public/intake/missing", nil)
	get = httptest.NewRecorder()
	r.ServeHTTP(get, req)
	assert.Equal(t, http.StatusNotFound, get.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, get.Body.String())

	rec = post("/api/public/intake", `{"first_name":"Ana","last_name":"Ruiz"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = post("/api/public/intake", `{"first_name":"Ana","last_name":"Ruiz"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestOversizedIntakeBodyIsRejected(t *testing.T) {
	s, db := newTestService(t, 0)
	r := router.New()
	r.SetBodyLimits(256, 0)
	NewIntakeController(s, logger.NewNop()).Routes(r.Group("/api/public"))

	body := `{"first_name":"Ana","last_name":"Ruiz","looking_for":"` + strings.Repeat("x", 1024) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/public/intake", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"error":"Request too large"}`, rec.Body.String())

	var count int64
	require.NoError(t, db.Model(&models.Client{}).Count(&count).Error)
	assert.Zero(t, count)
}
