package clients

import (
	"context"
	"errors"
	"strings"
	"testing"

	"realtor/app/models"
	"realtor/core/database"
	"realtor/core/email"
	"realtor/core/emitter"
	"realtor/core/logger"
	"realtor/core/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func ptr[T any](v T) *T { return &v }

func newTestService(t *testing.T) (*ClientService, *email.LogSender) {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:", gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Client{}))

	log := logger.NewNop()
	sender := email.NewLogSender(log, "crm@example.com")
	return NewClientService(db, emitter.New(), sender, log, "https://crm.example.com/"), sender
}

func TestCreateListAndSort(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	for _, req := range []models.ClientRequest{
		{FirstName: "Ana", LastName: "ruiz", Email: ptr(" Ana@Example.com "), Tags: types.Tags{"vip", "newsletter"}},
		{FirstName: "Bo", LastName: "Chen"},
		{FirstName: "Al", LastName: "Ruiz"},
	} {
		_, err := s.Create(ctx, &req)
		require.NoError(t, err)
	}

	items, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"Bo Chen", "Al Ruiz", "Ana ruiz"},
		[]string{items[0].FullName(), items[1].FullName(), items[2].FullName()})
	assert.Equal(t, "ana@example.com", *items[2].Email)

	items, err = s.List(ctx, "ruiz vip")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Ana", items[0].FirstName)

	items, err = s.List(ctx, "ruiz buyer")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, &models.ClientRequest{FirstName: " ", LastName: "Ruiz"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = s.Create(ctx, &models.ClientRequest{FirstName: "Ana", LastName: "Ruiz", Email: ptr("not-an-email")})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = s.Create(ctx, &models.ClientRequest{FirstName: "Ana", LastName: "Ruiz", RentalStatus: "evicted"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestEmailUniqueness(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	// clients without email never collide
	_, err := s.Create(ctx, &models.ClientRequest{FirstName: "A", LastName: "One"})
	require.NoError(t, err)
	_, err = s.Create(ctx, &models.ClientRequest{FirstName: "B", LastName: "Two", Email: ptr("  ")})
	require.NoError(t, err)

	ana, err := s.Create(ctx, &models.ClientRequest{FirstName: "Ana", LastName: "Ruiz", Email: ptr("ana@example.com")})
	require.NoError(t, err)

	_, err = s.Create(ctx, &models.ClientRequest{FirstName: "Other", LastName: "Ana", Email: ptr("ANA@example.com")})
	assert.ErrorIs(t, err, models.ErrEmailConflict)
	assert.Equal(t, "Email already in use", err.Error())

	bo, err := s.Create(ctx, &models.ClientRequest{FirstName: "Bo", LastName: "Chen", Email: ptr("bo@example.com")})
	require.NoError(t, err)
	_, err = s.Update(ctx, bo.Id, &models.ClientRequest{FirstName: "Bo", LastName: "Chen", Email: ptr("ana@example.com")})
	assert.ErrorIs(t, err, models.ErrEmailConflict)

	// keeping your own email is fine
	_, err = s.Update(ctx, ana.Id, &models.ClientRequest{FirstName: "Ana", LastName: "Ruiz", Email: ptr("ana@example.com")})
	assert.NoError(t, err)

	// archived clients keep their address
	require.NoError(t, s.Archive(ctx, ana.Id))
	_, err = s.Create(ctx, &models.ClientRequest{FirstName: "New", LastName: "Ana", Email: ptr("ana@example.com")})
	assert.ErrorIs(t, err, models.ErrEmailConflict)
}

func TestUpdateReplacesEveryField(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	c, err := s.Create(ctx, &models.ClientRequest{
		FirstName:    "Ana",
		LastName:     "Ruiz",
		Phone:        ptr("250-555-0101"),
		RentalStatus: "applied",
		Tags:         types.Tags{"vip"},
	})
	require.NoError(t, err)

	updated, err := s.Update(ctx, c.Id, &models.ClientRequest{FirstName: "Ana", LastName: "Ruiz-Lopez"})
	require.NoError(t, err)
	assert.Nil(t, updated.Phone)
	assert.Equal(t, models.RentalNone, updated.RentalStatus)
	assert.Empty(t, updated.Tags)

	got, err := s.GetById(ctx, c.Id)
	require.NoError(t, err)
	assert.Equal(t, "Ruiz-Lopez", got.LastName)
}

func TestArchiveHidesClient(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	c, err := s.Create(ctx, &models.ClientRequest{FirstName: "Ana", LastName: "Ruiz"})
	require.NoError(t, err)
	require.NoError(t, s.Archive(ctx, c.Id))

	_, err = s.GetById(ctx, c.Id)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, s.Archive(ctx, c.Id), models.ErrNotFound)
	_, err = s.Update(ctx, c.Id, &models.ClientRequest{FirstName: "Ana", LastName: "Ruiz"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	items, err := s.List(ctx, "ana")
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = s.GetById(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestExportCSV(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, &models.ClientRequest{FirstName: `Jo "JJ"`, LastName: "Zed", Email: ptr("jo@example.com")})
	require.NoError(t, err)
	_, err = s.Create(ctx, &models.ClientRequest{FirstName: "Ana", LastName: "Abbott"})
	require.NoError(t, err)
	gone, err := s.Create(ctx, &models.ClientRequest{FirstName: "Gone", LastName: "Away", Email: ptr("gone@example.com")})
	require.NoError(t, err)
	require.NoError(t, s.Archive(ctx, gone.Id))

	data, err := s.ExportCSV(ctx)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		`"First Name","Last Name","Email"`,
		`"Ana","Abbott",""`,
		`"Jo ""JJ""","Zed","jo@example.com"`,
	}, "\n"), string(data))
}

func TestIssueIntakeToken(t *testing.T) {
	s, sender := newTestService(t)
	ctx := context.Background()

	c, err := s.Create(ctx, &models.ClientRequest{FirstName: "Ana", LastName: "Ruiz", Email: ptr("ana@example.com")})
	require.NoError(t, err)

	first, err := s.IssueIntakeToken(ctx, c.Id, false)
	require.NoError(t, err)
	assert.Len(t, first.Token, 32)
	assert.Equal(t, "https://crm.example.com/intake/"+first.Token, first.URL)
	assert.False(t, first.Sent)
	assert.Empty(t, sender.Sent())

	second, err := s.IssueIntakeToken(ctx, c.Id, true)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)
	assert.True(t, second.Sent)

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"ana@example.com"}, sent[0].To)
	assert.Equal(t, "intake-link", sent[0].Tag)
	assert.Contains(t, sent[0].Body, second.URL)

	got, err := s.GetById(ctx, c.Id)
	require.NoError(t, err)
	require.NotNil(t, got.IntakeToken)
	assert.Equal(t, second.Token, *got.IntakeToken)
	assert.NotNil(t, got.IntakeTokenIssuedAt)

	noEmail, err := s.Create(ctx, &models.ClientRequest{FirstName: "Bo", LastName: "Chen"})
	require.NoError(t, err)
	_, err = s.IssueIntakeToken(ctx, noEmail.Id, true)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = s.IssueIntakeToken(ctx, 999, false)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

type failingSender struct{}

func (failingSender) Send(email.Message) error {
	return errors.New("smtp unavailable")
}

func TestIssueIntakeTokenKeepsOldTokenWhenSendFails(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	c, err := s.Create(ctx, &models.ClientRequest{FirstName: "Ana", LastName: "Ruiz", Email: ptr("ana@example.com")})
	require.NoError(t, err)
	issued, err := s.IssueIntakeToken(ctx, c.Id, false)
	require.NoError(t, err)

	s.Email = failingSender{}
	_, err = s.IssueIntakeToken(ctx, c.Id, true)
	require.Error(t, err)

	got, err := s.GetById(ctx, c.Id)
	require.NoError(t, err)
	require.NotNil(t, got.IntakeToken)
	assert.Equal(t, issued.Token, *got.IntakeToken)
}

func TestMailtoEscapesAddresses(t *testing.T) {
	assert.Equal(t, "mailto:?bcc=a%26b%40example.com,c%3Fd%25e%40example.com",
		mailtoBcc([]string{"a&b@example.com", "c?d%e@example.com"}))
	assert.Equal(t, "mailto:?bcc=", mailtoBcc(nil))
}

func TestBulkEmails(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	ana, err := s.Create(ctx, &models.ClientRequest{FirstName: "Ana", LastName: "Abbott", Email: ptr("ana@example.com"), Tags: types.Tags{"vip"}})
	require.NoError(t, err)
	_, err = s.Create(ctx, &models.ClientRequest{FirstName: "Bo", LastName: "Burke", Tags: types.Tags{"vip"}})
	require.NoError(t, err)
	cy, err := s.Create(ctx, &models.ClientRequest{FirstName: "Cy", LastName: "Cole", Email: ptr("cy@example.com"), Tags: types.Tags{"vip"}})
	require.NoError(t, err)
	other, err := s.Create(ctx, &models.ClientRequest{FirstName: "Di", LastName: "Dunn", Email: ptr("di@example.com")})
	require.NoError(t, err)

	resp, err := s.BulkEmails(ctx, &models.BulkEmailRequest{Q: "vip"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com", "cy@example.com"}, resp.Emails)
	assert.Equal(t, "ana@example.com,cy@example.com", resp.Bcc)
	assert.Equal(t, "mailto:?bcc=ana%40example.com,cy%40example.com", resp.Mailto)

	// selected but hidden rows do not count
	resp, err = s.BulkEmails(ctx, &models.BulkEmailRequest{Q: "vip", Ids: []uint{cy.Id, other.Id}})
	require.NoError(t, err)
	assert.Equal(t, []string{"cy@example.com"}, resp.Emails)

	resp, err = s.BulkEmails(ctx, &models.BulkEmailRequest{Q: "zzz", Ids: []uint{ana.Id}})
	require.NoError(t, err)
	assert.Empty(t, resp.Emails)
	assert.Equal(t, "mailto:?bcc=", resp.Mailto)
}

func TestImportCSV(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	existing, err := s.Create(ctx, &models.ClientRequest{FirstName: "Ana", LastName: "Ruiz", Email: ptr("ana@example.com"), Phone: ptr("555")})
	require.NoError(t, err)

	csv := "\ufeffFirst Name,Last Name,Email,Tags\n" +
		"Ana,Ruiz-Lopez,ANA@example.com,\"vip, buyer\"\n" +
		"No,Email,,\n" +
		"Bo,Chen,bo@example.com,newsletter\n"

	result, err := s.ImportCSV(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 1, Updated: 1, Skipped: 1}, *result)

	got, err := s.GetById(ctx, existing.Id)
	require.NoError(t, err)
	assert.Equal(t, "Ruiz-Lopez", got.LastName)
	assert.Equal(t, types.Tags{"vip", "buyer"}, got.Tags)
	assert.Equal(t, "555", *got.Phone)

	items, err := s.List(ctx, "bo@example.com")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, types.Tags{"newsletter"}, items[0].Tags)
}

func TestSearchResults(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	for _, req := range []models.ClientRequest{
		{FirstName: "Ana", LastName: "Ruiz", Email: ptr("ana@example.com"), RentalStatus: "moved_in", LookingFor: ptr("2 bed condo")},
		{FirstName: "Al", LastName: "Ruiz", Phone: ptr("250-555-0101")},
		{FirstName: "Bo", LastName: "Chen"},
	} {
		_, err := s.Create(ctx, &req)
		require.NoError(t, err)
	}

	results, err := s.Search(ctx, "ruiz", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Al Ruiz", results[0].Title)
	assert.Equal(t, "250-555-0101", results[0].Subtitle)
	assert.Empty(t, results[0].Description)

	assert.Equal(t, "Ana Ruiz", results[1].Title)
	assert.Equal(t, "ana@example.com", results[1].Subtitle)
	assert.Equal(t, "moved in · 2 bed condo", results[1].Description)
	assert.Equal(t, "client", results[1].Type)

	limited, err := s.Search(ctx, "ruiz", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
