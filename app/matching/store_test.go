package matching_test

import (
	"testing"

	"realtor/app/matching"
	"realtor/app/models"
	"realtor/core/database"
	"realtor/core/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func ptr[T any](v T) *T { return &v }

func seed(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:", gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Client{}, &models.Property{}))

	bday, _ := types.ParseDate("1990-04-12")
	clients := []models.Client{
		{FirstName: "Ana", LastName: "Ruiz", Email: ptr("ana@example.com"), Tags: types.Tags{"vip", "newsletter"}, RentalStatus: models.RentalNone},
		{FirstName: "Bo", LastName: "Chen", Phone: ptr("250-555-0101"), RentalStatus: models.RentalMovedIn, Birthday: &bday, BudgetMax: ptr(2500.0)},
		{FirstName: "Carla", LastName: "Diaz", LookingFor: ptr("Condo near DOWNTOWN"), Agent: ptr("Maria"), RentalStatus: models.RentalApplied, BudgetMin: ptr(1200.5)},
		{FirstName: "Dev", LastName: "Patel", RentalNotes: ptr("declined twice"), RentalStatus: models.RentalDeclined},
	}
	require.NoError(t, db.Create(&clients).Error)

	props := []models.Property{
		{AddressLine1: "12 Oak St", City: "Victoria", ForType: models.ForRent, Price: ptr(1800.0), Beds: ptr(2.0)},
		{AddressLine1: "9 Elm Ave", City: "Sidney", ForType: models.ForSale, Price: ptr(650000.0), Baths: ptr(1.5), Tags: types.Tags{"waterfront"}},
		{AddressLine1: "400 Pine Rd", City: "Langford", ForType: models.ForRent, OwnerName: ptr("Lee Wong"), Notes: ptr("No pets")},
	}
	require.NoError(t, db.Create(&props).Error)
	return db
}

var queries = []string{
	"", "ruiz vip", "ruiz buyer", "ana", "EXAMPLE.com", "555", "moved", "moved_in", "_in", "none",
	"1990-04-12", "1990-04", "04-12", "2500", "2,500", "1200.5", ".5", "downtown", "maria",
	"rent 2 bed", "sale", "for", "buy", "beds", "bath", "1.5 baths", "1800", "650", "waterfront",
	"victoria oak", "pets", "wong", "zzz", "2", "e",
}

func TestClientStoreScopeAgreesWithMatcher(t *testing.T) {
	db := seed(t)

	var all []models.Client
	require.NoError(t, db.Find(&all).Error)

	for _, q := range queries {
		tokens := matching.Tokenize(q)

		var narrowed []models.Client
		require.NoError(t, db.Scopes(matching.StoreScope(tokens, models.ClientSearchColumns())).Find(&narrowed).Error, q)

		want := ids(matching.Filter(all, tokens), func(c models.Client) uint { return c.Id })
		got := ids(matching.Filter(narrowed, tokens), func(c models.Client) uint { return c.Id })
		assert.Equal(t, want, got, "query %q", q)
	}
}

func TestPropertyStoreScopeAgreesWithMatcher(t *testing.T) {
	db := seed(t)

	var all []models.Property
	require.NoError(t, db.Find(&all).Error)

	for _, q := range queries {
		tokens := matching.Tokenize(q)

		var narrowed []models.Property
		require.NoError(t, db.Scopes(matching.StoreScope(tokens, models.PropertySearchColumns())).Find(&narrowed).Error, q)

		want := ids(matching.Filter(all, tokens), func(p models.Property) uint { return p.Id })
		got := ids(matching.Filter(narrowed, tokens), func(p models.Property) uint { return p.Id })
		assert.Equal(t, want, got, "query %q", q)
	}
}

func TestStoreScopeNarrows(t *testing.T) {
	db := seed(t)

	var narrowed []models.Property
	require.NoError(t, db.Scopes(matching.StoreScope(matching.Tokenize("waterfront"), models.PropertySearchColumns())).Find(&narrowed).Error)
	require.Len(t, narrowed, 1)
	assert.Equal(t, "9 Elm Ave", narrowed[0].AddressLine1)

	var none []models.Client
	require.NoError(t, db.Scopes(matching.StoreScope(matching.Tokenize("zzz"), models.ClientSearchColumns())).Find(&none).Error)
	assert.Empty(t, none)
}

func ids[T any](items []T, id func(T) uint) []uint {
	out := []uint{}
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}
