package models

import (
	"strings"
	"time"

	"realtor/app/matching"
	"realtor/core/types"

	"gorm.io/gorm"
)

// ForType is the listing type
type ForType string

const (
	ForSale ForType = "SALE"
	ForRent ForType = "RENT"
)

// Fragments are the words a search for this listing type can hit
func (t ForType) Fragments() []string {
	switch t {
	case ForRent:
		return []string{"rent", "rental", "for rent"}
	case ForSale:
		return []string{"sale", "for sale", "buy", "purchase"}
	}
	return nil
}

// ParseForType uppercases s; blank means RENT
func ParseForType(s string) (ForType, error) {
	switch t := ForType(strings.ToUpper(strings.TrimSpace(s))); t {
	case "":
		return ForRent, nil
	case ForSale, ForRent:
		return t, nil
	}
	return "", invalid("for_type", "for_type must be one of: SALE, RENT")
}

func ForTypeFragments() map[string][]string {
	return map[string][]string{
		string(ForRent): ForRent.Fragments(),
		string(ForSale): ForSale.Fragments(),
	}
}

// Property is a listing
type Property struct {
	Id              uint           `json:"id" gorm:"primarykey"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
	AddressLine1    string         `json:"address_line1" gorm:"not null;index"`
	AddressLine2    *string        `json:"address_line2"`
	City            string         `json:"city" gorm:"not null"`
	Province        *string        `json:"province"`
	PostalCode      *string        `json:"postal_code"`
	ForType         ForType        `json:"for_type" gorm:"size:8;not null;default:RENT"`
	Price           *float64       `json:"price"`
	Beds            *float64       `json:"beds"`
	Baths           *float64       `json:"baths"`
	OwnerName       *string        `json:"owner_name"`
	OwnerPhone      *string        `json:"owner_phone"`
	OwnerEmail      *string        `json:"owner_email"`
	Notes           *string        `json:"notes"`
	ImageURL        *string        `json:"image_url"`
	Tags            types.Tags     `json:"tags"`
	PrimaryClientId *uint          `json:"primary_client_id" gorm:"index"`
}

func (m *Property) TableName() string {
	return "properties"
}

func (m *Property) GetId() uint {
	return m.Id
}

func (m *Property) GetModelName() string {
	return "properties"
}

func (m *Property) Archived() bool {
	return m.DeletedAt.Valid
}

// Address is "line1, city"
func (m *Property) Address() string {
	if m.City == "" {
		return m.AddressLine1
	}
	return m.AddressLine1 + ", " + m.City
}

// SearchFragments projects the property into lowercase search fragments
func (m Property) SearchFragments() []string {
	fragments := []string{
		m.AddressLine1,
		matching.Text(m.AddressLine2),
		m.City,
		matching.Text(m.Province),
		matching.Text(m.PostalCode),
		matching.Text(m.OwnerName),
		matching.Text(m.OwnerEmail),
		matching.Text(m.OwnerPhone),
		matching.Text(m.Notes),
		matching.Number(m.Price),
	}
	fragments = append(fragments, m.ForType.Fragments()...)
	fragments = append(fragments, matching.Count(m.Beds, "bed")...)
	fragments = append(fragments, matching.Count(m.Baths, "bath")...)
	fragments = append(fragments, m.Tags...)
	for i, f := range fragments {
		fragments[i] = strings.ToLower(f)
	}
	return fragments
}

// PropertySearchColumns mirrors SearchFragments for the store prefilter
func PropertySearchColumns() []matching.Column {
	return []matching.Column{
		matching.TextCol("address_line1"),
		matching.TextCol("address_line2"),
		matching.TextCol("city"),
		matching.TextCol("province"),
		matching.TextCol("postal_code"),
		matching.TextCol("owner_name"),
		matching.TextCol("owner_email"),
		matching.TextCol("owner_phone"),
		matching.TextCol("notes"),
		matching.TextCol("tags"),
		matching.EnumCol("for_type", ForTypeFragments()),
		matching.NumberCol("price"),
		matching.CountCol("beds", "bed"),
		matching.CountCol("baths", "bath"),
	}
}

// PropertyRequest is the full-record payload for create and update
type PropertyRequest struct {
	AddressLine1    string        `json:"address_line1" binding:"required"`
	AddressLine2    *string       `json:"address_line2"`
	City            string        `json:"city" binding:"required"`
	Province        *string       `json:"province"`
	PostalCode      *string       `json:"postal_code"`
	ForType         string        `json:"for_type"`
	Price           *types.Number `json:"price"`
	Beds            *types.Number `json:"beds"`
	Baths           *types.Number `json:"baths"`
	OwnerName       *string       `json:"owner_name"`
	OwnerPhone      *string       `json:"owner_phone"`
	OwnerEmail      *string       `json:"owner_email"`
	Notes           *string       `json:"notes"`
	ImageURL        *string       `json:"image_url"`
	Tags            types.Tags    `json:"tags"`
	PrimaryClientId *uint         `json:"primary_client_id"`
}

// Apply validates the request and overwrites every field of m
func (r *PropertyRequest) Apply(m *Property) error {
	line1 := strings.TrimSpace(r.AddressLine1)
	if line1 == "" {
		return invalid("address_line1", "address_line1 is required")
	}
	city := strings.TrimSpace(r.City)
	if city == "" {
		return invalid("city", "city is required")
	}
	forType, err := ParseForType(r.ForType)
	if err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		n    *types.Number
	}{{"price", r.Price}, {"beds", r.Beds}, {"baths", r.Baths}} {
		if f.n != nil && *f.n < 0 {
			return invalid(f.name, "%s must not be negative", f.name)
		}
	}

	m.AddressLine1 = line1
	m.AddressLine2 = TrimmedOrNil(r.AddressLine2)
	m.City = city
	m.Province = TrimmedOrNil(r.Province)
	m.PostalCode = TrimmedOrNil(r.PostalCode)
	m.ForType = forType
	m.Price = numberOrNil(r.Price)
	m.Beds = numberOrNil(r.Beds)
	m.Baths = numberOrNil(r.Baths)
	m.OwnerName = TrimmedOrNil(r.OwnerName)
	m.OwnerPhone = TrimmedOrNil(r.OwnerPhone)
	m.OwnerEmail = TrimmedOrNil(r.OwnerEmail)
	m.Notes = TrimmedOrNil(r.Notes)
	m.ImageURL = TrimmedOrNil(r.ImageURL)
	m.Tags = types.NormalizeTags(r.Tags)
	m.PrimaryClientId = r.PrimaryClientId
	if m.PrimaryClientId != nil && *m.PrimaryClientId == 0 {
		m.PrimaryClientId = nil
	}
	return nil
}

// PropertyResponse is the API shape of a property
type PropertyResponse struct {
	Id              uint       `json:"id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	AddressLine1    string     `json:"address_line1"`
	AddressLine2    *string    `json:"address_line2"`
	City            string     `json:"city"`
	Province        *string    `json:"province"`
	PostalCode      *string    `json:"postal_code"`
	ForType         ForType    `json:"for_type"`
	Price           *float64   `json:"price"`
	Beds            *float64   `json:"beds"`
	Baths           *float64   `json:"baths"`
	OwnerName       *string    `json:"owner_name"`
	OwnerPhone      *string    `json:"owner_phone"`
	OwnerEmail      *string    `json:"owner_email"`
	Notes           *string    `json:"notes"`
	ImageURL        *string    `json:"image_url"`
	Tags            types.Tags `json:"tags"`
	PrimaryClientId *uint      `json:"primary_client_id"`
	Archived        bool       `json:"archived"`
}

func (m *Property) ToResponse() *PropertyResponse {
	if m == nil {
		return nil
	}
	tags := m.Tags
	if tags == nil {
		tags = types.Tags{}
	}
	return &PropertyResponse{
		Id:              m.Id,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		AddressLine1:    m.AddressLine1,
		AddressLine2:    m.AddressLine2,
		City:            m.City,
		Province:        m.Province,
		PostalCode:      m.PostalCode,
		ForType:         m.ForType,
		Price:           m.Price,
		Beds:            m.Beds,
		Baths:           m.Baths,
		OwnerName:       m.OwnerName,
		OwnerPhone:      m.OwnerPhone,
		OwnerEmail:      m.OwnerEmail,
		Notes:           m.Notes,
		ImageURL:        m.ImageURL,
		Tags:            tags,
		PrimaryClientId: m.PrimaryClientId,
		Archived:        m.Archived(),
	}
}

type PropertyListResponse struct {
	Items []*PropertyResponse `json:"items"`
}
