package models

import (
	"strings"
	"time"

	"realtor/app/matching"
	"realtor/core/types"

	"gorm.io/gorm"
)

// RentalStatus tracks where a client is in a rental application
type RentalStatus string

const (
	RentalNone     RentalStatus = "none"
	RentalApplied  RentalStatus = "applied"
	RentalApproved RentalStatus = "approved"
	RentalDeclined RentalStatus = "declined"
	RentalMovedIn  RentalStatus = "moved_in"
	RentalMovedOut RentalStatus = "moved_out"
)

var RentalStatuses = []RentalStatus{
	RentalNone, RentalApplied, RentalApproved, RentalDeclined, RentalMovedIn, RentalMovedOut,
}

func (s RentalStatus) Valid() bool {
	for _, v := range RentalStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Label is the display form: "moved_in" becomes "moved in"
func (s RentalStatus) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// ParseRentalStatus lowercases s; blank means none
func ParseRentalStatus(s string) (RentalStatus, error) {
	status := RentalStatus(strings.ToLower(strings.TrimSpace(s)))
	if status == "" {
		return RentalNone, nil
	}
	if !status.Valid() {
		return "", invalid("rental_status", "rental_status must be one of: none, applied, approved, declined, moved_in, moved_out")
	}
	return status, nil
}

// RentalStatusFragments maps every status to what a search can hit
func RentalStatusFragments() map[string][]string {
	out := make(map[string][]string, len(RentalStatuses))
	for _, s := range RentalStatuses {
		out[string(s)] = []string{string(s)}
	}
	return out
}

// Client is a person the agency works with
type Client struct {
	Id                  uint           `json:"id" gorm:"primarykey"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `json:"-" gorm:"index"`
	FirstName           string         `json:"first_name" gorm:"not null"`
	LastName            string         `json:"last_name" gorm:"not null;index"`
	Email               *string        `json:"email" gorm:"uniqueIndex"`
	Phone               *string        `json:"phone"`
	Birthday            *types.Date    `json:"birthday"`
	MoveOutDate         *types.Date    `json:"move_out_date"`
	BudgetMin           *float64       `json:"budget_min"`
	BudgetMax           *float64       `json:"budget_max"`
	LookingFor          *string        `json:"looking_for"`
	RentalStatus        RentalStatus   `json:"rental_status" gorm:"size:20;not null;default:none"`
	RentalNotes         *string        `json:"rental_notes"`
	Tags                types.Tags     `json:"tags"`
	Agent               *string        `json:"agent"`
	IntakeToken         *string        `json:"-" gorm:"uniqueIndex"`
	IntakeTokenIssuedAt *time.Time     `json:"-"`
}

func (m *Client) TableName() string {
	return "clients"
}

func (m *Client) GetId() uint {
	return m.Id
}

func (m *Client) GetModelName() string {
	return "clients"
}

// Archived reports a soft-deleted client
func (m *Client) Archived() bool {
	return m.DeletedAt.Valid
}

// FullName is "First Last"
func (m *Client) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// SearchFragments projects the client into lowercase search fragments
func (m Client) SearchFragments() []string {
	fragments := []string{
		m.FirstName,
		m.LastName,
		matching.Text(m.Email),
		matching.Text(m.Phone),
		matching.Text(m.LookingFor),
		matching.Text(m.RentalNotes),
		matching.Text(m.Agent),
		string(m.RentalStatus),
		matching.Day(m.Birthday),
		matching.Day(m.MoveOutDate),
		matching.Number(m.BudgetMin),
		matching.Number(m.BudgetMax),
	}
	fragments = append(fragments, m.Tags...)
	for i, f := range fragments {
		fragments[i] = strings.ToLower(f)
	}
	return fragments
}

// ClientSearchColumns mirrors SearchFragments for the store prefilter
func ClientSearchColumns() []matching.Column {
	return []matching.Column{
		matching.TextCol("first_name"),
		matching.TextCol("last_name"),
		matching.TextCol("email"),
		matching.TextCol("phone"),
		matching.TextCol("looking_for"),
		matching.TextCol("rental_notes"),
		matching.TextCol("agent"),
		matching.TextCol("tags"),
		matching.EnumCol("rental_status", RentalStatusFragments()),
		matching.DateCol("birthday"),
		matching.DateCol("move_out_date"),
		matching.NumberCol("budget_min"),
		matching.NumberCol("budget_max"),
	}
}

// ClientRequest is the full-record payload for create and update
type ClientRequest struct {
	FirstName    string        `json:"first_name" binding:"required"`
	LastName     string        `json:"last_name" binding:"required"`
	Email        *string       `json:"email"`
	Phone        *string       `json:"phone"`
	Birthday     *types.Date   `json:"birthday"`
	MoveOutDate  *types.Date   `json:"move_out_date"`
	BudgetMin    *types.Number `json:"budget_min"`
	BudgetMax    *types.Number `json:"budget_max"`
	LookingFor   *string       `json:"looking_for"`
	RentalStatus string        `json:"rental_status"`
	RentalNotes  *string       `json:"rental_notes"`
	Tags         types.Tags    `json:"tags"`
	Agent        *string       `json:"agent"`
}

// Apply validates the request and overwrites every field of m
func (r *ClientRequest) Apply(m *Client) error {
	first := strings.TrimSpace(r.FirstName)
	if first == "" {
		return invalid("first_name", "first_name is required")
	}
	last := strings.TrimSpace(r.LastName)
	if last == "" {
		return invalid("last_name", "last_name is required")
	}
	email, err := NormalizeEmail(r.Email)
	if err != nil {
		return err
	}
	status, err := ParseRentalStatus(r.RentalStatus)
	if err != nil {
		return err
	}

	m.FirstName = first
	m.LastName = last
	m.Email = email
	m.Phone = TrimmedOrNil(r.Phone)
	m.Birthday = dateOrNil(r.Birthday)
	m.MoveOutDate = dateOrNil(r.MoveOutDate)
	m.BudgetMin = numberOrNil(r.BudgetMin)
	m.BudgetMax = numberOrNil(r.BudgetMax)
	m.LookingFor = TrimmedOrNil(r.LookingFor)
	m.RentalStatus = status
	m.RentalNotes = TrimmedOrNil(r.RentalNotes)
	m.Tags = types.NormalizeTags(r.Tags)
	m.Agent = TrimmedOrNil(r.Agent)
	return nil
}

// ClientResponse is the API shape of a client
type ClientResponse struct {
	Id             uint         `json:"id"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	FirstName      string       `json:"first_name"`
	LastName       string       `json:"last_name"`
	Email          *string      `json:"email"`
	Phone          *string      `json:"phone"`
	Birthday       *types.Date  `json:"birthday"`
	MoveOutDate    *types.Date  `json:"move_out_date"`
	BudgetMin      *float64     `json:"budget_min"`
	BudgetMax      *float64     `json:"budget_max"`
	LookingFor     *string      `json:"looking_for"`
	RentalStatus   RentalStatus `json:"rental_status"`
	RentalLabel    string       `json:"rental_status_label"`
	RentalNotes    *string      `json:"rental_notes"`
	Tags           types.Tags   `json:"tags"`
	Agent          *string      `json:"agent"`
	HasIntakeToken bool         `json:"has_intake_token"`
	Archived       bool         `json:"archived"`
}

func (m *Client) ToResponse() *ClientResponse {
	if m == nil {
		return nil
	}
	tags := m.Tags
	if tags == nil {
		tags = types.Tags{}
	}
	return &ClientResponse{
		Id:             m.Id,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		Email:          m.Email,
		Phone:          m.Phone,
		Birthday:       m.Birthday,
		MoveOutDate:    m.MoveOutDate,
		BudgetMin:      m.BudgetMin,
		BudgetMax:      m.BudgetMax,
		LookingFor:     m.LookingFor,
		RentalStatus:   m.RentalStatus,
		RentalLabel:    m.RentalStatus.Label(),
		RentalNotes:    m.RentalNotes,
		Tags:           tags,
		Agent:          m.Agent,
		HasIntakeToken: m.IntakeToken != nil,
		Archived:       m.Archived(),
	}
}

// ClientSelectOption is used by pickers such as a listing's primary client
type ClientSelectOption struct {
	Id   uint   `json:"id"`
	Name string `json:"name"`
}

func (m *Client) ToSelectOption() *ClientSelectOption {
	if m == nil {
		return nil
	}
	return &ClientSelectOption{Id: m.Id, Name: m.FullName()}
}

// ClientListResponse wraps list results as {items: [...]}
type ClientListResponse struct {
	Items []*ClientResponse `json:"items"`
}

// BulkEmailRequest selects clients for a bulk email: ids restricted to
// the rows matching q, or every matching row when ids is empty.
type BulkEmailRequest struct {
	Q   string `json:"q"`
	Ids []uint `json:"ids"`
}

type BulkEmailResponse struct {
	Emails []string `json:"emails"`
	Bcc    string   `json:"bcc"`
	Mailto string   `json:"mailto"`
}

// IntakeTokenResponse carries a freshly issued intake link
type IntakeTokenResponse struct {
	Ok    bool   `json:"ok"`
	Token string `json:"token"`
	URL   string `json:"url"`
	Sent  bool   `json:"sent,omitempty"`
}
