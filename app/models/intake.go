package models

import (
	"strings"
	"time"

	"realtor/core/types"
)

// IntakeRequest is what the public form submits. Every field is optional
// on the wire; presence matters for the token flow, where absent fields
// keep their stored value.
type IntakeRequest struct {
	FirstName    types.Optional[string]       `json:"first_name"`
	LastName     types.Optional[string]       `json:"last_name"`
	Email        types.Optional[string]       `json:"email"`
	Phone        types.Optional[string]       `json:"phone"`
	Birthday     types.Optional[types.Date]   `json:"birthday"`
	MoveOutDate  types.Optional[types.Date]   `json:"move_out_date"`
	BudgetMin    types.Optional[types.Number] `json:"budget_min"`
	BudgetMax    types.Optional[types.Number] `json:"budget_max"`
	LookingFor   types.Optional[string]       `json:"looking_for"`
	RentalStatus types.Optional[string]       `json:"rental_status"`
	RentalNotes  types.Optional[string]       `json:"rental_notes"`
	Tags         types.Optional[types.Tags]   `json:"tags"`
	Agent        types.Optional[string]       `json:"agent"`
}

// Names returns the trimmed first and last name, blank when missing
func (r *IntakeRequest) Names() (string, string) {
	return strings.TrimSpace(deref(r.FirstName.Value)), strings.TrimSpace(deref(r.LastName.Value))
}

// ApplyOpen overwrites the optional fields of m the way the open form does:
// every field is replaced, missing ones become empty. Names are only
// replaced when given. agent falls back to agentPrefill.
func (r *IntakeRequest) ApplyOpen(m *Client, agentPrefill string) error {
	status, err := ParseRentalStatus(deref(r.RentalStatus.Value))
	if err != nil {
		return err
	}

	first, last := r.Names()
	if first != "" {
		m.FirstName = first
	}
	if last != "" {
		m.LastName = last
	}
	m.Phone = TrimmedOrNil(r.Phone.Value)
	m.Birthday = dateOrNil(r.Birthday.Value)
	m.MoveOutDate = dateOrNil(r.MoveOutDate.Value)
	m.BudgetMin = numberOrNil(r.BudgetMin.Value)
	m.BudgetMax = numberOrNil(r.BudgetMax.Value)
	m.LookingFor = TrimmedOrNil(r.LookingFor.Value)
	m.RentalStatus = status
	m.RentalNotes = TrimmedOrNil(r.RentalNotes.Value)
	m.Tags = tagsOrEmpty(r.Tags.Value)

	m.Agent = TrimmedOrNil(r.Agent.Value)
	if m.Agent == nil {
		m.Agent = TrimmedOrNil(&agentPrefill)
	}
	return nil
}

// ApplyToken updates m with the fields present in the request. The email
// is returned separately so the caller can check it for clashes first.
func (r *IntakeRequest) ApplyToken(m *Client) (email *string, err error) {
	email, err = NormalizeEmail(r.Email.Value)
	if err != nil {
		return nil, err
	}

	if first := TrimmedOrNil(r.FirstName.Value); first != nil {
		m.FirstName = *first
	}
	if last := TrimmedOrNil(r.LastName.Value); last != nil {
		m.LastName = *last
	}
	if r.Phone.Set {
		m.Phone = TrimmedOrNil(r.Phone.Value)
	}
	if r.Birthday.Set {
		m.Birthday = dateOrNil(r.Birthday.Value)
	}
	if r.MoveOutDate.Set {
		m.MoveOutDate = dateOrNil(r.MoveOutDate.Value)
	}
	if r.BudgetMin.Set {
		m.BudgetMin = numberOrNil(r.BudgetMin.Value)
	}
	if r.BudgetMax.Set {
		m.BudgetMax = numberOrNil(r.BudgetMax.Value)
	}
	if r.LookingFor.Set {
		m.LookingFor = TrimmedOrNil(r.LookingFor.Value)
	}
	if r.RentalStatus.Value != nil {
		status, err := ParseRentalStatus(*r.RentalStatus.Value)
		if err != nil {
			return nil, err
		}
		m.RentalStatus = status
	}
	if r.RentalNotes.Set {
		m.RentalNotes = TrimmedOrNil(r.RentalNotes.Value)
	}
	if r.Tags.Set {
		m.Tags = tagsOrEmpty(r.Tags.Value)
	}
	if r.Agent.Set {
		m.Agent = TrimmedOrNil(r.Agent.Value)
	}
	return email, nil
}

// IntakeResult acknowledges an intake submission
type IntakeResult struct {
	Ok      bool `json:"ok"`
	Id      uint `json:"id"`
	Created bool `json:"created,omitempty"`
	Updated bool `json:"updated,omitempty"`
}

// IntakePrefill is what a token holder sees before submitting
type IntakePrefill struct {
	Id           uint         `json:"id"`
	FirstName    string       `json:"first_name"`
	LastName     string       `json:"last_name"`
	Email        *string      `json:"email"`
	Phone        *string      `json:"phone"`
	Birthday     *types.Date  `json:"birthday"`
	MoveOutDate  *types.Date  `json:"move_out_date"`
	BudgetMin    *float64     `json:"budget_min"`
	BudgetMax    *float64     `json:"budget_max"`
	LookingFor   *string      `json:"looking_for"`
	RentalStatus RentalStatus `json:"rental_status"`
	RentalNotes  *string      `json:"rental_notes"`
	Tags         types.Tags   `json:"tags"`
	Agent        *string      `json:"agent"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (m *Client) ToIntakePrefill() *IntakePrefill {
	if m == nil {
		return nil
	}
	return &IntakePrefill{
		Id:           m.Id,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		Phone:        m.Phone,
		Birthday:     m.Birthday,
		MoveOutDate:  m.MoveOutDate,
		BudgetMin:    m.BudgetMin,
		BudgetMax:    m.BudgetMax,
		LookingFor:   m.LookingFor,
		RentalStatus: m.RentalStatus,
		RentalNotes:  m.RentalNotes,
		Tags:         tagsOrEmpty(&m.Tags),
		Agent:        m.Agent,
		UpdatedAt:    m.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func tagsOrEmpty(t *types.Tags) types.Tags {
	if t == nil || *t == nil {
		return types.Tags{}
	}
	return types.NormalizeTags(*t)
}
