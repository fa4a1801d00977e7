package models

import "realtor/core/types"

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTags(t types.Tags) types.Tags {
	if t == nil {
		return nil
	}
	return append(types.Tags{}, t...)
}

// Clone returns a copy sharing no pointers or slices with m
func (m *Client) Clone() Client {
	c := *m
	c.Email = clonePtr(m.Email)
	c.Phone = clonePtr(m.Phone)
	c.Birthday = clonePtr(m.Birthday)
	c.MoveOutDate = clonePtr(m.MoveOutDate)
	c.BudgetMin = clonePtr(m.BudgetMin)
	c.BudgetMax = clonePtr(m.BudgetMax)
	c.LookingFor = clonePtr(m.LookingFor)
	c.RentalNotes = clonePtr(m.RentalNotes)
	c.Tags = cloneTags(m.Tags)
	c.Agent = clonePtr(m.Agent)
	c.IntakeToken = clonePtr(m.IntakeToken)
	c.IntakeTokenIssuedAt = clonePtr(m.IntakeTokenIssuedAt)
	return c
}

// Clone returns a copy sharing no pointers or slices with m
func (m *Property) Clone() Property {
	c := *m
	c.AddressLine2 = clonePtr(m.AddressLine2)
	c.Province = clonePtr(m.Province)
	c.PostalCode = clonePtr(m.PostalCode)
	c.Price = clonePtr(m.Price)
	c.Beds = clonePtr(m.Beds)
	c.Baths = clonePtr(m.Baths)
	c.OwnerName = clonePtr(m.OwnerName)
	c.OwnerPhone = clonePtr(m.OwnerPhone)
	c.OwnerEmail = clonePtr(m.OwnerEmail)
	c.Notes = clonePtr(m.Notes)
	c.ImageURL = clonePtr(m.ImageURL)
	c.Tags = cloneTags(m.Tags)
	c.PrimaryClientId = clonePtr(m.PrimaryClientId)
	return c
}
