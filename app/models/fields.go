package models

import (
	"strings"
	"sync"

	"realtor/core/types"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func fieldValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// NormalizeEmail trims and lowercases; blank becomes nil
func NormalizeEmail(email *string) (*string, error) {
	e := TrimmedOrNil(email)
	if e == nil {
		return nil, nil
	}
	lower := strings.ToLower(*e)
	if err := fieldValidator().Var(lower, "email"); err != nil {
		return nil, invalid("email", "email must be a valid email address")
	}
	return &lower, nil
}

// TrimmedOrNil trims s; blank becomes nil
func TrimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func dateOrNil(d *types.Date) *types.Date {
	if d == nil || d.IsZero() {
		return nil
	}
	day := types.NewDate(d.Time)
	return &day
}

func numberOrNil(n *types.Number) *float64 {
	if n == nil {
		return nil
	}
	f := float64(*n)
	return &f
}

// SameEmail compares two optional, already normalized emails
func SameEmail(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
