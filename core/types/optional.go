package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Optional records whether a JSON field was present and its decoded value.
// Both null and a blank string decode to a present field with a nil Value.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a present Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Value = nil

	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil && strings.TrimSpace(s) == "" {
		return nil
	}

	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// Or returns the value when present, fallback otherwise
func (o Optional[T]) Or(fallback *T) *T {
	if !o.Set {
		return fallback
	}
	return o.Value
}

// Number is a float that also decodes from numeric strings such as "1,800" or "$2.5"
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		if math.IsInf(f, 0) {
			return fmt.Errorf("invalid number %s", string(data))
		}
		*n = Number(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid number %s", string(data))
	}
	parsed, err := ParseNumber(s)
	if err != nil {
		return err
	}
	*n = Number(parsed)
	return nil
}

// ParseNumber parses a lenient numeric string, ignoring currency symbols,
// thousands separators and surrounding whitespace.
func ParseNumber(s string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ',', '$', ' ', '_':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}

// Float returns the value as *float64
func (o Optional[T]) Float() *float64 {
	if o.Value == nil {
		return nil
	}
	switch v := any(*o.Value).(type) {
	case Number:
		f := float64(v)
		return &f
	case float64:
		return &v
	}
	return nil
}
