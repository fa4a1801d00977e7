package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Tags is a normalised list of lowercase labels without duplicates.
// It is stored as a comma-joined text column and accepted on the wire
// either as a comma separated string or as an array of strings.
type Tags []string

// ParseTags splits a comma separated string into normalised tags
func ParseTags(s string) Tags {
	return NormalizeTags(strings.Split(s, ","))
}

// NormalizeTags trims, lowercases and de-duplicates, keeping first occurrence order
func NormalizeTags(values []string) Tags {
	out := Tags{}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		tag := strings.ToLower(strings.TrimSpace(v))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// String renders the tags as "a, b, c"
func (t Tags) String() string {
	return strings.Join(t, ", ")
}

func (t Tags) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

func (t *Tags) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Tags{}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = NormalizeTags(list)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("tags must be a string or an array of strings")
	}
	*t = ParseTags(s)
	return nil
}

func (t Tags) Value() (driver.Value, error) {
	return strings.Join(NormalizeTags(t), ","), nil
}

func (t *Tags) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*t = Tags{}
	case string:
		*t = ParseTags(v)
	case []byte:
		*t = ParseTags(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Tags", value)
	}
	return nil
}

func (Tags) GormDataType() string {
	return "text"
}
