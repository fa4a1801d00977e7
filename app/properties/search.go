package properties

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"realtor/app/models"
	"realtor/core/app/search"

	"github.com/gertd/go-pluralize"
)

// Search feeds the global search with the same matching rules as List
func (s *PropertyService) Search(ctx context.Context, query string, limit int) ([]search.SearchResult, error) {
	items, err := s.List(ctx, query)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	words := pluralize.NewClient()
	results := make([]search.SearchResult, 0, len(items))
	for i := range items {
		results = append(results, propertyResult(words, &items[i]))
	}
	return results, nil
}

func propertyResult(words *pluralize.Client, m *models.Property) search.SearchResult {
	parts := []string{forLabel(m.ForType)}
	if v := countLabel(words, m.Beds, "bed"); v != "" {
		parts = append(parts, v)
	}
	if v := countLabel(words, m.Baths, "bath"); v != "" {
		parts = append(parts, v)
	}

	var description string
	if m.Price != nil {
		description = "$" + strconv.FormatFloat(*m.Price, 'f', -1, 64)
	}

	return search.SearchResult{
		Id:          m.Id,
		Type:        "property",
		Title:       m.Address(),
		Subtitle:    strings.Join(parts, " · "),
		Description: description,
		URL:         fmt.Sprintf("/properties/%d", m.Id),
	}
}

func forLabel(t models.ForType) string {
	if t == models.ForSale {
		return "For sale"
	}
	return "For rent"
}

// countLabel renders 2 as "2 beds" and 1.5 as "1.5 baths"
func countLabel(words *pluralize.Client, f *float64, unit string) string {
	if f == nil {
		return ""
	}
	n := *f
	if n == math.Trunc(n) {
		return words.Pluralize(unit, int(n), true)
	}
	return strconv.FormatFloat(n, 'f', -1, 64) + " " + words.Plural(unit)
}
