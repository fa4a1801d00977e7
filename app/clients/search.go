package clients

import (
	"context"
	"fmt"
	"strings"

	"realtor/app/matching"
	"realtor/app/models"
	"realtor/core/app/search"
)

// Search feeds the global search with the same matching rules as List
func (s *ClientService) Search(ctx context.Context, query string, limit int) ([]search.SearchResult, error) {
	items, err := s.List(ctx, query)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	results := make([]search.SearchResult, 0, len(items))
	for i := range items {
		results = append(results, clientResult(&items[i]))
	}
	return results, nil
}

func clientResult(m *models.Client) search.SearchResult {
	subtitle := matching.Text(m.Email)
	if subtitle == "" {
		subtitle = matching.Text(m.Phone)
	}

	var description []string
	if m.RentalStatus != "" && m.RentalStatus != models.RentalNone {
		description = append(description, m.RentalStatus.Label())
	}
	if v := matching.Text(m.LookingFor); v != "" {
		description = append(description, v)
	}

	return search.SearchResult{
		Id:          m.Id,
		Type:        "client",
		Title:       m.FullName(),
		Subtitle:    subtitle,
		Description: strings.Join(description, " · "),
		URL:         fmt.Sprintf("/clients/%d", m.Id),
	}
}
