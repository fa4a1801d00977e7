package search

import (
	"context"
	"strings"

	"realtor/core/logger"
)

const DefaultLimit = 10

type SearchService struct {
	Logger   logger.Logger
	Registry *SearchRegistry
}

func NewSearchService(logger logger.Logger, registry *SearchRegistry) *SearchService {
	return &SearchService{
		Logger:   logger,
		Registry: registry,
	}
}

// GlobalSearch runs query against the comma separated modules, or every
// registered module when modules is empty. A failing module is logged and
// left out of the response.
func (s *SearchService) GlobalSearch(ctx context.Context, query, modules string, limit int) (*SearchResponse, error) {
	response := &SearchResponse{
		Query:   query,
		Results: make(map[string][]SearchResult),
		Modules: []string{},
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	var modulesToSearch []string
	if strings.TrimSpace(modules) == "" {
		modulesToSearch = s.Registry.GetNames()
	} else {
		for _, name := range strings.Split(modules, ",") {
			if name = strings.TrimSpace(name); name != "" {
				modulesToSearch = append(modulesToSearch, name)
			}
		}
	}

	for _, name := range modulesToSearch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fn, ok := s.Registry.Get(name)
		if !ok {
			s.Logger.Warn("Search module not registered", logger.String("module", name))
			continue
		}

		results, err := fn(ctx, query, limit)
		if err != nil {
			s.Logger.Error("Failed to search module",
				logger.String("module", name),
				logger.Err(err))
			continue
		}

		if len(results) > limit {
			results = results[:limit]
		}
		if len(results) > 0 {
			response.Results[name] = results
			response.Modules = append(response.Modules, name)
			response.Total += len(results)
		}
	}

	return response, nil
}
