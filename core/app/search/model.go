package search

// SearchResponse groups results by module
type SearchResponse struct {
	Query    string                    `json:"query"`
	Total    int                       `json:"total"`
	Results  map[string][]SearchResult `json:"results"`
	Modules  []string                  `json:"modules"`
	Duration string                    `json:"duration"`
}

type SearchResult struct {
	Id          uint   `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Metadata    any    `json:"metadata,omitempty"`
}
