package types

// SearchResponse represents a search response. Results keep the
// provider's ranking order.
type SearchResponse struct {
	Query    string          `json:"query"`
	Results  []*SearchResult `json:"results"`
	Took     int64           `json:"took,omitempty"` // milliseconds
	Provider ProviderID      `json:"provider,omitempty"`
}

// SearchResult represents a single search result. URL is the identity
// key. Details and Answer are empty until enrichment fills them in;
// after that the result is not mutated again.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`           // snippet from the provider
	Details string `json:"details,omitempty"` // extracted page text
	Answer  string `json:"answer,omitempty"`  // generated concise answer
}
