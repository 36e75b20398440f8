package db

// TextQuery is the input for full-text relevance search.
type TextQuery struct {
	IndexName string
	Query     string
	// Fields restricts matching to the given TEXT fields. Empty means all.
	Fields       []string
	TopK         int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// Suggestion is one entry of a completion dictionary.
type Suggestion struct {
	Text    string
	Score   float64
	Payload string
}
