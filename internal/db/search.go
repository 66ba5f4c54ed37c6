package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search. For KNN queries Score
// holds the raw cosine distance reported by the engine (lower = more similar).
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
