package models

// SearchResult is a single semantic hit.
type SearchResult struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}

// SearchResponse is the response of GET /api/search.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// Bindings reports which external dependencies are configured.
type Bindings struct {
	DB      bool `json:"DB"`
	Vectors bool `json:"VECTORS"`
	AI      bool `json:"AI"`
}

// HealthResponse is the response of GET /api/health.
type HealthResponse struct {
	OK        bool     `json:"ok"`
	Timestamp int64    `json:"timestamp"` // Unix milliseconds
	Env       string   `json:"env"`
	Bindings  Bindings `json:"bindings"`
}
