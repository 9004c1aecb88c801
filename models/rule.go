package models

// LegalRule represents a single reference rule from the legal knowledge base.
// Rules are loaded once at startup and are immutable afterwards.
type LegalRule struct {
	ID       string `json:"law_id"`
	Category string `json:"category"`
	Text     string `json:"law_text"`

	// Embedding is the precomputed encoder vector for Text. It is populated
	// during corpus load and never mutated afterwards.
	Embedding []float64 `json:"-"`
}

// MatchResult is the outcome of ranking a clause against the rule corpus.
// When no rule clears the similarity threshold, Rule is a sentinel value and
// Similarity still carries the best score that was actually computed.
type MatchResult struct {
	Rule       LegalRule `json:"rule"`
	Similarity float64   `json:"similarity"`
}
