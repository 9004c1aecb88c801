package corpus

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"clausecheck-backend/embedding"
	"clausecheck-backend/models"
)

// Corpus is the immutable reference set of legal rules, pre-embedded at load
// time. It is constructed once during startup and shared read-only between
// requests; nothing mutates it afterwards.
type Corpus struct {
	rules []models.LegalRule
}

type rulesFile struct {
	LegalRules []models.LegalRule `json:"legal_rules"`
}

// Load reads the rule source at path and eagerly embeds every rule through
// the encoder. Rules whose text fails to embed are excluded so that rules
// and embeddings stay index-aligned. A missing or corrupt source degrades to
// an empty corpus (every clause will rank as "no relevant rule") rather than
// failing the process.
func Load(ctx context.Context, path string, embedder embedding.Embedder) *Corpus {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Error loading legal rules from %s: %v", path, err)
		return &Corpus{}
	}

	var parsed rulesFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		log.Printf("Error parsing legal rules from %s: %v", path, err)
		return &Corpus{}
	}

	rules := make([]models.LegalRule, 0, len(parsed.LegalRules))
	for _, rule := range parsed.LegalRules {
		emb, err := embedder.Embed(ctx, rule.Text)
		if err != nil {
			log.Printf("Warning: excluding rule %s from corpus, embedding failed: %v", rule.ID, err)
			continue
		}
		rule.Embedding = emb
		rules = append(rules, rule)
	}

	log.Printf("Loaded %d legal rules (%d embedded)", len(parsed.LegalRules), len(rules))
	return &Corpus{rules: rules}
}

// Len returns the number of embedded rules available for ranking.
func (c *Corpus) Len() int {
	return len(c.rules)
}

// Rules returns the embedded rules in load order.
func (c *Corpus) Rules() []models.LegalRule {
	return c.rules
}
