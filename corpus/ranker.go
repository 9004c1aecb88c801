package corpus

import (
	"context"
	"log"
	"math"

	"clausecheck-backend/embedding"
	"clausecheck-backend/models"
)

// SimilarityThreshold is the minimum cosine similarity a rule must score to
// be considered relevant to a clause.
const SimilarityThreshold = 0.6

// Sentinel rules returned when no usable match exists. Distinct from a nil
// result: callers always receive a well-formed MatchResult.
var (
	SentinelNoMatch     = models.LegalRule{Text: "No sufficiently relevant legal rule found."}
	SentinelNoEmbedding = models.LegalRule{Text: "No valid embedding generated."}
)

// Ranker ranks corpus rules by semantic similarity to a clause. It owns the
// corpus for the process lifetime.
type Ranker struct {
	corpus   *Corpus
	embedder embedding.Embedder
}

// NewRanker creates a ranker over an already-loaded corpus.
func NewRanker(corpus *Corpus, embedder embedding.Embedder) *Ranker {
	return &Ranker{corpus: corpus, embedder: embedder}
}

// FindBestMatch embeds the clause and returns the best-matching rule with
// its cosine similarity. Clauses that fail to embed, or score below
// SimilarityThreshold against every rule, yield a sentinel match; in the
// latter case Similarity still carries the true best score so callers can
// see how close the clause came.
func (r *Ranker) FindBestMatch(ctx context.Context, clause string) models.MatchResult {
	clauseEmb, err := r.embedder.Embed(ctx, clause)
	if err != nil || len(clauseEmb) != embedding.Dimensions {
		if err != nil {
			log.Printf("Warning: clause embedding failed: %v", err)
		}
		return models.MatchResult{Rule: SentinelNoEmbedding, Similarity: 0.0}
	}

	rules := r.corpus.Rules()
	if len(rules) == 0 {
		return models.MatchResult{Rule: SentinelNoMatch, Similarity: 0.0}
	}

	// Linear scan with stable argmax: ties keep the first-occurring rule.
	bestIdx := 0
	bestScore := CosineSimilarity(clauseEmb, rules[0].Embedding)
	for i := 1; i < len(rules); i++ {
		score := CosineSimilarity(clauseEmb, rules[i].Embedding)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestScore < SimilarityThreshold {
		return models.MatchResult{Rule: SentinelNoMatch, Similarity: bestScore}
	}

	return models.MatchResult{Rule: rules[bestIdx], Similarity: bestScore}
}

// CosineSimilarity computes the normalized dot product of two vectors,
// in [-1, 1]. Degenerate vectors (zero norm or mismatched length) score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
