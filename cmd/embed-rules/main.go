package main

import (
	"context"
	"flag"
	"log"
	"os"

	"clausecheck-backend/corpus"
	"clausecheck-backend/embedding"

	"github.com/joho/godotenv"
)

// Verifies that the rule corpus embeds cleanly through the encoder before a
// deploy, and optionally ranks the corpus against a query clause to sanity
// check retrieval quality.
func main() {
	rulesPath := flag.String("rules", "./data/legal_rules.json", "path to the legal rules file")
	query := flag.String("query", "", "optional clause to rank against the corpus")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	baseURL := os.Getenv("ENCODER_URL")
	if baseURL == "" {
		log.Fatal("ENCODER_URL environment variable is required")
	}
	embedder := embedding.NewClient(baseURL, os.Getenv("ENCODER_API_KEY"))

	ctx := context.Background()
	ruleCorpus := corpus.Load(ctx, *rulesPath, embedder)
	if ruleCorpus.Len() == 0 {
		log.Fatal("No rules embedded; check the rules file and encoder service")
	}
	log.Printf("Corpus ready: %d rules embedded at %d dimensions", ruleCorpus.Len(), embedding.Dimensions)

	if *query == "" {
		return
	}

	ranker := corpus.NewRanker(ruleCorpus, embedder)
	match := ranker.FindBestMatch(ctx, *query)
	if match.Rule.ID == "" {
		log.Printf("No relevant rule (best similarity %.4f): %s", match.Similarity, match.Rule.Text)
		return
	}
	log.Printf("Best match: %s [%s] similarity %.4f", match.Rule.ID, match.Rule.Category, match.Similarity)
	log.Printf("Rule text: %s", match.Rule.Text)
}
