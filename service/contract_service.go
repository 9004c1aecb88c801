package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"clausecheck-backend/corpus"
	"clausecheck-backend/embedding"
	"clausecheck-backend/llm"
	"clausecheck-backend/models"
	"clausecheck-backend/pdf"
	"clausecheck-backend/storage"

	"github.com/google/uuid"
)

const (
	// refinementTemperature is lower than adjudication: drafting wants the
	// most conservative phrasing the model can produce.
	refinementTemperature = 0.2
	refinementMaxTokens   = 300
	refinementTimeout     = 30 * time.Second

	refinementSystemPrompt = "You are a legal drafting expert specializing in Indian commercial contracts."

	// fallbackClause covers contract types with no library entries.
	fallbackClause = "This Agreement shall be governed by the laws of India."
)

var (
	ErrUnknownContractType = errors.New("unsupported contract type")
	ErrRenderFailed        = errors.New("failed to render contract document")
)

// libraryClause is a reusable clause pre-embedded at load time, so retrieval
// only has to embed the incoming query.
type libraryClause struct {
	text      string
	embedding []float64
}

// ContractService generates full agreements: retrieve the best boilerplate
// clause for the contract type, refine it through the reasoning gateway,
// assemble the typed template, render a PDF, and store it.
type ContractService struct {
	embedder embedding.Embedder
	gateway  llm.Gateway
	store    storage.Storage
	library  map[models.ContractType][]libraryClause
}

// ContractServiceOption is a functional option for ContractService
type ContractServiceOption func(*ContractService)

// ContractWithEmbedder sets the encoder client
func ContractWithEmbedder(e embedding.Embedder) ContractServiceOption {
	return func(s *ContractService) {
		s.embedder = e
	}
}

// ContractWithGateway sets the reasoning gateway
func ContractWithGateway(g llm.Gateway) ContractServiceOption {
	return func(s *ContractService) {
		s.gateway = g
	}
}

// ContractWithStorage sets the document store
func ContractWithStorage(store storage.Storage) ContractServiceOption {
	return func(s *ContractService) {
		s.store = store
	}
}

// NewContractService creates a new contract service
func NewContractService(opts ...ContractServiceOption) *ContractService {
	s := &ContractService{library: make(map[models.ContractType][]libraryClause)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadClauseLibrary reads the static clause library and eagerly embeds every
// clause. Clauses that fail to embed are excluded, mirroring the rule corpus
// load behavior; a missing or corrupt library degrades to the fallback
// clause for every contract type.
func (s *ContractService) LoadClauseLibrary(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Error loading clause library from %s: %v", path, err)
		return
	}

	var parsed map[string][]string
	if err := json.Unmarshal(data, &parsed); err != nil {
		log.Printf("Error parsing clause library from %s: %v", path, err)
		return
	}

	total := 0
	for contractType, texts := range parsed {
		clauses := make([]libraryClause, 0, len(texts))
		for _, text := range texts {
			emb, err := s.embedder.Embed(ctx, text)
			if err != nil {
				log.Printf("Warning: excluding library clause for %s, embedding failed: %v", contractType, err)
				continue
			}
			clauses = append(clauses, libraryClause{text: text, embedding: emb})
		}
		s.library[models.ContractType(contractType)] = clauses
		total += len(clauses)
	}
	log.Printf("Loaded clause library: %d contract types, %d clauses embedded", len(s.library), total)
}

// retrieveClause picks the library clause most similar to the query. An
// empty library for the type, or a failed query embedding, yields the
// fallback boilerplate clause.
func (s *ContractService) retrieveClause(ctx context.Context, query string, contractType models.ContractType) string {
	clauses := s.library[contractType]
	if len(clauses) == 0 {
		return fallbackClause
	}

	queryEmb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("Warning: clause query embedding failed: %v", err)
		return clauses[0].text
	}

	bestIdx := 0
	bestScore := corpus.CosineSimilarity(queryEmb, clauses[0].embedding)
	for i := 1; i < len(clauses); i++ {
		score := corpus.CosineSimilarity(queryEmb, clauses[i].embedding)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	return clauses[bestIdx].text
}

// refineClause asks the gateway to strengthen the clause for enforceability.
// Refinement is best-effort: any failure falls back to the library clause.
func (s *ContractService) refineClause(ctx context.Context, clause string, contractType models.ContractType, city string) string {
	prompt := fmt.Sprintf(`**Legal Clause Optimization Task**

As a senior Indian contract lawyer, improve this %s clause for maximum legal enforceability:

**Original Clause:**
%q
The city of jurisdiction is:
%s
**Requirements:**
1. Explicitly reference relevant Indian laws/acts (IT Act 2000, Contract Act 1872, etc.)
2. Include clear obligations, remedies, termination conditions
3. Add sub-clauses for:
   - Governing law (Indian jurisdiction)
   - Dispute resolution (arbitration preferred)
   - Force majeure
4. Ensure compliance with latest amendments
5. Use precise legal terminology
6. Keep under 150 words
7. Disputes should be resolved in city of jurisdiction only.`, contractType, clause, city)

	refineCtx, cancel := context.WithTimeout(ctx, refinementTimeout)
	defer cancel()

	refined, err := s.gateway.Complete(refineCtx, refinementSystemPrompt, prompt, llm.Options{
		Temperature: refinementTemperature,
		MaxTokens:   refinementMaxTokens,
	})
	if err != nil {
		log.Printf("Warning: clause refinement failed, keeping library clause: %v", err)
		return clause
	}
	return strings.TrimSpace(refined)
}

// Generate runs the full contract generation flow and stores the rendered
// document.
func (s *ContractService) Generate(ctx context.Context, req models.ContractRequest) (*models.GeneratedContract, error) {
	content, err := s.assembleContract(req, s.refineClause(ctx, s.retrieveClause(ctx, req.ClauseQuery, req.ContractType), req.ContractType, req.Jurisdiction))
	if err != nil {
		return nil, err
	}

	rendered, err := pdf.Render(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	docID := uuid.New()
	filename := fmt.Sprintf("%s_agreement_%s_%s.pdf",
		req.ContractType, firstNameSlug(req.PartyA), firstNameSlug(req.PartyB))

	storagePath, err := s.store.Upload(ctx, docID, filename, bytes.NewReader(rendered))
	if err != nil {
		return nil, fmt.Errorf("failed to store contract document: %w", err)
	}

	return &models.GeneratedContract{
		ID:          docID,
		Content:     content,
		StoragePath: storagePath,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// firstNameSlug lowercases the first word of a party name for filenames.
func firstNameSlug(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "party"
	}
	return strings.ToLower(fields[0])
}

// assembleContract fills the typed agreement template for the request.
func (s *ContractService) assembleContract(req models.ContractRequest, clause string) (string, error) {
	jurisdiction := req.Jurisdiction
	if jurisdiction == "" {
		jurisdiction = "New Delhi"
	}

	a, b, d := req.PartyA, req.PartyB, req.Duration
	signed := fmt.Sprintf("Signed: %s, %s", a, b)

	switch req.ContractType {
	case models.ContractNDA:
		return fmt.Sprintf("NON-DISCLOSURE AGREEMENT\n\nThis Non-Disclosure Agreement is made between %s and %s.\n\n1. Term: %s\n2. Confidentiality Obligations\n3. Legal Clause: %s\n4. Jurisdiction: %s\n\n%s", a, b, d, clause, jurisdiction, signed), nil
	case models.ContractEmployment:
		return fmt.Sprintf("EMPLOYMENT AGREEMENT\n\nThis Employment Agreement is made between %s and %s.\n\n1. Position: %s\n2. Duration: %s\n3. Legal Clause: %s\n4. Jurisdiction: %s\n\n%s", a, b, req.Position, d, clause, jurisdiction, signed), nil
	case models.ContractContractor:
		return fmt.Sprintf("INDEPENDENT CONTRACTOR AGREEMENT\n\nThis Independent Contractor Agreement is made between %s and %s.\n\n1. Duration: %s\n2. Role: Contractor\n3. Legal Clause: %s\n4. Jurisdiction: %s\n\n%s", a, b, d, clause, jurisdiction, signed), nil
	case models.ContractSLA:
		return fmt.Sprintf("SERVICE LEVEL AGREEMENT\n\nThis Service Level Agreement is made between %s and %s.\n\n1. Term: %s\n2. Legal Clause: %s\n3. Jurisdiction: %s\n\n%s", a, b, d, clause, jurisdiction, signed), nil
	case models.ContractPartnership:
		return fmt.Sprintf("PARTNERSHIP AGREEMENT\n\nThis Partnership Agreement is made between %s and %s.\n\n1. Term: %s\n2. Legal Clause: %s\n3. Jurisdiction: %s\n\n%s", a, b, d, clause, jurisdiction, signed), nil
	case models.ContractSales:
		return fmt.Sprintf("SALES AGREEMENT\n\nThis Sales Agreement is made between %s (Seller) and %s (Buyer).\n\n1. Duration: %s\n2. Goods/Services: %s\n3. Legal Clause: %s\n4. Jurisdiction: %s\n\n%s", a, b, d, req.GoodsDescription, clause, jurisdiction, signed), nil
	case models.ContractLease:
		return fmt.Sprintf("LEASE AGREEMENT\n\nThis Lease Agreement is made between %s (Lessor) and %s (Lessee).\n\n1. Property: %s\n2. Duration: %s\n3. Legal Clause: %s\n4. Jurisdiction: %s\n\n%s", a, b, req.PropertyAddress, d, clause, jurisdiction, signed), nil
	case models.ContractMOU:
		return fmt.Sprintf("MEMORANDUM OF UNDERSTANDING\n\nThis Memorandum of Understanding is entered into by %s and %s.\n\n1. Term: %s\n2. Legal Clause: %s\n3. Jurisdiction: %s\n\n%s", a, b, d, clause, jurisdiction, signed), nil
	case models.ContractNonCompete:
		return fmt.Sprintf("NON-COMPETE AGREEMENT\n\nThis agreement is between %s and %s.\n\n1. Duration: %s\n2. Scope: %s\n3. Legal Clause: %s\n4. Jurisdiction: %s\n\n%s", a, b, d, req.Scope, clause, jurisdiction, signed), nil
	default:
		return "", ErrUnknownContractType
	}
}
