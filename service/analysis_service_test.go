package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"clausecheck-backend/corpus"
	"clausecheck-backend/embedding"
	"clausecheck-backend/llm"
	"clausecheck-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const confidentialityRule = "Confidential information shall not be disclosed."

// stubEmbedder maps every input to the same direction so any clause matches
// any rule with similarity 1.
type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	v := make([]float64, embedding.Dimensions)
	v[0] = 1
	return v, nil
}

// stubGateway returns a canned response or error for every completion.
type stubGateway struct {
	response string
	err      error

	mu    sync.Mutex
	calls int
}

func (s *stubGateway) Complete(ctx context.Context, systemPrompt, userPrompt string, opts llm.Options) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newTestRanker(t *testing.T, embedder embedding.Embedder) *corpus.Ranker {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"legal_rules": [{"law_id": "X", "category": "Civil Law", "law_text": "`+confidentialityRule+`"}]}`,
	), 0644))
	loadEmbedder := embedder
	if _, failing := embedder.(*stubEmbedder); failing {
		// Rules must embed at load time even when clause embedding later fails.
		loadEmbedder = &stubEmbedder{}
	}
	c := corpus.Load(context.Background(), path, loadEmbedder)
	return corpus.NewRanker(c, embedder)
}

func newTestService(t *testing.T, gateway llm.Gateway, opts ...AnalysisServiceOption) *AnalysisService {
	t.Helper()
	base := []AnalysisServiceOption{
		AnalysisWithRanker(newTestRanker(t, &stubEmbedder{})),
		AnalysisWithGateway(gateway),
	}
	return NewAnalysisService(append(base, opts...)...)
}

func TestSegmentText(t *testing.T) {
	text := "The tenant shall pay rent monthly without deduction. Yes. The landlord shall maintain the premises in habitable condition."

	clauses := NewAnalysisService().SegmentText(text)

	require.Len(t, clauses, 2)
	assert.Equal(t, "The tenant shall pay rent monthly without deduction", clauses[0])
	assert.Equal(t, "The landlord shall maintain the premises in habitable condition", clauses[1])
}

func TestSegmentTextDropsShortFragments(t *testing.T) {
	assert.Empty(t, NewAnalysisService().SegmentText("Short. Tiny. No."))
	assert.Empty(t, NewAnalysisService().SegmentText(""))
}

func TestCheckClauseVerdictPassesThrough(t *testing.T) {
	gateway := &stubGateway{response: `{"Clause": "The parties shall keep all information confidential.", "Legal Rule": "` + confidentialityRule + `", "Violates": "NO", "Reason": "Matches confidentiality requirement"}`}
	svc := newTestService(t, gateway)

	verdict := svc.CheckClause(context.Background(), "The parties shall keep all information confidential.")

	assert.Equal(t, models.ViolationNo, verdict.Violates)
	assert.Equal(t, "Matches confidentiality requirement", verdict.Reason)
	assert.Equal(t, confidentialityRule, verdict.LegalRule)
}

func TestCheckClauseGatewayFailure(t *testing.T) {
	svc := newTestService(t, &stubGateway{err: errors.New("network down")})

	verdict := svc.CheckClause(context.Background(), "some clause about confidential data")

	assert.Equal(t, models.ViolationUnknown, verdict.Violates)
	assert.Equal(t, "LLM inference failed", verdict.Reason)
	assert.Equal(t, confidentialityRule, verdict.LegalRule)
}

func TestCheckClauseUnparseableResponse(t *testing.T) {
	svc := newTestService(t, &stubGateway{response: "I cannot comply with this request."})

	verdict := svc.CheckClause(context.Background(), "a clause")

	assert.Equal(t, models.ViolationUnknown, verdict.Violates)
	assert.Contains(t, verdict.Reason, "Could not parse LLM response")
	assert.Contains(t, verdict.Reason, "I cannot comply")
}

func TestCheckClauseMalformedViolatesDefaultsToUnknown(t *testing.T) {
	svc := newTestService(t, &stubGateway{response: `{"Violates": "MAYBE", "Reason": "unclear"}`})

	verdict := svc.CheckClause(context.Background(), "a clause")

	assert.Equal(t, models.ViolationUnknown, verdict.Violates)
	assert.Equal(t, "unclear", verdict.Reason)
}

func TestCheckClausesOutageReturnsAllUnknown(t *testing.T) {
	svc := newTestService(t, &stubGateway{err: errors.New("provider outage")})
	clauses := []string{
		"first clause about confidential information",
		"second clause about payment of wages",
		"third clause about lease registration",
	}

	results := svc.CheckClauses(context.Background(), clauses)

	require.Len(t, results, 3)
	for _, clause := range clauses {
		verdict, ok := results[clause]
		require.True(t, ok)
		assert.Equal(t, models.ViolationUnknown, verdict.Violates)
	}
}

func TestCheckClausesCollapsesDuplicates(t *testing.T) {
	gateway := &stubGateway{response: `{"Violates": "NO", "Reason": "fine"}`}
	svc := newTestService(t, gateway)
	clause := "the same clause text repeated in the request"

	results := svc.CheckClauses(context.Background(), []string{clause, clause})

	// Keyed by clause text: identical clauses collapse to one entry, though
	// each was adjudicated.
	assert.Len(t, results, 1)
	assert.Equal(t, 2, gateway.calls)
}

func TestCheckClausesConcurrentMatchesSequential(t *testing.T) {
	gateway := &stubGateway{response: `{"Violates": "YES", "Reason": "conflict"}`}
	svc := newTestService(t, gateway, AnalysisWithConcurrency(4))
	clauses := []string{
		"clause number one about something legal",
		"clause number two about something else legal",
	}

	results := svc.CheckClauses(context.Background(), clauses)

	require.Len(t, results, 2)
	for _, clause := range clauses {
		assert.Equal(t, models.ViolationYes, results[clause].Violates)
	}
}

func TestCategorizeClauseDecodesBuckets(t *testing.T) {
	gateway := &stubGateway{response: `{
		"good_clauses": [{"clause": "c1", "reason": "well drafted"}],
		"risk_clauses": [],
		"recommendations": [{"clause": "c2", "reason": "vague", "suggested_rewrite": "be specific"}]
	}`}
	svc := newTestService(t, gateway)

	report := svc.CategorizeClause(context.Background(), "a clause")

	require.Len(t, report.GoodClauses, 1)
	assert.Equal(t, "well drafted", report.GoodClauses[0].Reason)
	assert.Empty(t, report.RiskClauses)
	require.Len(t, report.Recommendations, 1)
	assert.Equal(t, "be specific", report.Recommendations[0].SuggestedRewrite)
}

func TestCategorizeClauseParseFailureBecomesRiskEntry(t *testing.T) {
	svc := newTestService(t, &stubGateway{response: "no structure here at all"})

	report := svc.CategorizeClause(context.Background(), "the clause under review")

	require.Len(t, report.RiskClauses, 1)
	assert.Equal(t, "the clause under review", report.RiskClauses[0].Clause)
	assert.Contains(t, report.RiskClauses[0].Risk, "Could not parse AI response")
}

func TestCategorizeClauseGatewayFailureBecomesRiskEntry(t *testing.T) {
	svc := newTestService(t, &stubGateway{err: errors.New("timeout")})

	report := svc.CategorizeClause(context.Background(), "clause text")

	require.Len(t, report.RiskClauses, 1)
	assert.Equal(t, "LLM inference failed", report.RiskClauses[0].Risk)
}

func TestCategorizeClauseEmbeddingFailure(t *testing.T) {
	gateway := &stubGateway{response: `{"good_clauses": []}`}
	svc := NewAnalysisService(
		AnalysisWithRanker(newTestRanker(t, &stubEmbedder{err: errors.New("encoder down")})),
		AnalysisWithGateway(gateway),
	)

	report := svc.CategorizeClause(context.Background(), "clause text")

	require.Len(t, report.RiskClauses, 1)
	assert.Equal(t, "Embedding failed.", report.RiskClauses[0].Risk)
	assert.Zero(t, gateway.calls)
}

func TestCategorizeClausesMergesInOrder(t *testing.T) {
	gateway := &stubGateway{response: `{"risk_clauses": [{"clause": "c", "risk": "r"}]}`}
	svc := newTestService(t, gateway)

	report := svc.CategorizeClauses(context.Background(), []string{
		"first clause long enough to matter",
		"second clause long enough to matter",
	})

	assert.Len(t, report.RiskClauses, 2)
	assert.NotNil(t, report.GoodClauses)
	assert.NotNil(t, report.Recommendations)
}

func TestExtractClausesStrictJSON(t *testing.T) {
	svc := newTestService(t, &stubGateway{response: `{"clauses": ["Clause 1", "Clause 2"]}`})

	clauses, err := svc.ExtractClauses(context.Background(), "full contract text")

	require.NoError(t, err)
	assert.Equal(t, []string{"Clause 1", "Clause 2"}, clauses)
}

func TestExtractClausesFencedFallback(t *testing.T) {
	svc := newTestService(t, &stubGateway{response: "```json\n{\"clauses\": [\"Clause A\"]}\n```"})

	clauses, err := svc.ExtractClauses(context.Background(), "full contract text")

	require.NoError(t, err)
	assert.Equal(t, []string{"Clause A"}, clauses)
}

func TestExtractClausesUnparseable(t *testing.T) {
	svc := newTestService(t, &stubGateway{response: "sorry, I could not read the contract"})

	_, err := svc.ExtractClauses(context.Background(), "full contract text")

	assert.ErrorIs(t, err, ErrClauseExtractionFailed)
}

func TestExtractClausesGatewayError(t *testing.T) {
	svc := newTestService(t, &stubGateway{err: errors.New("boom")})

	_, err := svc.ExtractClauses(context.Background(), "full contract text")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrClauseExtractionFailed)
}

func TestExtractClausesPromptCarriesContractText(t *testing.T) {
	gateway := &capturingGateway{response: `{"clauses": ["c"]}`}
	svc := newTestService(t, gateway)

	_, err := svc.ExtractClauses(context.Background(), "UNIQUE-CONTRACT-BODY")

	require.NoError(t, err)
	assert.True(t, strings.Contains(gateway.lastPrompt, "UNIQUE-CONTRACT-BODY"))
}

// capturingGateway records the last user prompt it saw.
type capturingGateway struct {
	response   string
	lastPrompt string
}

func (c *capturingGateway) Complete(ctx context.Context, systemPrompt, userPrompt string, opts llm.Options) (string, error) {
	c.lastPrompt = userPrompt
	return c.response, nil
}
