package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"clausecheck-backend/corpus"
	"clausecheck-backend/llm"
	"clausecheck-backend/models"

	"golang.org/x/sync/errgroup"
)

const (
	systemPrompt = "You are a helpful Indian legal assistant."

	// reasoningTemperature keeps adjudication output close to deterministic.
	reasoningTemperature = 0.3

	// minClauseLength drops segmentation fragments too short to be clauses.
	minClauseLength = 20
)

var ErrClauseExtractionFailed = errors.New("failed to parse AI response")

// AnalysisService orchestrates the per-clause adjudication pipeline:
// match against the rule corpus, prompt the reasoning gateway, extract a
// structured verdict, and aggregate. Nothing in this path is fatal; every
// failure degrades to an UNKNOWN verdict or a synthetic risk entry.
type AnalysisService struct {
	ranker      *corpus.Ranker
	gateway     llm.Gateway
	concurrency int
}

// AnalysisServiceOption is a functional option for AnalysisService
type AnalysisServiceOption func(*AnalysisService)

// AnalysisWithRanker sets the relevance ranker
func AnalysisWithRanker(r *corpus.Ranker) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.ranker = r
	}
}

// AnalysisWithGateway sets the reasoning gateway
func AnalysisWithGateway(g llm.Gateway) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.gateway = g
	}
}

// AnalysisWithConcurrency bounds how many clauses are adjudicated at once.
// The default of 1 preserves strictly sequential processing; raising it
// fans clauses out across a bounded worker pool.
func AnalysisWithConcurrency(n int) AnalysisServiceOption {
	return func(s *AnalysisService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(opts ...AnalysisServiceOption) *AnalysisService {
	s := &AnalysisService{concurrency: 1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SegmentText splits contract text into candidate clauses on sentence-ending
// periods, discarding fragments of minClauseLength characters or fewer.
func (s *AnalysisService) SegmentText(text string) []string {
	clauses := make([]string, 0)
	for _, part := range strings.Split(text, ".") {
		part = strings.TrimSpace(part)
		if len(part) > minClauseLength {
			clauses = append(clauses, part)
		}
	}
	return clauses
}

// CheckClause adjudicates a single clause in compliance mode.
func (s *AnalysisService) CheckClause(ctx context.Context, clause string) models.ComplianceVerdict {
	match := s.ranker.FindBestMatch(ctx, clause)

	prompt := fmt.Sprintf(`As an Indian legal expert, analyze the following contract clause in relation to the specified legal rule. Determine if the clause violates the rule and explain your reasoning.

Clause: %q
Legal Rule: %q

Provide your answer in JSON format:
{
    "Clause": %q,
    "Legal Rule": %q,
    "Violates": "YES or NO",
    "Reason": "<brief reasoning>"
}`, clause, match.Rule.Text, clause, match.Rule.Text)

	raw, err := s.gateway.Complete(ctx, systemPrompt, prompt, llm.Options{Temperature: reasoningTemperature})
	if err != nil {
		return models.ComplianceVerdict{
			Clause:    clause,
			LegalRule: match.Rule.Text,
			Violates:  models.ViolationUnknown,
			Reason:    "LLM inference failed",
		}
	}

	obj := llm.ExtractJSON(raw)
	if obj == nil {
		return models.ComplianceVerdict{
			Clause:    clause,
			LegalRule: match.Rule.Text,
			Violates:  models.ViolationUnknown,
			Reason:    "Could not parse LLM response: " + llm.TruncateRaw(raw),
		}
	}

	return decodeComplianceVerdict(obj, clause, match.Rule.Text)
}

// decodeComplianceVerdict maps a generic extracted object into a typed
// verdict. Missing or malformed fields get explicit defaults rather than
// being trusted blindly.
func decodeComplianceVerdict(obj map[string]interface{}, clause, ruleText string) models.ComplianceVerdict {
	verdict := models.ComplianceVerdict{
		Clause:    llm.StringField(obj, "Clause", clause),
		LegalRule: llm.StringField(obj, "Legal Rule", ruleText),
		Reason:    llm.StringField(obj, "Reason", ""),
	}

	switch strings.ToUpper(strings.TrimSpace(llm.StringField(obj, "Violates", ""))) {
	case "YES":
		verdict.Violates = models.ViolationYes
	case "NO":
		verdict.Violates = models.ViolationNo
	default:
		verdict.Violates = models.ViolationUnknown
	}

	return verdict
}

// CheckClauses adjudicates a batch of clauses and keys the results by clause
// text. Duplicate clause strings collapse to a single entry; that mirrors
// the response contract, which is a JSON object keyed by clause.
func (s *AnalysisService) CheckClauses(ctx context.Context, clauses []string) map[string]models.ComplianceVerdict {
	verdicts := make([]models.ComplianceVerdict, len(clauses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, clause := range clauses {
		i, clause := i, clause
		g.Go(func() error {
			verdicts[i] = s.CheckClause(gctx, clause)
			return nil
		})
	}
	// Per-clause failures are absorbed into UNKNOWN verdicts; the group
	// never carries an error.
	_ = g.Wait()

	results := make(map[string]models.ComplianceVerdict, len(clauses))
	for i, clause := range clauses {
		results[clause] = verdicts[i]
	}
	return results
}

// CategorizeClause adjudicates a single clause in risk mode, sorting it into
// good/risk/recommendation buckets. Unparseable model output becomes a
// synthetic risk entry citing the raw response: a pessimistic fallback, not
// a silent drop.
func (s *AnalysisService) CategorizeClause(ctx context.Context, clause string) models.RiskReport {
	match := s.ranker.FindBestMatch(ctx, clause)
	if match.Rule.Text == corpus.SentinelNoEmbedding.Text {
		report := models.NewRiskReport()
		report.RiskClauses = append(report.RiskClauses, models.RiskClause{
			Clause: clause,
			Risk:   "Embedding failed.",
		})
		return report
	}

	prompt := fmt.Sprintf(`You are a legal analyst. Given the following clause and legal rule, return a JSON object categorizing it as one of the following:
- good_clauses: Clauses that are beneficial and well-written.
- risk_clauses: Clauses that pose legal or fairness risks.
- recommendations: Clauses that are acceptable but could be improved. Include a 'suggested_rewrite'.

Format:
{
    "good_clauses": [{ "clause": "...", "reason": "..." }],
    "risk_clauses": [{ "clause": "...", "risk": "..." }],
    "recommendations": [{ "clause": "...", "reason": "...", "suggested_rewrite": "..." }]
}

Clause: %q
Legal Rule: %q`, clause, match.Rule.Text)

	raw, err := s.gateway.Complete(ctx, systemPrompt, prompt, llm.Options{Temperature: reasoningTemperature})
	if err != nil {
		report := models.NewRiskReport()
		report.RiskClauses = append(report.RiskClauses, models.RiskClause{
			Clause: clause,
			Risk:   "LLM inference failed",
		})
		return report
	}

	obj := llm.ExtractJSON(raw)
	if obj == nil {
		report := models.NewRiskReport()
		report.RiskClauses = append(report.RiskClauses, models.RiskClause{
			Clause: clause,
			Risk:   "Could not parse AI response: " + llm.TruncateRaw(raw),
		})
		return report
	}

	return decodeRiskReport(obj)
}

// decodeRiskReport maps a generic extracted object into typed buckets.
// Unknown keys are ignored; malformed entries are skipped field by field.
func decodeRiskReport(obj map[string]interface{}) models.RiskReport {
	report := models.NewRiskReport()

	for _, entry := range objectList(obj, "good_clauses") {
		report.GoodClauses = append(report.GoodClauses, models.GoodClause{
			Clause: llm.StringField(entry, "clause", ""),
			Reason: llm.StringField(entry, "reason", ""),
		})
	}
	for _, entry := range objectList(obj, "risk_clauses") {
		report.RiskClauses = append(report.RiskClauses, models.RiskClause{
			Clause: llm.StringField(entry, "clause", ""),
			Risk:   llm.StringField(entry, "risk", ""),
		})
	}
	for _, entry := range objectList(obj, "recommendations") {
		report.Recommendations = append(report.Recommendations, models.Recommendation{
			Clause:           llm.StringField(entry, "clause", ""),
			Reason:           llm.StringField(entry, "reason", ""),
			SuggestedRewrite: llm.StringField(entry, "suggested_rewrite", ""),
		})
	}

	return report
}

// objectList reads a list of objects out of a generic extracted value.
func objectList(obj map[string]interface{}, key string) []map[string]interface{} {
	raw, ok := obj[key].([]interface{})
	if !ok {
		return nil
	}
	entries := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if entry, ok := item.(map[string]interface{}); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// CategorizeClauses runs risk-mode adjudication over a batch of clauses and
// concatenates the buckets. Bucket order follows clause order regardless of
// how many workers ran.
func (s *AnalysisService) CategorizeClauses(ctx context.Context, clauses []string) models.RiskReport {
	reports := make([]models.RiskReport, len(clauses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, clause := range clauses {
		i, clause := i, clause
		g.Go(func() error {
			reports[i] = s.CategorizeClause(gctx, clause)
			return nil
		})
	}
	_ = g.Wait()

	combined := models.NewRiskReport()
	for _, report := range reports {
		combined.Merge(report)
	}
	return combined
}

// ExtractClauses asks the reasoning gateway to enumerate the key legal
// clauses of full contract text as a JSON list. Used by the risk upload
// flow, which delegates segmentation to the model instead of splitting on
// punctuation.
func (s *AnalysisService) ExtractClauses(ctx context.Context, contractText string) ([]string, error) {
	prompt := fmt.Sprintf(`Extract all key legal clauses from the following contract text.
Return only a JSON object in this format:
{ "clauses": ["Clause 1", "Clause 2"] }

Contract Text:
%s`, contractText)

	raw, err := s.gateway.Complete(ctx, systemPrompt, prompt, llm.Options{Temperature: reasoningTemperature})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Clauses []string `json:"clauses"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		// The extraction prompt demands bare JSON, but the model may still
		// wrap it in fences or prose.
		obj := llm.ExtractJSON(raw)
		if obj == nil {
			log.Printf("Warning: clause extraction returned unparseable response: %s", llm.TruncateRaw(raw))
			return nil, ErrClauseExtractionFailed
		}
		for _, item := range stringList(obj, "clauses") {
			parsed.Clauses = append(parsed.Clauses, item)
		}
		if len(parsed.Clauses) == 0 {
			return nil, ErrClauseExtractionFailed
		}
	}

	return parsed.Clauses, nil
}

// stringList reads a list of strings out of a generic extracted value.
func stringList(obj map[string]interface{}, key string) []string {
	raw, ok := obj[key].([]interface{})
	if !ok {
		return nil
	}
	items := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			items = append(items, s)
		}
	}
	return items
}
