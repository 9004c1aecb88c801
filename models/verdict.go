package models

// Violation is the compliance decision for a clause.
type Violation string

const (
	ViolationYes     Violation = "YES"
	ViolationNo      Violation = "NO"
	ViolationUnknown Violation = "UNKNOWN"
)

// ComplianceVerdict is the per-clause result of the compliance flow.
// The JSON field names match the shape the reasoning model is asked to emit,
// so a well-formed model response maps onto this struct directly.
type ComplianceVerdict struct {
	Clause    string    `json:"Clause"`
	LegalRule string    `json:"Legal Rule"`
	Violates  Violation `json:"Violates"`
	Reason    string    `json:"Reason"`
}

// GoodClause is a clause judged beneficial and well-written.
type GoodClause struct {
	Clause string `json:"clause"`
	Reason string `json:"reason"`
}

// RiskClause is a clause that poses a legal or fairness risk.
type RiskClause struct {
	Clause string `json:"clause"`
	Risk   string `json:"risk"`
}

// Recommendation is an acceptable clause with a suggested improvement.
type Recommendation struct {
	Clause           string `json:"clause"`
	Reason           string `json:"reason"`
	SuggestedRewrite string `json:"suggested_rewrite"`
}

// RiskReport aggregates risk-mode categorization results. A clause may land
// in zero, one, or several buckets; the reasoning model decides and the
// pipeline does not enforce exclusivity.
type RiskReport struct {
	GoodClauses     []GoodClause     `json:"good_clauses"`
	RiskClauses     []RiskClause     `json:"risk_clauses"`
	Recommendations []Recommendation `json:"recommendations"`
}

// NewRiskReport returns a report with all buckets initialized so JSON output
// always contains the three keys, even when empty.
func NewRiskReport() RiskReport {
	return RiskReport{
		GoodClauses:     []GoodClause{},
		RiskClauses:     []RiskClause{},
		Recommendations: []Recommendation{},
	}
}

// Merge appends all entries of other into r, bucket by bucket.
func (r *RiskReport) Merge(other RiskReport) {
	r.GoodClauses = append(r.GoodClauses, other.GoodClauses...)
	r.RiskClauses = append(r.RiskClauses, other.RiskClauses...)
	r.Recommendations = append(r.Recommendations, other.Recommendations...)
}
