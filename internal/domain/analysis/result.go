package analysis

import (
	"strings"
	"time"
)

// Severity enum
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// ParseSeverity normalizes a model-supplied severity label. Unknown labels
// fall back to medium rather than failing the whole analysis.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityHigh:
		return SeverityHigh
	case SeverityLow:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// RiskAssessment value object: a single structured risk record.
type RiskAssessment struct {
	Category       string   `json:"category"`
	Severity       Severity `json:"severity"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
	OriginalClause string   `json:"original_clause,omitempty"`
	ImprovedClause string   `json:"improved_clause,omitempty"`
}

// Result is the structured output of one contract analysis. It is built
// fresh per request and handed to the caller; nothing in the AI layer keeps
// a reference to it afterwards.
type Result struct {
	Summary            string           `json:"summary"`
	RiskScore          float64          `json:"risk_score"`
	TotalClauses       int              `json:"total_clauses"`
	KeyPoints          []string         `json:"key_points"`
	RiskAssessments    []RiskAssessment `json:"risk_assessments"`
	SuggestedRevisions []string         `json:"suggested_revisions"`
	AnalyzedAt         time.Time        `json:"analyzed_at"`
	ModelUsed          string           `json:"model_used,omitempty"`
	ProcessingMS       int64            `json:"processing_ms,omitempty"`
}
