package normalize

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domai "github.com/clausewise/clausewise/internal/domain/ai"
	"github.com/clausewise/clausewise/internal/domain/analysis"
)

const sampleContract = `SECTION 1. Services. The Consultant shall provide advisory services.

SECTION 2. Payment. The Client shall pay fees within 30 days of invoice.

SECTION 3. Termination. Either party may terminate with 30 days written notice.`

func TestReplyFencedJSONWithRoundScore(t *testing.T) {
	raw := "Here is the analysis:\n```json\n{\n" +
		`  "summary": "Consulting agreement with standard terms",` + "\n" +
		`  "key_points": ["Net-30 payment", "30 day termination notice"],` + "\n" +
		`  "total_clauses": 12,` + "\n" +
		`  "risk_assessments": [{"category": "Financial", "risk_level": "medium", "description": "Late payment exposure", "recommendation": "Add late fees", "clause_text": "pay fees within 30 days", "improved_clause": "pay fees within 15 days with 2% late penalty"}],` + "\n" +
		`  "suggested_revisions": ["Add a liability cap"],` + "\n" +
		`  "overall_risk_score": 70` + "\n}\n```"

	res, err := Reply(raw, sampleContract)
	require.NoError(t, err)

	// A round integer score must be nudged off the integer.
	assert.NotEqual(t, 70.0, res.RiskScore)
	assert.GreaterOrEqual(t, res.RiskScore, 5.0)
	assert.LessOrEqual(t, res.RiskScore, 95.0)
	assert.InDelta(t, res.RiskScore, math.Round(res.RiskScore*10)/10, 1e-9)

	assert.Equal(t, 12, res.TotalClauses)
	assert.Equal(t, "Consulting agreement with standard terms", res.Summary)
	require.Len(t, res.RiskAssessments, 1)
	assert.Equal(t, analysis.SeverityMedium, res.RiskAssessments[0].Severity)
	assert.Equal(t, "Add late fees", res.RiskAssessments[0].Recommendation)
}

func TestReplyRefusalHasNoJSON(t *testing.T) {
	_, err := Reply("I'm sorry, I cannot process this document.", sampleContract)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domai.ErrNoJSONFound))
}

func TestReplyRepairsTruncatedJSON(t *testing.T) {
	raw := `{
  "summary": "Service agreement with moderate risk",
  "overall_risk_score": 47.3,
  "total_clauses": 8,
  "key_points": ["Payment due in 30 days", "Auto-renewal unless notice given"],
  "suggested_revisions": ["Add a liability cap"],
  "closing_note": "The agreement covers consulting services and inclu`

	res, err := Reply(raw, sampleContract)
	require.NoError(t, err)

	// A non-integer score must survive enforcement untouched.
	assert.Equal(t, 47.3, res.RiskScore)
	assert.Equal(t, 8, res.TotalClauses)
	assert.Equal(t, []string{"Payment due in 30 days", "Auto-renewal unless notice given"}, res.KeyPoints)
}

func TestReplyDeterministic(t *testing.T) {
	raw := `{"summary": "NDA with broad confidentiality obligations", "overall_risk_score": 55, "total_clauses": 0}`

	a, err := Reply(raw, sampleContract)
	require.NoError(t, err)
	b, err := Reply(raw, sampleContract)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestReplyDefaults(t *testing.T) {
	res, err := Reply(`{}`, sampleContract)
	require.NoError(t, err)

	// Missing score defaults to 50 before enforcement.
	assert.GreaterOrEqual(t, res.RiskScore, 5.0)
	assert.LessOrEqual(t, res.RiskScore, 95.0)

	assert.Equal(t, fallbackKeyPoints, res.KeyPoints)
	assert.NotNil(t, res.SuggestedRevisions)
	assert.Empty(t, res.SuggestedRevisions)

	require.Len(t, res.RiskAssessments, 1)
	assert.Equal(t, "General", res.RiskAssessments[0].Category)
	assert.Equal(t, analysis.SeverityLow, res.RiskAssessments[0].Severity)

	// Summary is derived from the first key points when the model gave none.
	assert.Equal(t, strings.Join(fallbackKeyPoints[:2], ". "), res.Summary)

	// Clause count falls back to the content heuristic.
	assert.GreaterOrEqual(t, res.TotalClauses, 5)
}

func TestReplyLegacySuggestionField(t *testing.T) {
	raw := `{"overall_risk_score": 33.7, "risk_assessments": [{"category": "", "risk_level": "high", "description": "Unlimited liability", "suggestion": "Cap liability at contract value"}]}`

	res, err := Reply(raw, sampleContract)
	require.NoError(t, err)
	require.Len(t, res.RiskAssessments, 1)
	assert.Equal(t, "General", res.RiskAssessments[0].Category)
	assert.Equal(t, "Cap liability at contract value", res.RiskAssessments[0].Recommendation)
	assert.Equal(t, analysis.SeverityHigh, res.RiskAssessments[0].Severity)
}

func TestReplyUndecodableGarbage(t *testing.T) {
	_, err := Reply(`{"summary": [this is not json at all`, sampleContract)
	require.Error(t, err)

	var decodeErr *domai.DecodeError
	assert.True(t, errors.As(err, &decodeErr))
	assert.NotEmpty(t, decodeErr.Snippet)
}

func TestExtractJSONPrefersFencedBlock(t *testing.T) {
	raw := "prose before {not the object}\n```json\n{\"summary\": \"x\"}\n```\nprose after"
	span, err := extractJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"summary": "x"}`, span)
}

func TestRepairTruncatedClosesBraces(t *testing.T) {
	in := "{\n  \"a\": 1,\n  \"b\": \"cut off mid strin"
	out := repairTruncated(in)
	assert.Equal(t, "{\n  \"a\": 1\n}", out)
}
