package normalize

import (
	"encoding/json"
	"regexp"
	"strings"

	domai "github.com/clausewise/clausewise/internal/domain/ai"
	"github.com/clausewise/clausewise/internal/domain/analysis"
)

// snippetChars bounds the diagnostic excerpt carried by a DecodeError.
const snippetChars = 500

// wire shapes for the model reply. Everything is optional; defaults and
// invariants are enforced after decoding.
type payload struct {
	Summary            string     `json:"summary"`
	KeyPoints          []string   `json:"key_points"`
	TotalClauses       int        `json:"total_clauses"`
	RiskAssessments    []wireRisk `json:"risk_assessments"`
	SuggestedRevisions []string   `json:"suggested_revisions"`
	OverallRiskScore   *float64   `json:"overall_risk_score"`
}

type wireRisk struct {
	Category       string `json:"category"`
	RiskLevel      string `json:"risk_level"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
	// Older prompt revisions called the recommendation "suggestion".
	Suggestion     string `json:"suggestion"`
	ClauseText     string `json:"clause_text"`
	ImprovedClause string `json:"improved_clause"`
}

var (
	fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	fencedRe     = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// extractJSON pulls the best-effort JSON object span out of a raw reply:
// fenced content first if present, then the greedy first-{ to last-} span.
// This is deliberately not a brace-matching parser.
func extractJSON(raw string) (string, error) {
	text := strings.TrimSpace(raw)

	if strings.Contains(text, "```json") {
		if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
			text = strings.TrimSpace(m[1])
		}
	} else if strings.Contains(text, "```") {
		if m := fencedRe.FindStringSubmatch(text); m != nil {
			text = strings.TrimSpace(m[1])
		}
	}

	start := strings.Index(text, "{")
	if start < 0 {
		return "", domai.ErrNoJSONFound
	}
	end := strings.LastIndex(text, "}")
	if end < start {
		// Opening brace but no closing one at all; hand the tail to the
		// repair pass.
		return text[start:], nil
	}
	return text[start : end+1], nil
}

var trailingCommaRe = regexp.MustCompile(`,(\s*})`)

// repairTruncated salvages a reply cut off mid-generation. It rescans line
// by line tracking brace depth and string state, drops everything from the
// first line that ends inside a string or below depth zero, then closes any
// braces left open and strips a trailing comma before a closing brace.
// Escaped quotes inside strings are handled only per-line; that matches the
// accept/reject boundary of the behavior this reproduces.
func repairTruncated(jsonStr string) string {
	if strings.HasSuffix(strings.TrimRight(jsonStr, " \t\n"), `"`) {
		return jsonStr
	}

	lines := strings.Split(jsonStr, "\n")
	var kept []string
	depth := 0
	inString := false
	for _, line := range lines {
		escaped := false
		for _, ch := range line {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = inString
			case ch == '"':
				inString = !inString
			case !inString && ch == '{':
				depth++
			case !inString && ch == '}':
				depth--
			}
		}
		if inString || depth < 0 {
			// First problematic line; everything after it is garbage too.
			break
		}
		kept = append(kept, line)
	}

	result := strings.Join(kept, "\n")
	if open := strings.Count(result, "{") - strings.Count(result, "}"); open > 0 {
		result += "\n" + strings.Repeat("}", open)
	}
	return trailingCommaRe.ReplaceAllString(result, "$1")
}

// parseReply decodes a raw model reply into the wire payload, applying the
// truncation repair once on decode failure.
func parseReply(raw string) (*payload, error) {
	span, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var p payload
	if err := json.Unmarshal([]byte(span), &p); err == nil {
		return &p, nil
	}

	repaired := repairTruncated(span)
	var p2 payload
	if err := json.Unmarshal([]byte(repaired), &p2); err != nil {
		snippet := span
		if len(snippet) > snippetChars {
			snippet = snippet[:snippetChars]
		}
		return nil, &domai.DecodeError{Snippet: snippet, Err: err}
	}
	return &p2, nil
}

var fallbackKeyPoints = []string{
	"Contract structure and terms reviewed",
	"Standard legal clauses identified",
	"Payment and delivery terms analyzed",
	"Liability and indemnification provisions checked",
}

// Reply converts a raw model reply plus the cleaned contract text into a
// validated Result. All-or-nothing: on ErrNoJSONFound or a DecodeError no
// partial result is returned. contractText is used only for the clause
// fallback estimate; raw is also the entropy source for score uniqueness.
func Reply(raw, contractText string) (*analysis.Result, error) {
	p, err := parseReply(raw)
	if err != nil {
		return nil, err
	}

	score := 50.0
	if p.OverallRiskScore != nil {
		score = *p.OverallRiskScore
	}

	res := &analysis.Result{
		Summary:            strings.TrimSpace(p.Summary),
		RiskScore:          UniqueScore(score, raw),
		TotalClauses:       TotalClauses(p.TotalClauses, contractText),
		KeyPoints:          p.KeyPoints,
		SuggestedRevisions: p.SuggestedRevisions,
	}

	if len(res.KeyPoints) == 0 {
		res.KeyPoints = append([]string(nil), fallbackKeyPoints...)
	}
	if res.SuggestedRevisions == nil {
		res.SuggestedRevisions = []string{}
	}

	for _, r := range p.RiskAssessments {
		rec := r.Recommendation
		if rec == "" {
			rec = r.Suggestion
		}
		cat := strings.TrimSpace(r.Category)
		if cat == "" {
			cat = "General"
		}
		res.RiskAssessments = append(res.RiskAssessments, analysis.RiskAssessment{
			Category:       cat,
			Severity:       analysis.ParseSeverity(r.RiskLevel),
			Description:    r.Description,
			Recommendation: rec,
			OriginalClause: r.ClauseText,
			ImprovedClause: r.ImprovedClause,
		})
	}
	if len(res.RiskAssessments) == 0 {
		res.RiskAssessments = []analysis.RiskAssessment{{
			Category:       "General",
			Severity:       analysis.SeverityLow,
			Description:    "Standard contract terms with acceptable risk levels",
			Recommendation: "Consider adding specific performance metrics and KPIs",
		}}
	}

	if res.Summary == "" {
		res.Summary = strings.Join(res.KeyPoints[:min(2, len(res.KeyPoints))], ". ")
	}

	return res, nil
}
