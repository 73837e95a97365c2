package normalize

import (
	"regexp"
	"strings"

	"github.com/clausewise/clausewise/internal/infra/ai/prompt"
)

// emergencyChars caps the emergency-clean output.
const emergencyChars = 500

const unusableAnswer = "I couldn't process that response properly. Please try asking your question again."

var (
	leadingJSONWordRe = regexp.MustCompile(`(?i)^json\s*`)
	openFenceJSONRe   = regexp.MustCompile("(?i)^```json\\s*")
	openFenceRe       = regexp.MustCompile("^```\\s*")
	closeFenceRe      = regexp.MustCompile("```\\s*$")
	anyFenceBlockRe   = regexp.MustCompile("(?s)```.*?```")

	answerFieldRes = []*regexp.Regexp{
		regexp.MustCompile(`(?s)^\{.*?"answer":\s*"([^"]*)".*?\}$`),
		regexp.MustCompile(`(?s)^\{.*?"answer":\s*"([^"]*)".*$`),
		regexp.MustCompile(`(?s)^.*?"answer":\s*"([^"]*)".*?\}$`),
	}

	inlineObjectRe  = regexp.MustCompile(`\{[^{}]*\}`)
	inlineArrayRe   = regexp.MustCompile(`\[[^\[\]]*\]`)
	fieldNameRe     = regexp.MustCompile(`"[^"]*":\s*`)
	wholeQuotedRe   = regexp.MustCompile(`(?s)^"(.*)"$`)
	wholeSQuotedRe  = regexp.MustCompile(`(?s)^'(.*)'$`)
	spaceRunRe      = regexp.MustCompile(`[ \t]+`)
	blankLineRunRe  = regexp.MustCompile(`\n\s*\n\s*\n+`)
	whitespaceRunRe = regexp.MustCompile(`\s+`)

	boilerplateRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)based on the contract analysis,?\s*`),
		regexp.MustCompile(`(?i)here's what i found:?\s*`),
		regexp.MustCompile(`(?i)according to the contract,?\s*`),
		regexp.MustCompile(`(?i)the contract states,?\s*`),
	}

	sectionPatternRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)payment.*?terms?`),
		regexp.MustCompile(`(?i)termination.*?clause`),
		regexp.MustCompile(`(?i)confidentiality.*?agreement`),
		regexp.MustCompile(`(?i)intellectual.*?property`),
		regexp.MustCompile(`(?i)ownership.*?materials?`),
		regexp.MustCompile(`(?i)consulting.*?agreement`),
		regexp.MustCompile(`(?i)fees.*?outlined`),
		regexp.MustCompile(`(?i)contract.*?duration`),
	}
)

// Answer cleans a free-text model reply for chat display. It never fails:
// any internal trouble degrades to the emergency clean, and the return value
// is always a non-empty string.
func Answer(raw, question string) string {
	cleaned := stripArtifacts(raw)
	cleaned = cleanAnswer(cleaned, question)

	switch prompt.ClassifyQuestion(question) {
	case prompt.KindSummary, prompt.KindList:
		cleaned = formatAsPoints(cleaned)
	}

	if strings.TrimSpace(cleaned) == "" {
		return emergencyClean(raw)
	}
	return cleaned
}

// stripArtifacts removes code fences, JSON wrappers and field-name residue
// that chat models leak around plain-text answers.
func stripArtifacts(text string) string {
	text = strings.TrimSpace(text)

	text = leadingJSONWordRe.ReplaceAllString(text, "")
	text = openFenceJSONRe.ReplaceAllString(text, "")
	text = openFenceRe.ReplaceAllString(text, "")
	text = closeFenceRe.ReplaceAllString(text, "")

	// If the whole reply is a JSON envelope with an "answer" field, keep
	// just the field value.
	for _, re := range answerFieldRes {
		if m := re.FindStringSubmatch(text); m != nil {
			text = m[1]
			break
		}
	}

	text = inlineObjectRe.ReplaceAllString(text, "")
	text = inlineArrayRe.ReplaceAllString(text, "")

	if m := wholeQuotedRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	} else if m := wholeSQuotedRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	return fieldNameRe.ReplaceAllString(text, "")
}

func cleanAnswer(answer, question string) string {
	for _, re := range boilerplateRes {
		answer = re.ReplaceAllString(answer, "")
	}

	answer = spaceRunRe.ReplaceAllString(answer, " ")
	answer = blankLineRunRe.ReplaceAllString(answer, "\n\n")
	answer = strings.TrimSpace(answer)

	// Summaries stay comprehensive; other long answers get trimmed to the
	// first few sentences.
	kind := prompt.ClassifyQuestion(question)
	if kind != prompt.KindSummary && kind != prompt.KindList && len(answer) > 800 {
		sentences := strings.Split(answer, ".")
		if len(sentences) > 3 {
			answer = strings.TrimSpace(strings.Join(sentences[:3], ".")) + "."
		}
	}
	return answer
}

// formatAsPoints rewrites a prose answer as bullet points for list/summary
// questions. Single-sentence answers pass through unchanged.
func formatAsPoints(text string) string {
	if strings.Contains(text, "•") {
		return text
	}
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	var points []string
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if len(s) > 10 {
			points = append(points, "• "+s)
		}
	}
	if len(points) > 1 {
		return strings.Join(points, "\n")
	}
	return text
}

// RelevantSections guesses which contract sections an answer touches, for
// display alongside the chat reply. Best effort, capped at three.
func RelevantSections(answer string) []string {
	var sections []string
	seen := map[string]bool{}
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] || len(sections) >= 3 {
			return
		}
		seen[strings.ToLower(s)] = true
		sections = append(sections, titleCase(s))
	}

	for _, re := range sectionPatternRes {
		for _, m := range re.FindAllString(answer, -1) {
			add(m)
		}
	}

	if len(sections) == 0 {
		lower := strings.ToLower(answer)
		if strings.Contains(lower, "payment") {
			add("Payment Terms")
		}
		if strings.Contains(lower, "termination") {
			add("Termination Clause")
		}
		if strings.Contains(lower, "ownership") || strings.Contains(lower, "materials") {
			add("Ownership Of Materials")
		}
		if strings.Contains(lower, "consulting") || strings.Contains(lower, "services") {
			add("Service Agreement")
		}
	}
	return sections
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// emergencyClean is the last-resort pass: strip everything structured,
// squash whitespace, truncate, and guarantee some non-empty output.
func emergencyClean(text string) string {
	text = anyFenceBlockRe.ReplaceAllString(text, "")
	text = inlineObjectRe.ReplaceAllString(text, "")
	text = inlineArrayRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, `\n`, "\n")
	text = strings.ReplaceAll(text, `\"`, `"`)
	text = whitespaceRunRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if len(text) > emergencyChars {
		text = text[:emergencyChars] + "..."
	}
	if text == "" {
		return unusableAnswer
	}
	return text
}
