package prompt

import (
	"fmt"
	"strings"
)

// qaContentChars caps how much contract text goes into a Q&A prompt.
const qaContentChars = 6000

// QuestionKind classifies the question so the sanitizer can decide whether
// to reformat the answer as bullet points.
type QuestionKind int

const (
	KindGeneral QuestionKind = iota
	KindSummary
	KindSpecific
	KindType
	KindRisk
	KindList
)

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// ClassifyQuestion buckets a free-text question by intent.
func ClassifyQuestion(question string) QuestionKind {
	q := strings.ToLower(question)
	switch {
	case containsAny(q, "summarize", "summary", "overview", "brief", "key points", "main points"):
		return KindSummary
	case containsAny(q, "list", "what are", "enumerate"):
		return KindList
	case containsAny(q, "risk", "assessment", "danger", "concern"):
		return KindRisk
	case strings.Contains(q, "type") || strings.Contains(q, "kind"):
		return KindType
	case containsAny(q, "what is", "when", "where", "how much", "payment", "salary", "termination", "confidentiality"):
		return KindSpecific
	default:
		return KindGeneral
	}
}

func qaInstruction(kind QuestionKind) string {
	switch kind {
	case KindSummary, KindList:
		return "Provide a professional 2-3 sentence summary with **bold** key terms and bullet points for main clauses."
	case KindSpecific:
		return "Give a direct, specific answer with **bold** important details and *italics* for emphasis where appropriate."
	case KindType:
		return "Identify the contract type in 1-2 sentences with **bold** contract type and *italics* for key characteristics."
	case KindRisk:
		return "Provide risk assessment with **bold** risk levels and bullet points for specific concerns."
	default:
		return "Provide a clear, focused answer with **bold** key terms and proper formatting for readability."
	}
}

// QAPrompt renders the instruction string for a chat question about one
// contract. The content argument must already be cleaned.
func QAPrompt(question, content string) string {
	if len(content) > qaContentChars {
		content = content[:qaContentChars]
	}
	instruction := qaInstruction(ClassifyQuestion(question))

	return fmt.Sprintf(`You are a professional contract analysis AI. Answer this question about the contract with proper formatting:

QUESTION: %s

CONTRACT CONTENT:
%s

INSTRUCTIONS:
%s

FORMATTING REQUIREMENTS:
- Use **bold** for important terms, dates, amounts, and key clauses
- Use *italics* for emphasis and secondary details
- Use bullet points (•) for lists and multiple items - each point on a new line
- Use proper paragraph breaks for readability

RESPONSE GUIDELINES:
- Be CONCISE and DIRECT
- If information is not in the contract, say "Not specified in the contract"
- DO NOT repeat generic phrases like "Based on the contract analysis"
- Look for related terms and synonyms (e.g., "payment" might be called "compensation", "salary", "remuneration")
- Check for dates, amounts, names, and specific clauses

RESPONSE FORMAT:
Provide your answer in plain text with proper formatting. Do NOT use JSON format.`, question, content, instruction)
}
