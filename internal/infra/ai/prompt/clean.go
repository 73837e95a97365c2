package prompt

import (
	"regexp"
	"strings"

	domai "github.com/clausewise/clausewise/internal/domain/ai"
)

const (
	// MaxContentChars caps how much contract text goes into a prompt.
	MaxContentChars = 12000
	// MinContentChars is the smallest cleaned text worth analyzing.
	MinContentChars = 100
)

// PDF object artifacts that survive naive text extraction.
var pdfArtifactRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)FlateDecode\s*filter`),
	regexp.MustCompile(`(?i)/Filter\s*/FlateDecode`),
	regexp.MustCompile(`/Length\s*\d+`),
	regexp.MustCompile(`/Type\s*/Page`),
	regexp.MustCompile(`/Contents\s*\d+\s*\d+\s*R`),
	regexp.MustCompile(`/MediaBox\s*\[[^\]]*\]`),
	regexp.MustCompile(`/Parent\s*\d+\s*\d+\s*R`),
	regexp.MustCompile(`/Resources\s*\d+\s*\d+\s*R`),
}

var (
	multiNewlineRe = regexp.MustCompile(`\n\s*\n\s*\n+`)
	multiSpaceRe   = regexp.MustCompile(`[ \t]+`)
)

// CleanContent prepares extracted contract text for prompting: strips PDF
// artifacts and non-printable bytes, collapses whitespace, caps the length.
// Returns ErrContentTooShort when less than MinContentChars survives.
func CleanContent(content string) (string, error) {
	if len(strings.TrimSpace(content)) < 10 {
		return "", domai.ErrContentTooShort
	}

	for _, re := range pdfArtifactRes {
		content = re.ReplaceAllString(content, "")
	}

	// Collapse whitespace but preserve paragraph structure.
	content = multiNewlineRe.ReplaceAllString(content, "\n\n")
	content = multiSpaceRe.ReplaceAllString(content, " ")

	// Keep only printable ASCII plus newline/tab; binary junk from bad
	// extractions confuses the model far more than lost accents do.
	var b strings.Builder
	b.Grow(len(content))
	for _, r := range content {
		if (r >= 0x20 && r <= 0x7e) || r == '\n' || r == '\t' {
			b.WriteRune(r)
		}
	}
	content = b.String()

	if len(content) > MaxContentChars {
		content = content[:MaxContentChars] + "..."
	}

	cleaned := strings.TrimSpace(content)
	if len(cleaned) < MinContentChars {
		return "", domai.ErrContentTooShort
	}
	return cleaned, nil
}
