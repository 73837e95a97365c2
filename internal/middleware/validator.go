package middleware

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Input validation and sanitization utilities for uploads

var filenameBadRe = regexp.MustCompile(`[^a-zA-Z0-9._ -]`)

// allowed upload extensions mapped to their expected content handling
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
}

// ValidateFilename checks the name is safe and has an allowed extension
func ValidateFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	if strings.Contains(name, "..") || strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("invalid filename")
	}
	base := filepath.Base(name)

	ext := strings.ToLower(filepath.Ext(base))
	if !allowedExtensions[ext] {
		return fmt.Errorf("unsupported file type: %s (allowed: pdf, docx, txt)", ext)
	}
	return nil
}

// SanitizeFilename strips characters that are unsafe in storage keys
func SanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = filenameBadRe.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._ ")
	if base == "" {
		base = "upload"
	}
	return base
}

// ValidateFileSize enforces the configured upload cap
func ValidateFileSize(size, max int64) error {
	if size == 0 {
		return fmt.Errorf("file is empty")
	}
	if size > max {
		return fmt.Errorf("file too large: %d bytes (max %d)", size, max)
	}
	return nil
}

// ValidateFileContent sniffs magic bytes so a renamed binary cannot slip
// through the extension check.
func ValidateFileContent(filename string, data []byte) error {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		if !bytes.HasPrefix(data, []byte("%PDF")) {
			return fmt.Errorf("file does not look like a PDF")
		}
	case ".docx":
		// docx is a zip container
		if !bytes.HasPrefix(data, []byte("PK")) {
			return fmt.Errorf("file does not look like a DOCX")
		}
	case ".txt":
		if !utf8.Valid(data) {
			return fmt.Errorf("text file is not valid UTF-8")
		}
	default:
		return fmt.Errorf("unsupported file type: %s", ext)
	}
	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}
