package middleware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFilename(t *testing.T) {
	assert.NoError(t, ValidateFilename("contract.pdf"))
	assert.NoError(t, ValidateFilename("My Agreement v2.docx"))
	assert.NoError(t, ValidateFilename("notes.txt"))

	assert.Error(t, ValidateFilename(""))
	assert.Error(t, ValidateFilename("../../etc/passwd"))
	assert.Error(t, ValidateFilename("dir/contract.pdf"))
	assert.Error(t, ValidateFilename("malware.exe"))
	assert.Error(t, ValidateFilename("archive.zip"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "contract.pdf", SanitizeFilename("contract.pdf"))
	assert.Equal(t, "my_file_.pdf", SanitizeFilename("my&file$.pdf"))
	assert.Equal(t, "upload", SanitizeFilename("...."))
}

func TestValidateFileSize(t *testing.T) {
	assert.NoError(t, ValidateFileSize(1024, 10*1024*1024))
	assert.Error(t, ValidateFileSize(0, 1024))
	assert.Error(t, ValidateFileSize(2048, 1024))
}

func TestValidateFileContent(t *testing.T) {
	assert.NoError(t, ValidateFileContent("a.pdf", []byte("%PDF-1.4 rest")))
	assert.NoError(t, ValidateFileContent("a.docx", []byte("PK\x03\x04zipdata")))
	assert.NoError(t, ValidateFileContent("a.txt", []byte("hello")))

	assert.Error(t, ValidateFileContent("a.pdf", []byte("PK\x03\x04")))
	assert.Error(t, ValidateFileContent("a.docx", []byte("%PDF-1.4")))
	assert.Error(t, ValidateFileContent("a.txt", []byte{0xff, 0xfe}))
	assert.Error(t, ValidateFileContent("a.exe", []byte("MZ")))
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 20, ValidateLimit(-5))
	assert.Equal(t, 50, ValidateLimit(50))
	assert.Equal(t, 100, ValidateLimit(500))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "clean text", SanitizeString("clean text"))
	assert.Equal(t, "ab", SanitizeString("a\x00b"))
	assert.Equal(t, "line1\nline2", SanitizeString("  line1\nline2  "))
	assert.NotContains(t, SanitizeString("bell\x07here"), "\x07")
}

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(3, 1)
	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow(), "request %d should pass", i)
	}
	assert.False(t, tb.Allow(), "bucket should be empty")
}

func TestRateLimiterPerKey(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	assert.True(t, rl.Allow("user-a"))
	assert.False(t, rl.Allow("user-a"))
	// A different key gets its own bucket.
	assert.True(t, rl.Allow("user-b"))
}

func TestSanitizeFilenameNeverEmpty(t *testing.T) {
	for _, name := range []string{"", "....", "___", strings.Repeat("$", 10)} {
		assert.NotEmpty(t, SanitizeFilename(name))
	}
}
