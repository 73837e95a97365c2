package ai

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrUnauthorized indicates the AI provider rejected the configured API key (HTTP 401).
var ErrUnauthorized = errors.New("ai authentication failed")

// ErrContentTooShort indicates the contract text left after cleaning is too
// short to analyze meaningfully.
var ErrContentTooShort = errors.New("contract content too short after cleaning")

// ErrNoJSONFound indicates the model reply contained no JSON object at all.
var ErrNoJSONFound = errors.New("no JSON object located in model reply")

// DecodeError reports a model reply that could not be decoded as JSON even
// after the truncation-repair pass. Snippet carries the head of the offending
// text for diagnostics.
type DecodeError struct {
	Snippet string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode JSON from model reply: %v (snippet: %s)", e.Err, e.Snippet)
}

func (e *DecodeError) Unwrap() error { return e.Err }
